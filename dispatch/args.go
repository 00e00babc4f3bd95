package dispatch

import (
	"maps"
	"time"
)

// Args maps destination names to parsed values. Options that were neither
// given nor defaulted are present with a nil value.
type Args map[string]any

// Has reports whether key is present, even with a nil value.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns the value under key, or "" if it is missing or not a
// string. The other typed accessors behave the same way.
func (a Args) String(key string) string {
	v, _ := a[key].(string)
	return v
}

func (a Args) Int(key string) int {
	v, _ := a[key].(int)
	return v
}

func (a Args) Float(key string) float64 {
	v, _ := a[key].(float64)
	return v
}

func (a Args) Bool(key string) bool {
	v, _ := a[key].(bool)
	return v
}

func (a Args) Duration(key string) time.Duration {
	v, _ := a[key].(time.Duration)
	return v
}

func (a Args) Strings(key string) []string {
	v, _ := a[key].([]string)
	return v
}

func (a Args) Ints(key string) []int {
	v, _ := a[key].([]int)
	return v
}

// Clone returns a shallow copy of a.
func (a Args) Clone() Args {
	if a == nil {
		return Args{}
	}
	return maps.Clone(a)
}

// Without returns a copy of a with keys removed.
func (a Args) Without(keys ...string) Args {
	out := a.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
