package dispatch

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Kind names the type a value is coerced to when parsed.
type Kind string

const (
	String   Kind = "string"
	Int      Kind = "int"
	Float    Kind = "float"
	Bool     Kind = "bool"
	Duration Kind = "duration"
	Strings  Kind = "strings"
	Ints     Kind = "ints"
)

// Recognized Config keys.
const (
	KeyType     = "type"
	KeyRequired = "required"
	KeyDefault  = "default"
	KeyDest     = "dest"
	KeyHelp     = "help"
	KeyChoices  = "choices"
	KeyNargs    = "nargs"
	KeyAction   = "action"
	KeyMetavar  = "metavar"
)

// Actions accepted under KeyAction.
const (
	StoreTrue  = "store_true"
	StoreFalse = "store_false"
)

// Config holds the parsing settings of an Option. Keys are checked when the
// command tree is built, not when the Option is created.
type Config map[string]any

// Option describes one flag or positional argument. Args holds the flag
// spellings ("--name", "-n") or the single positional name.
type Option struct {
	Args   []string
	Config Config
}

// NewOption captures args and config as given.
func NewOption(config Config, args ...string) Option {
	return Option{Args: slices.Clone(args), Config: config}
}

// Equal reports whether o and other capture the same args and config.
func (o Option) Equal(other Option) bool {
	if !slices.Equal(o.Args, other.Args) {
		return false
	}
	if len(o.Config) != len(other.Config) {
		return false
	}
	for k, v := range o.Config {
		w, ok := other.Config[k]
		if !ok || !reflect.DeepEqual(v, w) {
			return false
		}
	}
	return true
}

func (o Option) String() string {
	return strings.Join(o.Args, "/")
}

// OptionError reports an Option the command tree could not accept.
type OptionError struct {
	Option  Option
	Command string
	Key     string
	Err     error
}

func (e *OptionError) Error() string {
	where := "root option"
	if e.Command != "" {
		where = fmt.Sprintf("command %s: option", e.Command)
	}
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s: %v", where, e.Option, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", where, e.Option, e.Err)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}
