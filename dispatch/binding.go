package dispatch

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

var (
	// ErrUnknownKey is reported for Config keys the tree builder does not know.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrBadValue is reported for Config values of the wrong type or range.
	ErrBadValue = errors.New("invalid config value")
	// ErrBadArgs is reported for malformed flag spellings or positional names.
	ErrBadArgs = errors.New("invalid option args")
)

var knownKeys = []string{
	KeyType, KeyRequired, KeyDefault, KeyDest, KeyHelp,
	KeyChoices, KeyNargs, KeyAction, KeyMetavar,
}

// binding is an Option checked and resolved against the flag engine.
type binding struct {
	opt        Option
	positional bool
	name       string // long flag name, or positional name
	short      string
	dest       string
	kind       Kind
	required   bool
	nargs      string
	action     string
	help       string
	metavar    string
	choices    []string
	def        any
	hasDefault bool
}

func compile(opt Option) (*binding, error) {
	b := &binding{opt: opt, kind: String}
	fail := func(key string, err error) (*binding, error) {
		return nil, &OptionError{Option: opt, Key: key, Err: err}
	}

	if err := b.parseArgs(); err != nil {
		return fail("", err)
	}

	for key := range opt.Config {
		if !slices.Contains(knownKeys, key) {
			return fail(key, ErrUnknownKey)
		}
	}

	if v, ok := opt.Config[KeyType]; ok {
		kind, err := asKind(v)
		if err != nil {
			return fail(KeyType, err)
		}
		b.kind = kind
	}
	for _, s := range []struct {
		key string
		dst *string
	}{
		{KeyDest, &b.dest},
		{KeyHelp, &b.help},
		{KeyMetavar, &b.metavar},
		{KeyNargs, &b.nargs},
		{KeyAction, &b.action},
	} {
		v, ok := opt.Config[s.key]
		if !ok {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return fail(s.key, fmt.Errorf("%w: want string, got %T", ErrBadValue, v))
		}
		*s.dst = str
	}
	if v, ok := opt.Config[KeyRequired]; ok {
		req, ok := v.(bool)
		if !ok {
			return fail(KeyRequired, fmt.Errorf("%w: want bool, got %T", ErrBadValue, v))
		}
		if b.positional {
			return fail(KeyRequired, fmt.Errorf("%w: not allowed for positionals", ErrBadValue))
		}
		b.required = req
	}
	if v, ok := opt.Config[KeyChoices]; ok {
		choices, ok := v.([]string)
		if !ok {
			return fail(KeyChoices, fmt.Errorf("%w: want []string, got %T", ErrBadValue, v))
		}
		b.choices = choices
	}

	switch b.action {
	case "":
	case StoreTrue, StoreFalse:
		if b.positional {
			return fail(KeyAction, fmt.Errorf("%w: not allowed for positionals", ErrBadValue))
		}
		if _, ok := opt.Config[KeyType]; ok && b.kind != Bool {
			return fail(KeyAction, fmt.Errorf("%w: %s needs type bool", ErrBadValue, b.action))
		}
		b.kind = Bool
		b.def = b.action == StoreFalse
		b.hasDefault = true
	default:
		return fail(KeyAction, fmt.Errorf("%w: %q", ErrBadValue, b.action))
	}

	switch b.nargs {
	case "":
	case "?", "*", "+":
		if !b.positional {
			return fail(KeyNargs, fmt.Errorf("%w: only positionals take nargs", ErrBadValue))
		}
	default:
		return fail(KeyNargs, fmt.Errorf("%w: %q", ErrBadValue, b.nargs))
	}

	if b.positional && (b.kind == Strings || b.kind == Ints) {
		return fail(KeyType, fmt.Errorf("%w: positionals take scalar types, use nargs", ErrBadValue))
	}

	if v, ok := opt.Config[KeyDefault]; ok && v != nil {
		def, err := b.coerceDefault(v)
		if err != nil {
			return fail(KeyDefault, err)
		}
		b.def = def
		b.hasDefault = true
	}

	if b.dest == "" {
		b.dest = b.deriveDest()
	}
	return b, nil
}

func (b *binding) parseArgs() error {
	args := b.opt.Args
	if len(args) == 0 {
		return fmt.Errorf("%w: no flag or positional name", ErrBadArgs)
	}
	if !strings.HasPrefix(args[0], "-") {
		if len(args) != 1 {
			return fmt.Errorf("%w: positional takes a single name", ErrBadArgs)
		}
		b.positional = true
		b.name = args[0]
		return nil
	}
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--"):
			long := strings.TrimPrefix(arg, "--")
			if long == "" || strings.HasPrefix(long, "-") || strings.ContainsAny(long, "= ") {
				return fmt.Errorf("%w: %q", ErrBadArgs, arg)
			}
			if b.name != "" {
				return fmt.Errorf("%w: more than one long name", ErrBadArgs)
			}
			b.name = long
		case strings.HasPrefix(arg, "-"):
			short := strings.TrimPrefix(arg, "-")
			if len(short) != 1 || short == "-" || short == "=" {
				return fmt.Errorf("%w: short flag %q must be a single character", ErrBadArgs, arg)
			}
			if b.short != "" {
				return fmt.Errorf("%w: more than one short name", ErrBadArgs)
			}
			b.short = short
		default:
			return fmt.Errorf("%w: %q mixes flags and positionals", ErrBadArgs, arg)
		}
	}
	if b.name == "" {
		b.name = b.short
	}
	return nil
}

func (b *binding) deriveDest() string {
	if b.positional {
		return b.name
	}
	return strings.ReplaceAll(b.name, "-", "_")
}

func (b *binding) variadic() bool {
	return b.nargs == "*" || b.nargs == "+"
}

func (b *binding) minCount() int {
	if b.nargs == "" || b.nargs == "+" {
		return 1
	}
	return 0
}

func asKind(v any) (Kind, error) {
	var kind Kind
	switch v := v.(type) {
	case Kind:
		kind = v
	case string:
		kind = Kind(v)
	default:
		return "", fmt.Errorf("%w: want Kind, got %T", ErrBadValue, v)
	}
	switch kind {
	case String, Int, Float, Bool, Duration, Strings, Ints:
		return kind, nil
	}
	return "", fmt.Errorf("%w: unknown type %q", ErrBadValue, kind)
}

// coerceDefault converts a configured default to the binding's Go type.
// Strings are parsed as if they came from the command line.
func (b *binding) coerceDefault(v any) (any, error) {
	if s, ok := v.(string); ok && (b.kind != String || b.variadic()) {
		var (
			def any
			err error
		)
		if b.variadic() {
			def, err = b.parseList(strings.Split(s, ","))
		} else {
			def, err = parseValue(b.kind, s)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return def, nil
	}
	if i, ok := v.(int); ok && b.kind == Float && !b.variadic() {
		return float64(i), nil
	}
	if goType(b.kind, b.variadic()) == fmt.Sprintf("%T", v) {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %v (%T) is not a %s", ErrBadValue, v, v, b.kind)
}

func goType(k Kind, variadic bool) string {
	var t string
	switch k {
	case String:
		t = "string"
	case Int:
		t = "int"
	case Float:
		t = "float64"
	case Bool:
		t = "bool"
	case Duration:
		t = "time.Duration"
	case Strings:
		return "[]string"
	case Ints:
		return "[]int"
	}
	if variadic {
		return "[]" + t
	}
	return t
}

func parseValue(kind Kind, s string) (any, error) {
	switch kind {
	case String:
		return s, nil
	case Int:
		return strconv.Atoi(s)
	case Float:
		return strconv.ParseFloat(s, 64)
	case Bool:
		return strconv.ParseBool(s)
	case Duration:
		return time.ParseDuration(s)
	case Strings:
		return strings.Split(s, ","), nil
	case Ints:
		var out []int
		for _, part := range strings.Split(s, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown type %q", kind)
}

// parseList coerces the raw values of a variadic positional into a typed
// slice.
func (b *binding) parseList(raw []string) (any, error) {
	switch b.kind {
	case String:
		return slices.Clone(raw), nil
	case Int:
		return parseEach(raw, strconv.Atoi)
	case Float:
		return parseEach(raw, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	case Bool:
		return parseEach(raw, strconv.ParseBool)
	case Duration:
		return parseEach(raw, time.ParseDuration)
	}
	return nil, fmt.Errorf("unknown type %q", b.kind)
}

func parseEach[T any](raw []string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, s := range raw {
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// define registers the binding's flag on fs.
func (b *binding) define(fs *pflag.FlagSet) {
	switch b.kind {
	case String:
		def, _ := b.def.(string)
		fs.StringP(b.name, b.short, def, b.help)
	case Int:
		def, _ := b.def.(int)
		fs.IntP(b.name, b.short, def, b.help)
	case Float:
		def, _ := b.def.(float64)
		fs.Float64P(b.name, b.short, def, b.help)
	case Bool:
		def, _ := b.def.(bool)
		fs.BoolP(b.name, b.short, def, b.help)
		if b.action == StoreFalse {
			fs.Lookup(b.name).NoOptDefVal = "false"
		}
	case Duration:
		def, _ := b.def.(time.Duration)
		fs.DurationP(b.name, b.short, def, b.help)
	case Strings:
		def, _ := b.def.([]string)
		fs.StringSliceP(b.name, b.short, def, b.help)
	case Ints:
		def, _ := b.def.([]int)
		fs.IntSliceP(b.name, b.short, def, b.help)
	}
}

// flagValue reads the binding's parsed value from fs. Flags that were
// neither set nor given a default yield nil.
func (b *binding) flagValue(fs *pflag.FlagSet) (any, error) {
	f := fs.Lookup(b.name)
	if f == nil {
		return nil, fmt.Errorf("flag --%s not defined", b.name)
	}
	if !f.Changed && !b.hasDefault {
		return nil, nil
	}
	switch b.kind {
	case String:
		return fs.GetString(b.name)
	case Int:
		return fs.GetInt(b.name)
	case Float:
		return fs.GetFloat64(b.name)
	case Bool:
		return fs.GetBool(b.name)
	case Duration:
		return fs.GetDuration(b.name)
	case Strings:
		return fs.GetStringSlice(b.name)
	case Ints:
		return fs.GetIntSlice(b.name)
	}
	return nil, fmt.Errorf("flag --%s: unknown type %q", b.name, b.kind)
}

// checkChoices compares the %v form of v, or of each element when v is a
// slice, against the configured choices.
func (b *binding) checkChoices(v any) error {
	if len(b.choices) == 0 || v == nil {
		return nil
	}
	var elems []any
	switch v := v.(type) {
	case []string:
		for _, e := range v {
			elems = append(elems, e)
		}
	case []int:
		for _, e := range v {
			elems = append(elems, e)
		}
	case []float64:
		for _, e := range v {
			elems = append(elems, e)
		}
	case []bool:
		for _, e := range v {
			elems = append(elems, e)
		}
	case []time.Duration:
		for _, e := range v {
			elems = append(elems, e)
		}
	default:
		elems = []any{v}
	}
	for _, e := range elems {
		s := fmt.Sprint(e)
		if !slices.Contains(b.choices, s) {
			return fmt.Errorf("argument %s: invalid choice: %q (choose from %s)",
				b.displayName(), s, strings.Join(b.choices, ", "))
		}
	}
	return nil
}

func (b *binding) displayName() string {
	if b.positional {
		return b.valueName()
	}
	if b.name == b.short {
		return "-" + b.short
	}
	return "--" + b.name
}

func (b *binding) valueName() string {
	if b.metavar != "" {
		return b.metavar
	}
	return strings.ToUpper(b.dest)
}

// synopsis renders the binding the way it appears in a usage line.
func (b *binding) synopsis() string {
	if b.positional {
		name := b.valueName()
		switch b.nargs {
		case "?":
			return "[" + name + "]"
		case "*":
			return "[" + name + "...]"
		case "+":
			return name + "..."
		}
		return name
	}
	s := b.displayName()
	if b.kind != Bool {
		s += " " + b.valueName()
	}
	if !b.required {
		s = "[" + s + "]"
	}
	return s
}
