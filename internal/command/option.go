package command

// Option is a single command line option: either a bare flag or a flag with a value.
type Option struct {
	name     string
	value    string
	hasValue bool
}

// Flag returns a bare flag option, e.g. "--verbose".
func Flag(name string) Option {
	return Option{name: name}
}

// Value returns a flag option carrying a value, e.g. ("--output", "out.xml").
func Value(name, value string) Option {
	return Option{name: name, value: value, hasValue: true}
}

// Name returns the flag name.
func (o Option) Name() string {
	return o.name
}

// Value returns the option value. It is empty for bare flags.
func (o Option) Value() string {
	return o.value
}

// HasValue reports whether the option is a flag/value pair.
func (o Option) HasValue() bool {
	return o.hasValue
}

// tokens renders the option under the given value delimiter.
// An empty delimiter keeps flag and value as two tokens.
func (o Option) tokens(delimiter string) []string {
	switch {
	case !o.hasValue:
		return []string{o.name}
	case delimiter != "":
		return []string{o.name + delimiter + o.value}
	default:
		return []string{o.name, o.value}
	}
}

// OptionArg configures a single AddOption call.
type OptionArg func(*optionArgs)

type optionArgs struct {
	value        string
	hasValue     bool
	delimiter    string
	hasDelimiter bool
}

// WithValue attaches a value to the option being added.
func WithValue(value string) OptionArg {
	return func(a *optionArgs) {
		a.value = value
		a.hasValue = true
	}
}

// WithDelimiter sets the command's value delimiter before the option is added.
// The delimiter stays active for every option added afterwards.
func WithDelimiter(delimiter string) OptionArg {
	return func(a *optionArgs) {
		a.delimiter = delimiter
		a.hasDelimiter = true
	}
}

// ParseOptions converts loosely typed option items into Options.
// A single-element item is a bare flag and a two-element item is a flag/value pair.
func ParseOptions(items ...[]string) ([]Option, error) {
	options := make([]Option, 0, len(items))
	for _, item := range items {
		switch len(item) {
		case 1:
			options = append(options, Flag(item[0]))
		case 2:
			options = append(options, Value(item[0], item[1]))
		default:
			return nil, invalidOption(item)
		}
	}
	return options, nil
}
