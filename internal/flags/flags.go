// Package flags parses, merges and converts extra tool flags into command options.
package flags

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmgilman/crossfit/internal/command"
)

// Flags represents extra tool flags as a key-value map.
// Values can be:
//   - string: one option with a value
//   - bool: true adds a bare flag, false omits the flag
//   - []string: one option per element
type Flags map[string]any

// Sentinel errors for flag operations.
var (
	// ErrInvalidFlagValue is returned when a flag value has an unsupported type.
	ErrInvalidFlagValue = errors.New("invalid flag value type")
)

// FromConfig validates and normalizes config values into Flags.
// Accepts string, bool, numbers (formatted as strings), []string and []any.
func FromConfig(cfg map[string]any) (Flags, error) {
	if cfg == nil {
		return make(Flags), nil
	}

	result := make(Flags, len(cfg))
	for k, v := range cfg {
		switch val := v.(type) {
		case string, bool:
			result[k] = val
		case int, int64, float64:
			result[k] = fmt.Sprint(val)
		case []string:
			result[k] = val
		case []any:
			// YAML sequences decode as []any
			strs := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s array contains non-string value %T", ErrInvalidFlagValue, k, item)
				}
				strs = append(strs, s)
			}
			result[k] = strs
		default:
			return nil, fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidFlagValue, k, v)
		}
	}
	return result, nil
}

// FromPairs parses "key=value" strings as given on the command line.
//
// Rules:
//   - "key=value" → string value (split on the first = only)
//   - "key=true" or "key=false" → bool value
//   - "key" (bare, no =) → bool true
//   - Repeated keys become []string
func FromPairs(pairs []string) Flags {
	result := make(Flags)
	for _, pair := range pairs {
		key, value, hasEquals := strings.Cut(strings.TrimSpace(pair), "=")
		if key == "" {
			continue
		}

		if !hasEquals {
			result[key] = true
			continue
		}

		switch strings.ToLower(value) {
		case "true":
			result[key] = true
			continue
		case "false":
			result[key] = false
			continue
		}

		switch e := result[key].(type) {
		case string:
			result[key] = []string{e, value}
		case []string:
			result[key] = append(e, value)
		default:
			result[key] = value
		}
	}
	return result
}

// Merge combines two Flags maps with override taking precedence.
func Merge(base, override Flags) Flags {
	result := make(Flags, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		result[k] = v
	}
	return result
}

// ToOptions converts Flags into command options sorted by key.
// Keys without a leading dash are prefixed with "--". A true bool is a bare
// flag, a false one is dropped and a list repeats the flag once per value.
func ToOptions(f Flags) ([]command.Option, error) {
	if len(f) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var items [][]string
	for _, k := range keys {
		name := flagName(k)
		switch val := f[k].(type) {
		case string:
			items = append(items, []string{name, val})
		case bool:
			if val {
				items = append(items, []string{name})
			}
		case []string:
			for _, s := range val {
				items = append(items, []string{name, s})
			}
		default:
			return nil, fmt.Errorf("%w: %s has type %T", ErrInvalidFlagValue, k, val)
		}
	}
	return command.ParseOptions(items...)
}

func flagName(key string) string {
	if strings.HasPrefix(key, "-") {
		return key
	}
	return "--" + key
}
