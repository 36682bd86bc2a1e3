package fqbn

import "strings"

// Option is a single key=value board configuration option.
type Option struct {
	Name  string
	Value string
}

// FQBN is a parsed fully qualified board name: the vendor:arch:board base
// plus an ordered list of configuration options.
type FQBN struct {
	Vendor       string
	Architecture string
	BoardID      string
	Options      []Option
}

// Parse splits a fully qualified board name into its base identifier and
// options. The base must have exactly three non-empty colon-separated
// segments. Options come from the fourth segment, comma-separated key=value
// pairs; a pair without = invalidates the whole parse. Parse never errors,
// it reports ok=false for malformed input.
func Parse(s string) (FQBN, bool) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return FQBN{}, false
	}
	if parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return FQBN{}, false
	}

	f := FQBN{
		Vendor:       parts[0],
		Architecture: parts[1],
		BoardID:      parts[2],
	}

	if len(parts) == 4 {
		for _, pair := range strings.Split(parts[3], ",") {
			name, value, found := strings.Cut(pair, "=")
			if !found || name == "" {
				return FQBN{}, false
			}
			f.Options = append(f.Options, Option{Name: name, Value: value})
		}
	}

	return f, true
}

// Base returns the vendor:arch:board portion.
func (f FQBN) Base() string {
	return f.Vendor + ":" + f.Architecture + ":" + f.BoardID
}

// PlatformID returns the vendor:arch portion.
func (f FQBN) PlatformID() string {
	return f.Vendor + ":" + f.Architecture
}

// Option returns the value of the named option and whether it is present.
func (f FQBN) Option(name string) (string, bool) {
	for _, o := range f.Options {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}

// String rebuilds the full board name in the stored option order.
func (f FQBN) String() string {
	if len(f.Options) == 0 {
		return f.Base()
	}
	var b strings.Builder
	b.WriteString(f.Base())
	for i, o := range f.Options {
		if i == 0 {
			b.WriteByte(':')
		} else {
			b.WriteByte(',')
		}
		b.WriteString(o.Name)
		b.WriteByte('=')
		b.WriteString(o.Value)
	}
	return b.String()
}

// Selection describes one configuration option as reported by the IDE:
// the option name and whether a value is explicitly selected for it.
type Selection struct {
	Name     string
	Value    string
	Selected bool
}

// BuildComplete assembles a full board name from a base identifier and the
// explicitly selected options, in the given order. Options without a
// selected value are omitted rather than failing the build; an empty
// selection set yields the bare base.
func BuildComplete(base string, selections []Selection) string {
	var opts []string
	for _, sel := range selections {
		if !sel.Selected {
			continue
		}
		opts = append(opts, sel.Name+"="+sel.Value)
	}
	if len(opts) == 0 {
		return base
	}
	return base + ":" + strings.Join(opts, ",")
}

// ExtractBase returns the first three colon-separated segments. Input with
// fewer segments passes through unchanged.
func ExtractBase(s string) string {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return s
	}
	return strings.Join(parts[:3], ":")
}

// ExtractPlatformID returns the first two colon-separated segments. Input
// with fewer segments passes through unchanged.
func ExtractPlatformID(s string) string {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return s
	}
	return parts[0] + ":" + parts[1]
}

// FormatSummary renders a board name with at most maxOptions option pairs,
// appending "..." when options were cut off. With maxOptions=0 and options
// present the result is the base followed by ":...".
func FormatSummary(s string, maxOptions int) string {
	f, ok := Parse(s)
	if !ok {
		return s
	}
	if len(f.Options) == 0 {
		return f.Base()
	}

	shown := f.Options
	truncated := false
	if len(shown) > maxOptions {
		shown = shown[:maxOptions]
		truncated = true
	}

	var b strings.Builder
	b.WriteString(f.Base())
	b.WriteByte(':')
	for i, o := range shown {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(o.Name)
		b.WriteByte('=')
		b.WriteString(o.Value)
	}
	if truncated {
		b.WriteString("...")
	}
	return b.String()
}
