package archive

import "fmt"

// Mode controls whether an archive is saved in the 64-bit extended variant.
type Mode int

const (
	// ModeAsNecessary lets the engine pick the variant based on content.
	ModeAsNecessary Mode = iota

	// ModeAlways forces the extended variant regardless of content.
	ModeAlways

	// ModeNever forces the standard variant. Saving content that exceeds
	// 32-bit limits under ModeNever is an engine error.
	ModeNever
)

// String returns the canonical config spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeAsNecessary:
		return "asNecessary"
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a config spelling into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "asNecessary", "as-necessary":
		return ModeAsNecessary, nil
	case "always":
		return ModeAlways, nil
	case "never":
		return ModeNever, nil
	default:
		return ModeAsNecessary, fmt.Errorf("unknown size-extension mode %q (want always, never or asNecessary)", s)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Mode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
