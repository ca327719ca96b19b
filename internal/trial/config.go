package trial

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rmarsh/ziptrial/internal/archive"
)

// Config describes a trial matrix. Loaded from YAML; unknown fields are
// rejected so a typo fails loudly instead of silently shrinking the
// matrix.
type Config struct {
	// Name identifies the run on the telemetry channel.
	Name string `yaml:"name"`

	// Seed drives every pseudo-random choice: entry counts, entry
	// names, sizes and content. Two runs with the same seed execute
	// identical matrices.
	Seed int64 `yaml:"seed"`

	// Modes lists the size-extension policies crossed into the matrix.
	Modes []archive.Mode `yaml:"modes"`

	// Ops lists the operation kinds crossed into the matrix.
	Ops []Op `yaml:"ops"`

	// MinEntries and MaxEntries bound the per-trial entry population.
	MinEntries int `yaml:"min_entries"`
	MaxEntries int `yaml:"max_entries"`

	// MinEntrySize and MaxEntrySize bound entry content length in bytes.
	MinEntrySize int64 `yaml:"min_entry_size"`
	MaxEntrySize int64 `yaml:"max_entry_size"`

	// Mutate enables the rename + extension-class removal step on
	// update trials.
	Mutate bool `yaml:"mutate"`

	// Huge configures the large-archive trial variant.
	Huge HugeConfig `yaml:"huge,omitempty"`

	// Lister optionally names an external tool (command plus args) run
	// over each final artifact; its output is parsed for entry names
	// and cross-checked against the archive.
	Lister []string `yaml:"lister,omitempty"`
}

// HugeConfig sizes the large-archive trial. The point of the variant is
// proving the size-extension mode is actually exercised, so entry count
// and size must multiply out beyond the 32-bit boundary.
type HugeConfig struct {
	Enabled   bool  `yaml:"enabled"`
	Entries   int   `yaml:"entries"`
	EntrySize int64 `yaml:"entry_size"`
}

// LoadConfig reads and validates a matrix config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates YAML config bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// UnmarshalYAML validates Op spellings during decode.
func (o *Op) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	op, err := ParseOp(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(cfg.Modes) == 0 {
		return fmt.Errorf("modes list is required and must be non-empty")
	}
	if len(cfg.Ops) == 0 {
		return fmt.Errorf("ops list is required and must be non-empty")
	}
	if cfg.MinEntries <= 0 {
		return fmt.Errorf("min_entries must be positive")
	}
	if cfg.MaxEntries < cfg.MinEntries {
		return fmt.Errorf("max_entries (%d) must be >= min_entries (%d)", cfg.MaxEntries, cfg.MinEntries)
	}
	if cfg.MinEntrySize < 0 {
		return fmt.Errorf("min_entry_size must be non-negative")
	}
	if cfg.MaxEntrySize < cfg.MinEntrySize {
		return fmt.Errorf("max_entry_size (%d) must be >= min_entry_size (%d)", cfg.MaxEntrySize, cfg.MinEntrySize)
	}
	if cfg.Huge.Enabled {
		if cfg.Huge.Entries <= 0 {
			return fmt.Errorf("huge.entries must be positive when huge is enabled")
		}
		if cfg.Huge.EntrySize <= 0 {
			return fmt.Errorf("huge.entry_size must be positive when huge is enabled")
		}
	}
	return nil
}
