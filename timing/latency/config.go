package latency

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// UnitConfig declares a group of identical functional units.
type UnitConfig struct {
	// Kind is matched against the unit kind an instruction requires.
	Kind string `json:"kind"`

	// Count is the number of instances of this unit. Must be > 0.
	Count int `json:"count"`

	// Latency is the number of cycles an instance spends executing.
	// Must be > 0.
	Latency uint64 `json:"latency"`
}

// TimingConfig holds the functional unit declarations of a scoreboard, in
// declaration order. The order is the tie-break between units that are
// eligible for the same transition in the same cycle.
type TimingConfig struct {
	Units []UnitConfig `json:"units"`
}

// DefaultTimingConfig returns the classic CDC 6600 style unit mix: one
// integer unit, two FP adders, two FP multipliers and one FP divider.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		Units: []UnitConfig{
			{Kind: "integer", Count: 1, Latency: 1},
			{Kind: "add", Count: 2, Latency: 2},
			{Kind: "mult", Count: 2, Latency: 10},
			{Kind: "div", Count: 1, Latency: 40},
		},
	}
}

// LoadConfig loads a TimingConfig from a JSON file.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := &TimingConfig{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := c.MarshalIndent()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// MarshalIndent serializes the config as indented JSON.
func (c *TimingConfig) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize timing config: %w", err)
	}
	return data, nil
}

// Validate checks that at least one unit is declared and every declaration
// is well formed. A kind may be declared more than once, with each
// declaration adding its own instances.
func (c *TimingConfig) Validate() error {
	if len(c.Units) == 0 {
		return errors.New("no functional units declared")
	}

	for i, u := range c.Units {
		if err := u.Validate(); err != nil {
			return fmt.Errorf("unit %d: %w", i, err)
		}
	}

	return nil
}

// Validate checks a single declaration.
func (u UnitConfig) Validate() error {
	if u.Kind == "" {
		return errors.New("kind must not be empty")
	}
	if u.Count <= 0 {
		return fmt.Errorf("%s: count must be > 0", u.Kind)
	}
	if u.Latency == 0 {
		return fmt.Errorf("%s: latency must be > 0", u.Kind)
	}
	return nil
}

// Kinds returns the distinct declared unit kinds in first-declaration order.
func (c *TimingConfig) Kinds() []string {
	var kinds []string
	seen := make(map[string]bool, len(c.Units))

	for _, u := range c.Units {
		if seen[u.Kind] {
			continue
		}
		seen[u.Kind] = true
		kinds = append(kinds, u.Kind)
	}

	return kinds
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	units := make([]UnitConfig, len(c.Units))
	copy(units, c.Units)
	return &TimingConfig{Units: units}
}
