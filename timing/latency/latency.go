// Package latency provides functional unit declarations for scoreboard
// simulation.
//
// Each declaration names a unit kind, how many instances of it exist and how
// many cycles an instance needs to execute an instruction. Declarations can
// come from the defaults, a JSON file or directives in an assembly program.
package latency

import (
	"github.com/sarchlab/scoreboard/insts"
)

// Table provides unit lookups over a TimingConfig.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new table with the default unit mix.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new table with custom unit declarations.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Lookup returns the first declaration of a unit kind.
func (t *Table) Lookup(kind string) (UnitConfig, bool) {
	for _, u := range t.config.Units {
		if u.Kind == kind {
			return u, true
		}
	}
	return UnitConfig{}, false
}

// GetLatency returns the execution latency of the first declared unit that
// can serve the instruction, or 0 if none can. Later declarations of the same
// kind may have other latencies; the scoreboard keeps one per instance.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 0
	}

	u, ok := t.Lookup(inst.Unit)
	if !ok {
		return 0
	}
	return u.Latency
}

// CanServe returns true if some declared unit kind matches the instruction.
func (t *Table) CanServe(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}

	_, ok := t.Lookup(inst.Unit)
	return ok
}

// Missing returns the unit kinds required by the instructions but not
// declared, in first-use order.
func (t *Table) Missing(program []*insts.Instruction) []string {
	var missing []string
	seen := make(map[string]bool)

	for _, inst := range program {
		if t.CanServe(inst) || seen[inst.Unit] {
			continue
		}
		seen[inst.Unit] = true
		missing = append(missing, inst.Unit)
	}

	return missing
}

// NumUnits returns the total number of unit instances.
func (t *Table) NumUnits() int {
	n := 0
	for _, u := range t.config.Units {
		n += u.Count
	}
	return n
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
