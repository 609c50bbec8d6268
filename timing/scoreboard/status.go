package scoreboard

// UnitStatus is a read-only snapshot of one functional unit.
type UnitStatus struct {
	Name    string
	Kind    string
	Latency uint64
	Clocks  uint64
	Busy    bool

	Fi, Fj, Fk string
	Qj, Qk     string // producing unit names, empty if none
	Rj, Rk     bool

	// Inst is the program index of the instruction served, -1 if free.
	Inst int
}

// Units returns a snapshot of every unit, in pool order.
func (s *Scoreboard) Units() []UnitStatus {
	out := make([]UnitStatus, len(s.units))
	for i, fu := range s.units {
		out[i] = UnitStatus{
			Name:    fu.name,
			Kind:    fu.kind,
			Latency: fu.latency,
			Clocks:  fu.clocks,
			Busy:    fu.busy,
			Fi:      fu.fi,
			Fj:      fu.fj,
			Fk:      fu.fk,
			Qj:      s.unitName(fu.qj),
			Qk:      s.unitName(fu.qk),
			Rj:      fu.rj,
			Rk:      fu.rk,
			Inst:    fu.instIndex,
		}
	}

	return out
}

// RegisterStatus returns a copy of the register status table as register to
// producing unit name.
func (s *Scoreboard) RegisterStatus() map[string]string {
	out := make(map[string]string, len(s.regStatus))
	for reg, idx := range s.regStatus {
		out[reg] = s.units[idx].name
	}
	return out
}

func (s *Scoreboard) unitName(idx int) string {
	if idx == NoUnit {
		return ""
	}
	return s.units[idx].name
}
