package scoreboard

import (
	"github.com/sarchlab/scoreboard/insts"
)

// canIssue checks the structural hazard (unit busy or of the wrong kind) and
// the output dependency (destination already has a pending producer).
func (s *Scoreboard) canIssue(inst *insts.Instruction, fu *FunctionalUnit) bool {
	if inst == nil {
		return false
	}

	if inst.Unit != fu.kind || fu.busy {
		return false
	}

	if inst.HasDst() {
		if _, pending := s.regStatus[inst.Dst]; pending {
			return false
		}
	}

	return true
}

// canReadOperands checks that no source is still awaited from another unit.
func (s *Scoreboard) canReadOperands(fu *FunctionalUnit) bool {
	return fu.busy && !fu.read && fu.rj && fu.rk
}

// canExecute checks that operands were read and execute cycles remain.
// rj and rk are both false as well while every source is still awaited, so
// they cannot tell a unit that read its operands from one that is waiting.
func (s *Scoreboard) canExecute(fu *FunctionalUnit) bool {
	return fu.read && fu.Issued()
}

// readyToWriteBack checks that the unit finished executing.
func (s *Scoreboard) readyToWriteBack(fu *FunctionalUnit) bool {
	return fu.busy && fu.clocks == 0
}

// canWriteBack checks the WAR hazard: no other busy unit may still have to
// read the register this unit is about to overwrite.
func (s *Scoreboard) canWriteBack(self int) bool {
	fu := s.units[self]
	if fu.fi == insts.NoReg {
		return true
	}

	for i, f := range s.units {
		if i == self || !f.busy {
			continue
		}

		if f.awaitsRead(fu.fi) {
			return false
		}
	}

	return true
}

// issueBlocker classifies why inst could not issue this cycle.
func (s *Scoreboard) issueBlocker(inst *insts.Instruction) Hazard {
	if inst.HasDst() {
		if _, pending := s.regStatus[inst.Dst]; pending {
			return HazardWAW
		}
	}

	return HazardStructural
}

// Hazard names the reason an instruction or unit could not advance.
type Hazard uint8

// Hazard kinds.
const (
	HazardNone Hazard = iota
	HazardStructural
	HazardWAW
	HazardRAW
	HazardWAR
)

func (h Hazard) String() string {
	switch h {
	case HazardStructural:
		return "structural"
	case HazardWAW:
		return "WAW"
	case HazardRAW:
		return "RAW"
	case HazardWAR:
		return "WAR"
	default:
		return "none"
	}
}
