package scoreboard

import (
	"github.com/sarchlab/scoreboard/insts"
)

// NoUnit marks an absent producer reference.
const NoUnit = -1

// noInst marks a unit that serves no instruction.
const noInst = -1

// FunctionalUnit is one execution resource of the pool. Producer references
// (qj, qk) are indices into the owning Scoreboard's pool; a unit never owns
// another unit.
type FunctionalUnit struct {
	kind    string
	name    string
	latency uint64

	clocks uint64 // remaining execute cycles, meaningful while busy
	busy   bool

	fi, fj, fk string // destination and source registers
	qj, qk     int    // units producing fj and fk
	rj, rk     bool   // fj/fk not awaited from another unit
	read       bool   // operands read, execution may start

	instIndex int
	locked    bool
}

// NewFunctionalUnit creates a free unit of the given kind and latency.
func NewFunctionalUnit(kind, name string, latency uint64) *FunctionalUnit {
	fu := &FunctionalUnit{
		kind:    kind,
		name:    name,
		latency: latency,
	}
	fu.Clear()

	return fu
}

// Kind returns the unit kind.
func (fu *FunctionalUnit) Kind() string { return fu.kind }

// Name returns the unit's name.
func (fu *FunctionalUnit) Name() string { return fu.name }

// Latency returns the number of cycles the unit needs to execute.
func (fu *FunctionalUnit) Latency() uint64 { return fu.latency }

// Busy returns true while the unit serves an instruction that has not
// written back.
func (fu *FunctionalUnit) Busy() bool { return fu.busy }

// Clear resets the unit to the free state.
func (fu *FunctionalUnit) Clear() {
	fu.clocks = fu.latency
	fu.busy = false
	fu.fi, fu.fj, fu.fk = insts.NoReg, insts.NoReg, insts.NoReg
	fu.qj, fu.qk = NoUnit, NoUnit
	fu.rj, fu.rk = true, true
	fu.read = false
	fu.instIndex = noInst
}

// Issued returns true if the unit is occupied and still has execute cycles
// left. A busy unit with no cycles left is waiting to write back.
func (fu *FunctionalUnit) Issued() bool {
	return fu.busy && fu.clocks > 0
}

// Issue occupies the unit with an instruction. Sources that have a producer
// in regStatus are marked not ready. The caller records the unit as the
// producer of the destination register.
func (fu *FunctionalUnit) Issue(inst *insts.Instruction, regStatus map[string]int) {
	fu.busy = true
	fu.fi = inst.Dst
	fu.fj = inst.Src1
	fu.fk = inst.Src2

	fu.qj = producerOf(regStatus, inst.Src1)
	fu.qk = producerOf(regStatus, inst.Src2)

	fu.rj = fu.qj == NoUnit
	fu.rk = fu.qk == NoUnit
}

func producerOf(regStatus map[string]int, reg string) int {
	if reg == insts.NoReg {
		return NoUnit
	}

	if p, ok := regStatus[reg]; ok {
		return p
	}

	return NoUnit
}

// ReadOperands marks both operands as read. From here on rj/rk being false
// means the unit no longer needs the old values of fj/fk.
func (fu *FunctionalUnit) ReadOperands() {
	fu.read = true
	fu.rj = false
	fu.rk = false
}

// Execute spends one execute cycle and returns true if execution completed.
func (fu *FunctionalUnit) Execute() bool {
	fu.clocks--
	return fu.clocks == 0
}

// WriteBack notifies every unit waiting on this unit that its operand is
// ready. self is this unit's index in units. The caller clears the unit
// afterwards.
func (fu *FunctionalUnit) WriteBack(self int, units []*FunctionalUnit) {
	for _, f := range units {
		if f.qj == self {
			f.rj = true
			f.qj = NoUnit
		}

		if f.qk == self {
			f.rk = true
			f.qk = NoUnit
		}
	}
}

// awaitsRead returns true if the unit still has to read reg, i.e. reg is one
// of its sources and that source is available but not read yet.
func (fu *FunctionalUnit) awaitsRead(reg string) bool {
	return (fu.fj == reg && fu.rj) || (fu.fk == reg && fu.rk)
}
