// Package scoreboard implements the scoreboarding algorithm for dynamic
// instruction scheduling on a processor with multiple functional units.
//
// Each call to Tick advances the clock by one cycle. In the first pass every
// unit, in declaration order, attempts at most one of Issue, Read Operands or
// Execute. In the second pass the units that did nothing in the first pass
// and have finished executing try to write back. The caller drives the loop:
//
//	board, err := scoreboard.New(config, program)
//	for !board.Done() {
//		board.Tick()
//	}
package scoreboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/scoreboard/insts"
	"github.com/sarchlab/scoreboard/timing/latency"
)

// ErrUnserviceable is returned when an instruction requires a unit kind that
// is not in the pool.
var ErrUnserviceable = errors.New("no functional unit can serve instruction")

// Statistics holds performance statistics of a run.
type Statistics struct {
	// Cycles is the number of cycles simulated.
	Cycles uint64
	// Issued is the number of instructions issued.
	Issued uint64
	// Completed is the number of instructions that wrote back.
	Completed uint64
	// StructuralStalls counts cycles the next instruction waited for a unit.
	StructuralStalls uint64
	// WAWStalls counts cycles the next instruction waited for its
	// destination register to be released.
	WAWStalls uint64
	// RAWStalls counts unit-cycles spent waiting for operands.
	RAWStalls uint64
	// WARStalls counts unit-cycles spent waiting to write back.
	WARStalls uint64
}

// CPI returns cycles per completed instruction.
func (s Statistics) CPI() float64 {
	if s.Completed == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Completed)
}

// Scoreboard owns the instruction stream, the functional unit pool and the
// register status of one simulation run.
type Scoreboard struct {
	units        []*FunctionalUnit
	instructions []*insts.Instruction

	// regStatus maps a register to the index of the unit producing it.
	regStatus map[string]int

	pc    int
	clock uint64

	stats Statistics
}

// New builds a scoreboard from unit declarations and a decoded program. It
// fails if a declaration is malformed or an instruction has no unit kind to
// run on. Stage cycles recorded on the instructions are reset.
func New(
	config *latency.TimingConfig,
	program []*insts.Instruction,
) (*Scoreboard, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid functional units: %w", err)
	}

	table := latency.NewTableWithConfig(config)
	if missing := table.Missing(program); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing unit kinds %s (declared: %s)",
			ErrUnserviceable, strings.Join(missing, ", "),
			strings.Join(config.Kinds(), ", "))
	}

	s := &Scoreboard{
		units:        make([]*FunctionalUnit, 0, table.NumUnits()),
		instructions: program,
	}

	perKind := make(map[string]int)
	for _, u := range config.Units {
		for n := 0; n < u.Count; n++ {
			perKind[u.Kind]++
			name := fmt.Sprintf("%s%d", u.Kind, perKind[u.Kind])
			s.units = append(s.units, NewFunctionalUnit(u.Kind, name, u.Latency))
		}
	}

	s.Reset()

	return s, nil
}

// Reset returns the scoreboard to its initial state so the program can be
// simulated again.
func (s *Scoreboard) Reset() {
	for _, fu := range s.units {
		fu.Clear()
		fu.locked = false
	}

	for _, inst := range s.instructions {
		inst.ResetTiming()
	}

	s.regStatus = make(map[string]int)
	s.pc = 0
	s.clock = 1
	s.stats = Statistics{}
}

// Clock returns the cycle the next Tick will simulate.
func (s *Scoreboard) Clock() uint64 {
	return s.clock
}

// PC returns the index of the next instruction to issue.
func (s *Scoreboard) PC() int {
	return s.pc
}

// Instructions returns the program with its recorded stage cycles.
func (s *Scoreboard) Instructions() []*insts.Instruction {
	return s.instructions
}

// Stats returns performance statistics.
func (s *Scoreboard) Stats() Statistics {
	return s.stats
}

// HasRemainingInsts returns true if instructions are left to issue.
func (s *Scoreboard) HasRemainingInsts() bool {
	return s.pc < len(s.instructions)
}

// Done returns true once every instruction has issued and no unit is busy.
func (s *Scoreboard) Done() bool {
	if s.HasRemainingInsts() {
		return false
	}

	for _, fu := range s.units {
		if fu.busy {
			return false
		}
	}

	return true
}

// Tick simulates one clock cycle.
func (s *Scoreboard) Tick() {
	for _, fu := range s.units {
		fu.locked = false
	}

	next := s.nextInstruction()

	for i, fu := range s.units {
		switch {
		case s.canIssue(next, fu):
			s.issue(next, i)
			next = nil
			fu.locked = true
		case s.canReadOperands(fu):
			s.readOperands(fu)
			fu.locked = true
		case s.canExecute(fu):
			s.execute(fu)
			fu.locked = true
		case fu.Issued():
			// Occupied but waiting for operands.
			s.stats.RAWStalls++
			fu.locked = true
		}
	}

	if next != nil {
		switch s.issueBlocker(next) {
		case HazardWAW:
			s.stats.WAWStalls++
		default:
			s.stats.StructuralStalls++
		}
	}

	for i, fu := range s.units {
		if fu.locked || !s.readyToWriteBack(fu) {
			continue
		}

		if !s.canWriteBack(i) {
			s.stats.WARStalls++
			continue
		}

		s.writeBack(i)
	}

	s.clock++
	s.stats.Cycles++
}

func (s *Scoreboard) nextInstruction() *insts.Instruction {
	if !s.HasRemainingInsts() {
		return nil
	}
	return s.instructions[s.pc]
}

func (s *Scoreboard) issue(inst *insts.Instruction, idx int) {
	fu := s.units[idx]
	fu.Issue(inst, s.regStatus)

	if inst.HasDst() {
		s.regStatus[inst.Dst] = idx
	}

	inst.MarkStage(insts.StageIssue, s.clock)
	fu.instIndex = s.pc
	s.pc++
	s.stats.Issued++
}

func (s *Scoreboard) readOperands(fu *FunctionalUnit) {
	fu.ReadOperands()
	s.instructions[fu.instIndex].MarkStage(insts.StageReadOperands, s.clock)
}

func (s *Scoreboard) execute(fu *FunctionalUnit) {
	if fu.Execute() {
		s.instructions[fu.instIndex].MarkStage(insts.StageExecComplete, s.clock)
	}
}

func (s *Scoreboard) writeBack(idx int) {
	fu := s.units[idx]
	fu.WriteBack(idx, s.units)
	s.instructions[fu.instIndex].MarkStage(insts.StageWriteResult, s.clock)

	if fu.fi != insts.NoReg {
		delete(s.regStatus, fu.fi)
	}

	fu.Clear()
	s.stats.Completed++
}
