// Package insts provides scoreboard instruction definitions and decoding.
//
// This package turns assembly text into structured instruction records. It
// supports:
//   - Immediate load: LI
//   - Loads and stores: LW, LD, SW, SD with an offset(base) memory operand
//   - Register-register arithmetic: ADD, SUB, ADDD, SUBD, MULTD, DIVD
//   - Register-immediate arithmetic: ADDI, SUBI
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode("MULTD F0, F2, F4")
//	fmt.Printf("Op: %v, Unit: %s, Dst: %s\n", inst.Op, inst.Unit, inst.Dst)
package insts

import "fmt"

// Op represents an opcode.
type Op uint8

// Opcodes.
const (
	OpUnknown Op = iota
	OpLI
	OpLW
	OpSW
	OpLD
	OpSD
	OpADD
	OpADDI
	OpSUB
	OpSUBI
	OpADDD
	OpSUBD
	OpMULTD
	OpDIVD
)

var opNames = map[Op]string{
	OpLI:    "LI",
	OpLW:    "LW",
	OpSW:    "SW",
	OpLD:    "LD",
	OpSD:    "SD",
	OpADD:   "ADD",
	OpADDI:  "ADDI",
	OpSUB:   "SUB",
	OpSUBI:  "SUBI",
	OpADDD:  "ADDD",
	OpSUBD:  "SUBD",
	OpMULTD: "MULTD",
	OpDIVD:  "DIVD",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Format represents an instruction operand layout.
type Format uint8

// Instruction formats.
const (
	FormatUnknown   Format = iota
	FormatImmLoad          // LI Rd, imm
	FormatLoadStore        // LD Rd, off(Rs) / SD Rt, off(Rs)
	FormatArith            // OP Rd, Rs, Rt
	FormatArithImm         // OP Rd, Rs, imm
)

// Unit kinds that instructions can be served by.
const (
	UnitInteger = "integer"
	UnitAdd     = "add"
	UnitMult    = "mult"
	UnitDiv     = "div"
)

// NoReg marks an absent register operand.
const NoReg = ""

// Stage identifies one of the four scoreboard stages.
type Stage uint8

// Scoreboard stages, in the order an instruction passes through them.
const (
	StageIssue Stage = iota
	StageReadOperands
	StageExecComplete
	StageWriteResult
	NumStages
)

var stageNames = [NumStages]string{
	"Issue", "Read Operands", "Execute Complete", "Write Result",
}

func (s Stage) String() string {
	if s < NumStages {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// NotReached is the cycle value of a stage the instruction has not completed.
// The scoreboard clock starts at 1, so it never collides with a real cycle.
const NotReached uint64 = 0

// Instruction represents a decoded instruction and the cycles at which it
// completed each scoreboard stage.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Operand layout
	Unit   string // Functional unit kind that can serve this instruction

	Dst  string // Destination register, NoReg for stores
	Src1 string // First source register, NoReg if absent
	Src2 string // Second source register, NoReg if absent

	// Imm holds the immediate of LI/ADDI/SUBI or the offset of a memory
	// operand.
	Imm int64

	// Text is the instruction as it appeared in the program.
	Text string

	cycles [NumStages]uint64
}

// Cycle returns the clock at which the instruction completed the stage, or
// NotReached.
func (i *Instruction) Cycle(s Stage) uint64 {
	return i.cycles[s]
}

// Reached returns true if the instruction has completed the stage.
func (i *Instruction) Reached(s Stage) bool {
	return i.cycles[s] != NotReached
}

// MarkStage records the clock at which the instruction completed the stage.
// Each stage can only be recorded once, after the previous stage and never at
// an earlier cycle.
func (i *Instruction) MarkStage(s Stage, clock uint64) {
	if clock == NotReached {
		panic("insts: stage cycle must be positive")
	}

	if i.cycles[s] != NotReached {
		panic(fmt.Sprintf("insts: %s of %q already recorded at cycle %d",
			s, i.Text, i.cycles[s]))
	}

	if s > StageIssue && i.cycles[s-1] == NotReached {
		panic(fmt.Sprintf("insts: %s of %q recorded before %s",
			s, i.Text, s-1))
	}

	if s > StageIssue && i.cycles[s-1] > clock {
		panic(fmt.Sprintf("insts: %s of %q at cycle %d precedes %s",
			s, i.Text, clock, s-1))
	}

	i.cycles[s] = clock
}

// Issue returns the issue cycle.
func (i *Instruction) Issue() uint64 { return i.cycles[StageIssue] }

// ReadOperands returns the read-operands cycle.
func (i *Instruction) ReadOperands() uint64 { return i.cycles[StageReadOperands] }

// ExecComplete returns the execute-complete cycle.
func (i *Instruction) ExecComplete() uint64 { return i.cycles[StageExecComplete] }

// WriteResult returns the write-back cycle.
func (i *Instruction) WriteResult() uint64 { return i.cycles[StageWriteResult] }

// Completed returns true if the instruction has written back its result.
func (i *Instruction) Completed() bool {
	return i.Reached(StageWriteResult)
}

// HasDst returns true if the instruction writes a register.
func (i *Instruction) HasDst() bool {
	return i.Dst != NoReg
}

// ResetTiming forgets all recorded stage cycles so the instruction can be
// simulated again.
func (i *Instruction) ResetTiming() {
	i.cycles = [NumStages]uint64{}
}

func (i *Instruction) String() string {
	return i.Text
}
