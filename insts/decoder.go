package insts

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownOpcode is returned when the leading token is not a supported
// operation.
var ErrUnknownOpcode = errors.New("unknown opcode")

// ErrEmptyInstruction is returned when a line holds no tokens.
var ErrEmptyInstruction = errors.New("empty instruction")

// opInfo is the static decode entry of an opcode.
type opInfo struct {
	format Format
	unit   string
	store  bool
}

var opTable = map[string]struct {
	op Op
	opInfo
}{
	"LI":    {OpLI, opInfo{format: FormatImmLoad, unit: UnitInteger}},
	"LW":    {OpLW, opInfo{format: FormatLoadStore, unit: UnitInteger}},
	"LD":    {OpLD, opInfo{format: FormatLoadStore, unit: UnitInteger}},
	"SW":    {OpSW, opInfo{format: FormatLoadStore, unit: UnitInteger, store: true}},
	"SD":    {OpSD, opInfo{format: FormatLoadStore, unit: UnitInteger, store: true}},
	"ADD":   {OpADD, opInfo{format: FormatArith, unit: UnitInteger}},
	"ADDI":  {OpADDI, opInfo{format: FormatArithImm, unit: UnitInteger}},
	"SUB":   {OpSUB, opInfo{format: FormatArith, unit: UnitInteger}},
	"SUBI":  {OpSUBI, opInfo{format: FormatArithImm, unit: UnitInteger}},
	"ADDD":  {OpADDD, opInfo{format: FormatArith, unit: UnitAdd}},
	"SUBD":  {OpSUBD, opInfo{format: FormatArith, unit: UnitAdd}},
	"MULTD": {OpMULTD, opInfo{format: FormatArith, unit: UnitMult}},
	"DIVD":  {OpDIVD, opInfo{format: FormatArith, unit: UnitDiv}},
}

// UnitFor returns the functional unit kind required by an opcode token.
func UnitFor(token string) (string, bool) {
	e, ok := opTable[strings.ToUpper(token)]
	if !ok {
		return "", false
	}
	return e.unit, true
}

// Decoder decodes assembly text into instructions.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Tokenize splits an instruction on commas and whitespace, dropping empty
// tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// Decode decodes one line of assembly text.
func (d *Decoder) Decode(text string) (*Instruction, error) {
	text = strings.TrimSpace(text)
	toks := Tokenize(text)
	if len(toks) == 0 {
		return nil, ErrEmptyInstruction
	}

	e, ok := opTable[strings.ToUpper(toks[0])]
	if !ok {
		return nil, fmt.Errorf("%w %q in %q", ErrUnknownOpcode, toks[0], text)
	}

	inst := &Instruction{
		Op:     e.op,
		Format: e.format,
		Unit:   e.unit,
		Text:   text,
	}

	var err error
	switch e.format {
	case FormatImmLoad:
		err = d.decodeImmLoad(toks[1:], inst)
	case FormatLoadStore:
		err = d.decodeLoadStore(toks[1:], inst, e.store)
	case FormatArith:
		err = d.decodeArith(toks[1:], inst)
	case FormatArithImm:
		err = d.decodeArithImm(toks[1:], inst)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", text, err)
	}

	return inst, nil
}

// decodeImmLoad decodes LI Rd, imm.
func (d *Decoder) decodeImmLoad(ops []string, inst *Instruction) error {
	if err := expectOperands(ops, 2); err != nil {
		return err
	}

	imm, err := parseImm(ops[1])
	if err != nil {
		return err
	}

	inst.Dst = ops[0]
	inst.Imm = imm

	return nil
}

// decodeLoadStore decodes LD Rd, off(Rs) and SD Rt, off(Rs).
// Loads keep the base in Src2. Stores write no register: the stored
// register becomes Src1.
func (d *Decoder) decodeLoadStore(
	ops []string,
	inst *Instruction,
	store bool,
) error {
	if err := expectOperands(ops, 2); err != nil {
		return err
	}

	off, base, err := parseMemOperand(ops[1])
	if err != nil {
		return err
	}

	inst.Imm = off
	inst.Src2 = base

	if store {
		inst.Src1 = ops[0]
	} else {
		inst.Dst = ops[0]
	}

	return nil
}

// decodeArith decodes OP Rd, Rs, Rt.
func (d *Decoder) decodeArith(ops []string, inst *Instruction) error {
	if err := expectOperands(ops, 3); err != nil {
		return err
	}

	inst.Dst = ops[0]
	inst.Src1 = ops[1]
	inst.Src2 = ops[2]

	return nil
}

// decodeArithImm decodes OP Rd, Rs, imm.
func (d *Decoder) decodeArithImm(ops []string, inst *Instruction) error {
	if err := expectOperands(ops, 3); err != nil {
		return err
	}

	imm, err := parseImm(ops[2])
	if err != nil {
		return err
	}

	inst.Dst = ops[0]
	inst.Src1 = ops[1]
	inst.Imm = imm

	return nil
}

func expectOperands(ops []string, n int) error {
	if len(ops) != n {
		return fmt.Errorf("expected %d operands, got %d", n, len(ops))
	}
	return nil
}

// parseImm parses a decimal or 0x-prefixed hexadecimal immediate, with an
// optional leading '#' and sign.
func parseImm(tok string) (int64, error) {
	digits := strings.TrimPrefix(tok, "#")

	neg := false
	switch {
	case strings.HasPrefix(digits, "-"):
		neg = true
		digits = digits[1:]
	case strings.HasPrefix(digits, "+"):
		digits = digits[1:]
	}

	base := 10
	if hex, ok := cutHexPrefix(digits); ok {
		base = 16
		digits = hex
	}

	// A second sign after the prefix is not an immediate.
	if digits == "" || digits[0] == '-' || digits[0] == '+' {
		return 0, fmt.Errorf("invalid immediate %q", tok)
	}

	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil || (!neg && v > math.MaxInt64) || v > 1<<63 {
		return 0, fmt.Errorf("invalid immediate %q", tok)
	}

	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}

func cutHexPrefix(s string) (string, bool) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return rest, true
	}
	return strings.CutPrefix(s, "0X")
}

// parseMemOperand splits off(base). The offset may be omitted.
func parseMemOperand(tok string) (int64, string, error) {
	open := strings.IndexByte(tok, '(')
	if open < 0 || !strings.HasSuffix(tok, ")") {
		return 0, "", fmt.Errorf("invalid memory operand %q", tok)
	}

	base := tok[open+1 : len(tok)-1]
	if base == "" {
		return 0, "", fmt.Errorf("missing base register in %q", tok)
	}

	if open == 0 {
		return 0, base, nil
	}

	off, err := parseImm(tok[:open])
	if err != nil {
		return 0, "", err
	}

	return off, base, nil
}
