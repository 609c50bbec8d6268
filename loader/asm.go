// Package loader provides loading of scoreboard assembly programs.
//
// A program file holds one statement per line. Lines starting with '.' declare
// functional units as ".kind count latency", every other line is an
// instruction. Text after ';' is a comment, as is a line starting with '#'.
// Blank lines are skipped.
//
//	# two multipliers
//	.integer 1 1
//	.mult    2 10
//	LD    F2, 45(R3)
//	MULTD F0, F2, F4   ; waits for F2
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/scoreboard/insts"
	"github.com/sarchlab/scoreboard/timing/latency"
)

// Program represents a loaded assembly program.
type Program struct {
	// Units holds the unit directives in declaration order, nil if the file
	// declares none.
	Units *latency.TimingConfig
	// Instructions holds the decoded instructions in program order.
	Instructions []*insts.Instruction
}

// UnitsOr returns the declared units, or fallback if the program declares
// none.
func (p *Program) UnitsOr(fallback *latency.TimingConfig) *latency.TimingConfig {
	if p.Units == nil {
		return fallback
	}
	return p.Units
}

// Load reads and parses an assembly program file.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return prog, nil
}

// Parse parses an assembly program. Any malformed line fails the whole
// program.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{}
	decoder := insts.NewDecoder()
	scanner := bufio.NewScanner(r)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			unit, err := parseDirective(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

			if prog.Units == nil {
				prog.Units = &latency.TimingConfig{}
			}
			prog.Units.Units = append(prog.Units.Units, unit)

			continue
		}

		inst, err := decoder.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		prog.Instructions = append(prog.Instructions, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	if prog.Units != nil {
		if err := prog.Units.Validate(); err != nil {
			return nil, fmt.Errorf("invalid unit directives: %w", err)
		}
	}

	return prog, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}

	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return ""
	}

	return line
}

// parseDirective parses ".kind count latency".
func parseDirective(line string) (latency.UnitConfig, error) {
	toks := strings.Fields(line)
	if len(toks) != 3 {
		return latency.UnitConfig{}, fmt.Errorf(
			"unit directive %q: expected .kind count latency", line)
	}

	count, err := strconv.Atoi(toks[1])
	if err != nil {
		return latency.UnitConfig{}, fmt.Errorf(
			"unit directive %q: invalid count %q", line, toks[1])
	}

	lat, err := strconv.ParseUint(toks[2], 10, 64)
	if err != nil {
		return latency.UnitConfig{}, fmt.Errorf(
			"unit directive %q: invalid latency %q", line, toks[2])
	}

	unit := latency.UnitConfig{
		Kind:    toks[0][1:],
		Count:   count,
		Latency: lat,
	}

	if err := unit.Validate(); err != nil {
		return latency.UnitConfig{}, fmt.Errorf("unit directive %q: %w", line, err)
	}

	return unit, nil
}
