// Package report formats and stores the results of a scoreboard run.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/sarchlab/scoreboard/insts"
	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

const timingHeader = `                                  Read      Execute   Write
                          Issue   Operands  Complete  Result
                          ----------------------------------------
`

const unitHeader = `UNIT      Clocks  Busy     Fi    Fj    Fk  Qj        Qk           Rj    Rk
------------------------------------------------------------------------------
`

// WriteTimingTable writes the stage cycles of every instruction. Stages that
// were never reached are shown as "-".
func WriteTimingTable(w io.Writer, program []*insts.Instruction) error {
	if _, err := io.WriteString(w, timingHeader); err != nil {
		return err
	}

	for _, inst := range program {
		_, err := fmt.Fprintf(w, "%-26s%-8s%-10s%-10s%-8s\n",
			inst.Text,
			cycle(inst.Issue()),
			cycle(inst.ReadOperands()),
			cycle(inst.ExecComplete()),
			cycle(inst.WriteResult()))
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteUnitTable writes the functional unit status after a cycle.
func WriteUnitTable(
	w io.Writer,
	clock uint64,
	units []scoreboard.UnitStatus,
) error {
	if _, err := fmt.Fprintf(w, "CLOCK: %d\n%s", clock, unitHeader); err != nil {
		return err
	}

	for _, u := range units {
		_, err := fmt.Fprintf(w, "%-9s%7d%6t%7s%6s%6s  %-9s %-9s%6t%6t\n",
			u.Name, u.Clocks, u.Busy,
			reg(u.Fi), reg(u.Fj), reg(u.Fk),
			reg(u.Qj), reg(u.Qk),
			u.Rj, u.Rk)
		if err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// WriteSummary writes the run statistics.
func WriteSummary(w io.Writer, stats scoreboard.Statistics) error {
	_, err := fmt.Fprintf(w, `
Total Instructions: %d
Total Cycles: %d
CPI: %.2f

Stalls:
  Structural (issue): %4d cycles
  WAW (issue):        %4d cycles
  RAW (operands):     %4d unit-cycles
  WAR (write back):   %4d unit-cycles
`,
		stats.Completed, stats.Cycles, stats.CPI(),
		stats.StructuralStalls, stats.WAWStalls,
		stats.RAWStalls, stats.WARStalls)

	return err
}

func cycle(c uint64) string {
	if c == insts.NotReached {
		return "-"
	}
	return strconv.FormatUint(c, 10)
}

func reg(r string) string {
	if r == "" {
		return "-"
	}
	return r
}
