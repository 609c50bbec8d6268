package report

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/scoreboard/timing/core"
	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

// UnitTableHook prints the functional unit table after every cycle of a
// core.
type UnitTableHook struct {
	w io.Writer
}

// NewUnitTableHook creates a hook that writes to w.
func NewUnitTableHook(w io.Writer) *UnitTableHook {
	return &UnitTableHook{w: w}
}

// Func implements sim.Hook.
func (h *UnitTableHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != core.HookPosCycle {
		return
	}

	units, ok := ctx.Item.([]scoreboard.UnitStatus)
	if !ok {
		return
	}

	clock, _ := ctx.Detail.(uint64)
	_ = WriteUnitTable(h.w, clock, units)
}
