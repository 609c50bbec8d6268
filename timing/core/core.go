// Package core drives a scoreboard on the akita discrete-event engine.
// It wraps the scoreboard in a ticking component that advances one scoreboard
// cycle per engine tick and stops once the program has finished.
package core

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

// ErrCycleLimit is returned when a run exceeds its cycle ceiling.
var ErrCycleLimit = errors.New("cycle limit exceeded")

// HookPosCycle is triggered after every simulated cycle. The hook context
// carries the unit snapshot ([]scoreboard.UnitStatus) as Item and the cycle
// just simulated (uint64) as Detail.
var HookPosCycle = &sim.HookPos{Name: "Scoreboard Cycle"}

// Option configures a Core.
type Option func(*Core)

// WithEngine sets the engine that drives the core.
func WithEngine(engine sim.Engine) Option {
	return func(c *Core) {
		c.engine = engine
	}
}

// WithFreq sets the clock frequency of the core.
func WithFreq(freq sim.Freq) Option {
	return func(c *Core) {
		c.freq = freq
	}
}

// WithMaxCycles sets the cycle ceiling. Zero disables the ceiling.
func WithMaxCycles(n uint64) Option {
	return func(c *Core) {
		c.maxCycles = n
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// Core is a ticking component that runs a scoreboard to completion.
type Core struct {
	*sim.TickingComponent

	board     *scoreboard.Scoreboard
	engine    sim.Engine
	freq      sim.Freq
	maxCycles uint64
	logger    *slog.Logger

	err error
}

// NewCore creates a Core around a scoreboard.
func NewCore(name string, board *scoreboard.Scoreboard, opts ...Option) *Core {
	c := &Core{
		board:  board,
		freq:   1 * sim.GHz,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.engine == nil {
		c.engine = sim.NewSerialEngine()
	}

	c.TickingComponent = sim.NewTickingComponent(name, c.engine, c.freq, c)

	return c
}

// Board returns the driven scoreboard.
func (c *Core) Board() *scoreboard.Scoreboard {
	return c.board
}

// Engine returns the engine driving the core.
func (c *Core) Engine() sim.Engine {
	return c.engine
}

// Stats returns the scoreboard statistics.
func (c *Core) Stats() scoreboard.Statistics {
	return c.board.Stats()
}

// Tick advances the scoreboard by one cycle. It returns false once the
// program has finished or the cycle ceiling is hit, which stops the engine
// from scheduling further ticks.
func (c *Core) Tick() bool {
	if c.board.Done() {
		return false
	}

	if c.maxCycles > 0 && c.board.Stats().Cycles >= c.maxCycles {
		c.err = fmt.Errorf("%w: program unfinished after %d cycles (pc %d)",
			ErrCycleLimit, c.maxCycles, c.board.PC())
		return false
	}

	clock := c.board.Clock()
	c.board.Tick()

	c.logger.Debug("cycle",
		"component", c.Name(),
		"clock", clock,
		"pc", c.board.PC())

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCycle,
		Item:   c.board.Units(),
		Detail: clock,
	})

	return !c.board.Done()
}

// Run drives the engine until the program finishes. It returns
// ErrCycleLimit if the ceiling is reached first.
func (c *Core) Run() error {
	c.err = nil

	if c.board.Done() {
		return nil
	}

	c.TickLater()

	if err := c.engine.Run(); err != nil {
		return fmt.Errorf("engine run failed: %w", err)
	}

	if c.err != nil {
		return c.err
	}

	if !c.board.Done() {
		return fmt.Errorf("engine stopped at clock %d before the program finished",
			c.board.Clock())
	}

	stats := c.board.Stats()
	c.logger.Info("simulation finished",
		"component", c.Name(),
		"cycles", stats.Cycles,
		"instructions", stats.Completed,
		"cpi", stats.CPI())

	return nil
}
