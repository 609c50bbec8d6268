package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"github.com/xyproto/env/v2"

	"github.com/sarchlab/scoreboard/loader"
	"github.com/sarchlab/scoreboard/report"
	"github.com/sarchlab/scoreboard/timing/core"
	"github.com/sarchlab/scoreboard/timing/latency"
	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

// defaultMaxCycles bounds a run when SCOREBOARD_MAX_CYCLES is not set.
const defaultMaxCycles = 1000000

type runOptions struct {
	programPath string
	configPath  string
	maxCycles   uint64
	verbose     bool
	csvPath     string
	sqlitePath  string
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run <program.asm>",
	Short: "Simulate an assembly program and print its stage timing.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runOpts.programPath = args[0]
		applyEnvDefaults(cmd, &runOpts)
		return runProgram(runOpts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runOpts.configPath, "config", "",
		"Path to a functional unit configuration JSON file")
	runCmd.Flags().Uint64Var(&runOpts.maxCycles, "max-cycles", defaultMaxCycles,
		"Abort if the program has not finished after this many cycles "+
			"(0 disables, default from SCOREBOARD_MAX_CYCLES)")
	runCmd.Flags().BoolVarP(&runOpts.verbose, "verbose", "v", false,
		"Print the functional unit table after every cycle "+
			"(default from SCOREBOARD_VERBOSE)")
	runCmd.Flags().StringVar(&runOpts.csvPath, "csv", "",
		"Also store the timing report in this CSV file")
	runCmd.Flags().StringVar(&runOpts.sqlitePath, "sqlite", "",
		"Also store the timing report in this SQLite database")
}

// applyEnvDefaults fills the flags the user did not set from the
// environment. It runs after the env file is loaded, so both the process
// environment and the env file apply.
func applyEnvDefaults(cmd *cobra.Command, opts *runOptions) {
	if !cmd.Flags().Changed("max-cycles") {
		opts.maxCycles = uint64(env.Int("SCOREBOARD_MAX_CYCLES", defaultMaxCycles))
	}

	if !cmd.Flags().Changed("verbose") {
		opts.verbose = env.Bool("SCOREBOARD_VERBOSE")
	}
}

// resolveUnits picks the unit declarations: a config file wins over program
// directives, which win over the defaults.
func resolveUnits(opts runOptions, prog *loader.Program) (*latency.TimingConfig, error) {
	if opts.configPath != "" {
		return latency.LoadConfig(opts.configPath)
	}

	return prog.UnitsOr(latency.DefaultTimingConfig()), nil
}

func runProgram(opts runOptions, out io.Writer) error {
	prog, err := loader.Load(opts.programPath)
	if err != nil {
		return err
	}

	units, err := resolveUnits(opts, prog)
	if err != nil {
		return err
	}

	board, err := scoreboard.New(units, prog.Instructions)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.programPath, err)
	}

	slog.Debug("program loaded",
		"path", opts.programPath,
		"instructions", len(prog.Instructions),
		"units", len(board.Units()))

	c := core.NewCore("Scoreboard", board, core.WithMaxCycles(opts.maxCycles))
	if opts.verbose {
		c.AcceptHook(report.NewUnitTableHook(out))
	}

	runErr := c.Run()

	// Partial results are still reported when the ceiling is hit.
	if err := report.WriteTimingTable(out, board.Instructions()); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}

	if err := report.WriteSummary(out, c.Stats()); err != nil {
		return err
	}

	return storeRecords(opts, board)
}

// closeAtExit schedules a report writer to be flushed and closed when the
// process exits.
var closeAtExit = func(w report.Writer) {
	atexit.Register(func() {
		if err := w.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close report: %v\n", err)
		}
	})
}

func storeRecords(opts runOptions, board *scoreboard.Scoreboard) error {
	var writers []report.Writer

	if opts.csvPath != "" {
		w, err := report.NewCSVWriter(opts.csvPath)
		if err != nil {
			return err
		}
		closeAtExit(w)
		writers = append(writers, w)
	}

	if opts.sqlitePath != "" {
		w, err := report.NewSQLiteWriter(opts.sqlitePath)
		if err != nil {
			return err
		}
		closeAtExit(w)
		writers = append(writers, w)
	}

	if len(writers) == 0 {
		return nil
	}

	runID := report.NewRunID()
	records := report.RecordsOf(runID, board.Instructions())

	for _, w := range writers {
		if err := report.WriteAll(w, records); err != nil {
			return err
		}
	}

	slog.Info("report stored", "run", runID)

	return nil
}
