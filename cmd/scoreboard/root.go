package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	debug   bool
	envFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scoreboard",
	Short: "Scoreboard simulates dynamic instruction scheduling.",
	Long: `Scoreboard replays the classic scoreboarding algorithm cycle by ` +
		`cycle over an assembly program and reports when each instruction ` +
		`issued, read its operands, completed execution and wrote its result.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(envFile); err != nil {
			return err
		}

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}

		handler := slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Log every simulated cycle")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Environment file read before flags fall back to SCOREBOARD_* variables")
}

// loadEnv adds the variables of path to the process environment. Variables
// that are already set win, and a missing file is not an error.
func loadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
