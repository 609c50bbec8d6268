package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/scoreboard/timing/latency"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Print the default functional unit configuration as JSON.",
	Long: "`units` prints the configuration used when neither --config nor " +
		"unit directives are given. The output is a valid --config file.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := latency.DefaultTimingConfig().MarshalIndent()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	rootCmd.AddCommand(unitsCmd)
}
