package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"twharvest/pkg/interval"
)

var planAt string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the weekly windows an interval scan requests",
	Example: `  twharvest plan
  twharvest plan --at 2015-06-30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		if planAt != "" {
			t, err := time.Parse(time.DateOnly, planAt)
			if err != nil {
				return fmt.Errorf("invalid --at date: %w", err)
			}
			now = t
		}

		out := cmd.OutOrStdout()
		for w := range interval.Plan(now) {
			fmt.Fprintf(out, "%s\t%s\n", w.Since(), w.Until())
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d windows\n", interval.Count(now))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planAt, "at", "", "plan as of this UTC date (YYYY-MM-DD) instead of today")
}
