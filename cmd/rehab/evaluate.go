// ABOUTME: CLI command for evaluating an exercise's progression on demand.
// ABOUTME: Optionally overrides the irritability index.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var evaluateIndex float64

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <exercise>",
	Short: "Evaluate recent sessions and scale the prescription",
	Long: `Evaluate the last 6 completed sessions of an exercise now.

Without --index the latest survey's irritability index is used; with no
survey, tracking-only rules apply. Evaluating resets the completion count.

EXAMPLES:

  rehab evaluate wrist_flexion
  rehab evaluate wrist_flexion --index 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		user := currentUser()

		var index *float64
		if cmd.Flags().Changed("index") {
			index = &evaluateIndex
		}

		before, err := eng.GetPrescription(ctx, user, args[0])
		if err != nil {
			return err
		}
		p, err := eng.EvaluateProgression(ctx, user, args[0], index)
		if err != nil {
			return err
		}

		if len(p.ScalingHistory) == len(before.ScalingHistory) {
			fmt.Fprintf(out, "No change: %s\n", target(p))
			return nil
		}
		printScaled(out, len(before.ScalingHistory), p)
		return nil
	},
}

func init() {
	evaluateCmd.Flags().Float64Var(&evaluateIndex, "index", 0, "irritability index 0-30 to evaluate with")
	rootCmd.AddCommand(evaluateCmd)
}
