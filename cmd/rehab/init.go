// ABOUTME: CLI command for seeding prescriptions from endurance tests.
// ABOUTME: Initializes one exercise or the whole catalog.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initTests map[string]int

var initCmd = &cobra.Command{
	Use:   "init [exercise]",
	Short: "Create starting prescriptions from endurance tests",
	Long: `Create starting prescriptions from reps-to-failure endurance tests.

The starting weight is floor(4 x sqrt(reps / 30)), at least 1, doubled for
curl variations. Exercises without a test result start at the catalog
default. Existing prescriptions are never overwritten, so init can be
re-run to retry exercises that failed.

EXAMPLES:

  rehab init --test wrist_flexion_test=35 --test wrist_extension_test=28
  rehab init grip_squeeze --test grip_test=40
  rehab init                          # catalog defaults for everything`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		user := currentUser()

		if len(args) == 1 {
			p, err := eng.InitializePrescription(ctx, user, args[0], initTests)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(out, "✓ %s: %s\n", p.ExerciseID, target(p))
			return nil
		}

		report, err := eng.InitializeAllPrescriptions(ctx, user, initTests)
		if report == nil {
			return err
		}

		green := color.New(color.FgGreen)
		faint := color.New(color.Faint)
		for _, id := range report.Seeded {
			p, perr := eng.GetPrescription(ctx, user, id)
			if perr != nil {
				return perr
			}
			green.Fprintf(out, "✓ %s %s\n", padRight(id, 28), target(p))
		}
		for _, id := range report.Skipped {
			faint.Fprintf(out, "- %s already initialized\n", padRight(id, 28))
		}
		for _, id := range report.Failed {
			color.New(color.FgRed).Fprintf(out, "✗ %s failed\n", padRight(id, 28))
		}

		if err != nil {
			return fmt.Errorf("%d exercises failed, run init again to retry: %w", len(report.Failed), err)
		}
		if report.Program != nil {
			fmt.Fprintf(out, "\nNext reassessment survey: %s\n", report.Program.NextReassessmentAt.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringToIntVarP(&initTests, "test", "t", nil, "endurance result as test_id=reps (repeatable)")
	rootCmd.AddCommand(initCmd)
}
