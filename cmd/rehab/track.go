// ABOUTME: CLI command for logging an exercise session.
// ABOUTME: Records AM/PM sessions and reports any resulting scaling.
package main

import (
	"fmt"
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/engine"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	trackReps    string
	trackPain    string
	trackSkipped bool
	trackDate    string
)

var trackCmd = &cobra.Command{
	Use:     "track <exercise> <am|pm>",
	Aliases: []string{"t", "log"},
	Short:   "Log an exercise session",
	Long: `Log one AM or PM session of an exercise.

Logging the same exercise, date and session again replaces the earlier
entry. After 6 completed sessions the prescription is evaluated. Peak pain
of 7 or more triggers an immediate decrease.

EXAMPLES:

  rehab track wrist_flexion am --reps 17 --pain 2
  rehab track wrist_flexion pm --skipped
  rehab track grip_squeeze am --reps 22 --pain 0 --date 2025-03-01`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		user := currentUser()

		var date time.Time
		if trackDate != "" {
			d, err := models.ParseDate(trackDate)
			if err != nil {
				return err
			}
			date = d
		}

		before, err := eng.GetPrescription(ctx, user, args[0])
		if err != nil {
			return err
		}

		data := engine.TrackingData{TimeOfDay: args[1], Completed: !trackSkipped}
		if !trackSkipped {
			data.RepsPerformed = trackReps
			data.PainLevel = trackPain
		}

		p, err := eng.RecordTracking(ctx, user, args[0], data, date)
		if err != nil {
			return err
		}

		if trackSkipped {
			color.New(color.FgYellow).Fprintf(out, "- %s %s skipped\n", p.ExerciseID, args[1])
		} else {
			color.New(color.FgGreen).Fprintf(out, "✓ %s %s logged\n", p.ExerciseID, args[1])
		}
		printScaled(out, len(before.ScalingHistory), p)
		fmt.Fprintf(out, "  %s, %d/%d completions toward evaluation\n",
			target(p), p.ConsecCompletions, models.EligibilityThreshold)
		return nil
	},
}

func init() {
	trackCmd.Flags().StringVarP(&trackReps, "reps", "r", "", "reps performed")
	trackCmd.Flags().StringVarP(&trackPain, "pain", "p", "", "peak pain 0-10")
	trackCmd.Flags().BoolVar(&trackSkipped, "skipped", false, "session was not completed")
	trackCmd.Flags().StringVar(&trackDate, "date", "", "session date YYYY-MM-DD (default today)")
	rootCmd.AddCommand(trackCmd)
}
