// ABOUTME: CLI command for listing stored prescriptions.
// ABOUTME: One line per exercise with target, completion rate and latest event.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List your prescriptions",
	Long: `List every stored prescription.

OUTPUT FORMAT:

  Each line shows: EXERCISE  TARGET  SESSIONS  COMPLETION  PROGRESS  LATEST EVENT

  PROGRESS is the weight change since the prescription was created.

EXAMPLES:

  rehab list
  rehab ls -u alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		user := currentUser()

		list, err := eng.ListPrescriptions(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to list prescriptions: %w", err)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No prescriptions yet. Run 'rehab init' to get started.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, p := range list {
			s := p.Stats()
			fmt.Fprintf(out, "%s %s %s %s %s %s\n",
				padRight(p.ExerciseID, 28),
				padRight(target(p), 20),
				faint.Sprint(padRight(fmt.Sprintf("%d sessions", s.LoggedSessions), 12)),
				padRight(fmt.Sprintf("%3.0f%%", s.CompletionRate*100), 5),
				padRight(fmt.Sprintf("%+.0f%%", s.ProgressPercent), 6),
				eventColor(s.LatestEvent).Sprint(s.LatestEvent))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
