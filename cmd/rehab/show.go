// ABOUTME: CLI command for showing one exercise's prescription.
// ABOUTME: Prints the current target plus recent sessions and scaling history.
package main

import (
	"fmt"
	"sort"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showSessions int

var showCmd = &cobra.Command{
	Use:   "show <exercise>",
	Short: "Show an exercise's prescription and history",
	Long: `Show the current prescription of an exercise with its most recent
sessions and every scaling event.

Exercises that were never initialized or tracked show the catalog default.

EXAMPLES:

  rehab show wrist_flexion
  rehab show grip_squeeze -n 20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		p, err := eng.GetPrescription(cmd.Context(), currentUser(), args[0])
		if err != nil {
			return err
		}

		ex, err := eng.Catalog().Get(p.ExerciseID)
		if err != nil {
			return err
		}
		bold := color.New(color.Bold)
		faint := color.New(color.Faint)

		bold.Fprintf(out, "%s", ex.Name)
		faint.Fprintf(out, " (%s)\n", p.ExerciseID)
		fmt.Fprintf(out, "  target:   %s\n", target(p))
		fmt.Fprintf(out, "  initial:  %g %s\n", p.InitialWeight, p.Unit)
		fmt.Fprintf(out, "  progress: %d/%d completions toward evaluation\n",
			p.ConsecCompletions, models.EligibilityThreshold)

		if len(p.TrackingInstances) > 0 {
			sessions := make([]models.TrackingInstance, len(p.TrackingInstances))
			copy(sessions, p.TrackingInstances)
			sort.SliceStable(sessions, func(i, j int) bool {
				if !sessions[i].Date.Equal(sessions[j].Date) {
					return sessions[i].Date.After(sessions[j].Date)
				}
				return sessions[i].TimeOfDay > sessions[j].TimeOfDay
			})
			if len(sessions) > showSessions {
				sessions = sessions[:showSessions]
			}

			bold.Fprintln(out, "\nSessions")
			for _, ti := range sessions {
				status := color.New(color.FgYellow).Sprint("skipped")
				if ti.Completed {
					status = fmt.Sprintf("%d reps, pain %d", ti.Reps(), ti.Pain())
				}
				fmt.Fprintf(out, "  %s %s  %g %s  %s\n",
					faint.Sprint(ti.Date.Format("2006-01-02")), ti.TimeOfDay, ti.Weight, p.Unit, status)
			}
		}

		bold.Fprintln(out, "\nScaling")
		for _, ev := range p.ScalingHistory {
			fmt.Fprintf(out, "  %s %s %g %s x %d-%d\n",
				faint.Sprint(ev.Date.Format("2006-01-02")),
				eventColor(ev.Event).Sprint(padRight(string(ev.Event), 34)),
				ev.Weight, p.Unit, ev.RepRangeMin, ev.RepRangeMax)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().IntVarP(&showSessions, "sessions", "n", 10, "number of recent sessions to show")
	rootCmd.AddCommand(showCmd)
}
