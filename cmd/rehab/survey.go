// ABOUTME: CLI commands for the weekly load-management survey.
// ABOUTME: Submits surveys, previews the irritability index and shows reassessment status.
package main

import (
	"fmt"
	"strings"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/irritability"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var (
	surveyRestPain float64
	surveyWork     []string
	surveyHobby    []string
	surveyDryRun   bool
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Submit a load-management survey",
	Long: `Submit the weekly load-management survey.

Each activity is given as name:pain:recovery:time_to_aggravation, with pain
0-10 and both times in minutes. The irritability index is the worst activity
score, pain x recovery / (time_to_aggravation + 1), plus pain at rest,
capped at 30. Once submitted, evaluations use the index bands.

EXAMPLES:

  rehab survey --rest-pain 2 --work "typing:4:30:20"
  rehab survey --work "typing:4:30:20" --hobby "guitar:6:60:10"
  rehab survey --hobby "climbing:5:120:30" --dry-run
  rehab survey status`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		s := models.NewLoadManagementSurvey(currentUser())
		if surveyRestPain > 0 {
			s.WithRestPain(surveyRestPain)
		}
		for _, raw := range surveyWork {
			a, err := parseActivity(raw)
			if err != nil {
				return err
			}
			s.WithWorkActivity(a)
		}
		for _, raw := range surveyHobby {
			a, err := parseActivity(raw)
			if err != nil {
				return err
			}
			s.WithHobbyActivity(a)
		}

		if surveyDryRun {
			index := eng.CalculateIrritabilityIndex(s)
			fmt.Fprintf(out, "Irritability index: %.1f (%s)\n", *index, irritability.BandFor(*index))
			color.New(color.Faint).Fprintln(out, "dry run, nothing saved")
			return nil
		}

		res, err := eng.SubmitSurvey(cmd.Context(), s)
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "✓ Irritability index: %.1f (%s)\n", *res.Index, res.Band)
		fmt.Fprintf(out, "Next survey due %s\n", res.Program.NextReassessmentAt.Format("2006-01-02"))
		return nil
	},
}

var surveyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the program and when the next survey is due",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		user := currentUser()

		status, err := eng.Program(ctx, user)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Program started: %s\n", status.Program.StartedAt.Format("2006-01-02"))
		if status.Program.LastSurveyAt != nil {
			fmt.Fprintf(out, "Last survey:     %s\n", status.Program.LastSurveyAt.Format("2006-01-02"))
		}
		fmt.Fprintf(out, "Next survey:     %s\n", status.Program.NextReassessmentAt.Format("2006-01-02"))

		if latest, err := repo.LatestSurvey(ctx, user); err == nil && latest.IrritabilityIndex != nil {
			fmt.Fprintf(out, "Irritability:    %.1f (%s)\n",
				*latest.IrritabilityIndex, irritability.BandFor(*latest.IrritabilityIndex))
		}
		if status.ReassessmentDue {
			color.New(color.FgYellow).Fprintln(out, "⚠ Reassessment survey is due")
		}
		return nil
	},
}

// parseActivity reads name:pain:recovery:time_to_aggravation.
func parseActivity(raw string) (models.Activity, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return models.Activity{}, fmt.Errorf("invalid activity %q (use name:pain:recovery:time_to_aggravation)", raw)
	}

	nums := make([]float64, 3)
	for i, p := range parts[1:] {
		v, err := cast.ToFloat64E(strings.TrimSpace(p))
		if err != nil {
			return models.Activity{}, fmt.Errorf("invalid activity %q: %w", raw, err)
		}
		nums[i] = v
	}
	return models.Activity{
		Name:              strings.TrimSpace(parts[0]),
		PainLevel:         nums[0],
		RecoveryTime:      nums[1],
		TimeToAggravation: nums[2],
	}, nil
}

func init() {
	surveyCmd.Flags().Float64Var(&surveyRestPain, "rest-pain", 0, "pain level at rest 0-10 (0 for none)")
	surveyCmd.Flags().StringArrayVar(&surveyWork, "work", nil, "work activity name:pain:recovery:tta (repeatable)")
	surveyCmd.Flags().StringArrayVar(&surveyHobby, "hobby", nil, "hobby activity name:pain:recovery:tta (repeatable)")
	surveyCmd.Flags().BoolVar(&surveyDryRun, "dry-run", false, "compute the index without saving")

	surveyCmd.AddCommand(surveyStatusCmd)
	rootCmd.AddCommand(surveyCmd)
}
