// ABOUTME: MCP tool implementations for the rehab engine.
// ABOUTME: Tracking, evaluation, seeding, prescription lookup and surveys.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/engine"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/irritability"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "record_tracking",
		Description: "Log an AM or PM exercise session; evaluates progression on high pain or after 6 completions",
	}, s.handleRecordTracking)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "evaluate_progression",
		Description: "Evaluate the last 6 completed sessions of an exercise and apply any scaling event",
	}, s.handleEvaluateProgression)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "initialize_prescription",
		Description: "Create a starting prescription for one exercise from endurance-test results",
	}, s.handleInitializePrescription)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "initialize_all_prescriptions",
		Description: "Create starting prescriptions for every catalog exercise from endurance-test results",
	}, s.handleInitializeAll)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_prescription",
		Description: "Get the current weight and rep range for an exercise",
	}, s.handleGetPrescription)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_prescriptions",
		Description: "List every stored prescription for a user",
	}, s.handleListPrescriptions)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "calculate_irritability_index",
		Description: "Compute the irritability index of a load-management survey without saving it",
	}, s.handleCalculateIndex)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "submit_survey",
		Description: "Save a load-management survey; its irritability index drives later evaluations",
	}, s.handleSubmitSurvey)
}

// Tool input/output types

type recordTrackingInput struct {
	UserID        string `json:"user_id,omitempty" jsonschema:"User id, defaults to the server user"`
	ExerciseID    string `json:"exercise_id" jsonschema:"Catalog exercise id, e.g. wrist_flexion"`
	TimeOfDay     string `json:"time_of_day" jsonschema:"Session, AM or PM"`
	Completed     bool   `json:"completed" jsonschema:"Whether the session was completed"`
	RepsPerformed any    `json:"reps_performed,omitempty" jsonschema:"Reps performed; numbers or numeric strings"`
	PainLevel     any    `json:"pain_level,omitempty" jsonschema:"Peak pain 0-10; numbers or numeric strings"`
	Date          string `json:"date,omitempty" jsonschema:"Session date YYYY-MM-DD, defaults to today"`
}

type evaluateInput struct {
	UserID            string   `json:"user_id,omitempty" jsonschema:"User id, defaults to the server user"`
	ExerciseID        string   `json:"exercise_id" jsonschema:"Catalog exercise id"`
	IrritabilityIndex *float64 `json:"irritability_index,omitempty" jsonschema:"Index to evaluate with; looked up from the latest survey when omitted"`
}

type initializeInput struct {
	UserID     string         `json:"user_id,omitempty" jsonschema:"User id, defaults to the server user"`
	ExerciseID string         `json:"exercise_id" jsonschema:"Catalog exercise id"`
	Results    map[string]int `json:"results,omitempty" jsonschema:"Reps to failure keyed by endurance test id"`
}

type initializeAllInput struct {
	UserID  string         `json:"user_id,omitempty" jsonschema:"User id, defaults to the server user"`
	Results map[string]int `json:"results,omitempty" jsonschema:"Reps to failure keyed by endurance test id"`
}

type exerciseInput struct {
	UserID     string `json:"user_id,omitempty" jsonschema:"User id, defaults to the server user"`
	ExerciseID string `json:"exercise_id" jsonschema:"Catalog exercise id"`
}

type userInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User id, defaults to the server user"`
}

type activityInput struct {
	Name              string  `json:"name" jsonschema:"Activity name, e.g. typing"`
	PainLevel         float64 `json:"pain_level" jsonschema:"Pain during the activity, 0-10"`
	RecoveryTime      float64 `json:"recovery_time" jsonschema:"Minutes until symptoms settle afterwards"`
	TimeToAggravation float64 `json:"time_to_aggravation" jsonschema:"Minutes of activity before symptoms start"`
}

type surveyInput struct {
	UserID          string          `json:"user_id,omitempty" jsonschema:"User id, defaults to the server user"`
	PainAtRest      bool            `json:"pain_at_rest" jsonschema:"Whether there is pain at rest"`
	PainLevelAtRest float64         `json:"pain_level_at_rest,omitempty" jsonschema:"Pain at rest, 0-10"`
	WorkActivities  []activityInput `json:"work_activities,omitempty" jsonschema:"Aggravating work activities"`
	HobbyActivities []activityInput `json:"hobby_activities,omitempty" jsonschema:"Aggravating hobby activities"`
}

type prescriptionOutput struct {
	ExerciseID        string  `json:"exercise_id"`
	Weight            float64 `json:"weight"`
	Unit              string  `json:"unit"`
	RepMin            int     `json:"rep_min"`
	RepMax            int     `json:"rep_max"`
	ConsecCompletions int     `json:"consec_completions"`
	ScalingEligible   bool    `json:"scaling_eligible"`
	LatestEvent       string  `json:"latest_event,omitempty"`
	Sessions          int     `json:"sessions"`
	Message           string  `json:"message"`
}

type listOutput struct {
	Prescriptions []prescriptionOutput `json:"prescriptions"`
	Message       string               `json:"message"`
}

type seedOutput struct {
	Seeded  []string `json:"seeded"`
	Skipped []string `json:"skipped"`
	Failed  []string `json:"failed"`
	Message string   `json:"message"`
}

type indexOutput struct {
	IrritabilityIndex *float64 `json:"irritability_index"`
	Band              string   `json:"band,omitempty"`
	Message           string   `json:"message"`
}

func summarize(p *models.Prescription, msg string) prescriptionOutput {
	out := prescriptionOutput{
		ExerciseID:        p.ExerciseID,
		Weight:            p.CurrentWeight,
		Unit:              string(p.Unit),
		RepMin:            p.TargetRepMin,
		RepMax:            p.TargetRepMax,
		ConsecCompletions: p.ConsecCompletions,
		ScalingEligible:   p.ScalingEligible,
		Sessions:          len(p.TrackingInstances),
		Message:           msg,
	}
	if ev := p.LatestEvent(); ev != nil {
		out.LatestEvent = string(ev.Event)
	}
	return out
}

func describe(p *models.Prescription) string {
	return fmt.Sprintf("%s: %g %s x %d-%d reps", p.ExerciseID, p.CurrentWeight, p.Unit, p.TargetRepMin, p.TargetRepMax)
}

func (in surveyInput) survey(userID string) *models.LoadManagementSurvey {
	s := models.NewLoadManagementSurvey(userID)
	if in.PainAtRest {
		s.WithRestPain(in.PainLevelAtRest)
	}
	for _, a := range in.WorkActivities {
		s.WithWorkActivity(models.Activity(a))
	}
	for _, a := range in.HobbyActivities {
		s.WithHobbyActivity(models.Activity(a))
	}
	return s
}

// Tool handlers

func (s *Server) handleRecordTracking(ctx context.Context, req *mcp.CallToolRequest, input recordTrackingInput) (*mcp.CallToolResult, prescriptionOutput, error) {
	var date time.Time
	if input.Date != "" {
		d, err := models.ParseDate(input.Date)
		if err != nil {
			return nil, prescriptionOutput{}, err
		}
		date = d
	}

	before, err := s.engine.GetPrescription(ctx, s.user(input.UserID), input.ExerciseID)
	if err != nil {
		return nil, prescriptionOutput{}, err
	}

	p, err := s.engine.RecordTracking(ctx, s.user(input.UserID), input.ExerciseID, engine.TrackingData{
		TimeOfDay:     input.TimeOfDay,
		Completed:     input.Completed,
		RepsPerformed: input.RepsPerformed,
		PainLevel:     input.PainLevel,
	}, date)
	if err != nil {
		return nil, prescriptionOutput{}, fmt.Errorf("failed to record tracking: %w", err)
	}

	msg := fmt.Sprintf("Recorded %s session. %s", input.TimeOfDay, describe(p))
	if len(p.ScalingHistory) > len(before.ScalingHistory) {
		msg += fmt.Sprintf(" (scaled: %s)", p.LatestEvent().Event)
	}
	return nil, summarize(p, msg), nil
}

func (s *Server) handleEvaluateProgression(ctx context.Context, req *mcp.CallToolRequest, input evaluateInput) (*mcp.CallToolResult, prescriptionOutput, error) {
	p, err := s.engine.EvaluateProgression(ctx, s.user(input.UserID), input.ExerciseID, input.IrritabilityIndex)
	if err != nil {
		return nil, prescriptionOutput{}, fmt.Errorf("failed to evaluate progression: %w", err)
	}
	return nil, summarize(p, "Evaluated. "+describe(p)), nil
}

func (s *Server) handleInitializePrescription(ctx context.Context, req *mcp.CallToolRequest, input initializeInput) (*mcp.CallToolResult, prescriptionOutput, error) {
	p, err := s.engine.InitializePrescription(ctx, s.user(input.UserID), input.ExerciseID, input.Results)
	if err != nil {
		return nil, prescriptionOutput{}, fmt.Errorf("failed to initialize prescription: %w", err)
	}
	return nil, summarize(p, "Initialized. "+describe(p)), nil
}

func (s *Server) handleInitializeAll(ctx context.Context, req *mcp.CallToolRequest, input initializeAllInput) (*mcp.CallToolResult, seedOutput, error) {
	report, err := s.engine.InitializeAllPrescriptions(ctx, s.user(input.UserID), input.Results)
	if report == nil {
		return nil, seedOutput{}, err
	}

	out := seedOutput{
		Seeded:  report.Seeded,
		Skipped: report.Skipped,
		Failed:  report.Failed,
		Message: fmt.Sprintf("Seeded %d, skipped %d, failed %d", len(report.Seeded), len(report.Skipped), len(report.Failed)),
	}
	if err != nil {
		// Partial results are still useful; the failed ids can be retried.
		out.Message += ": " + err.Error()
	}
	return nil, out, nil
}

func (s *Server) handleGetPrescription(ctx context.Context, req *mcp.CallToolRequest, input exerciseInput) (*mcp.CallToolResult, prescriptionOutput, error) {
	p, err := s.engine.GetPrescription(ctx, s.user(input.UserID), input.ExerciseID)
	if err != nil {
		return nil, prescriptionOutput{}, fmt.Errorf("failed to get prescription: %w", err)
	}
	return nil, summarize(p, describe(p)), nil
}

func (s *Server) handleListPrescriptions(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, listOutput, error) {
	list, err := s.engine.ListPrescriptions(ctx, s.user(input.UserID))
	if err != nil {
		return nil, listOutput{}, fmt.Errorf("failed to list prescriptions: %w", err)
	}

	out := listOutput{Prescriptions: make([]prescriptionOutput, 0, len(list))}
	for _, p := range list {
		out.Prescriptions = append(out.Prescriptions, summarize(p, describe(p)))
	}
	if len(list) == 0 {
		out.Message = "No prescriptions found. Run initialize_all_prescriptions first."
	} else {
		out.Message = fmt.Sprintf("%d prescriptions", len(list))
	}
	return nil, out, nil
}

func (s *Server) handleCalculateIndex(ctx context.Context, req *mcp.CallToolRequest, input surveyInput) (*mcp.CallToolResult, indexOutput, error) {
	index := s.engine.CalculateIrritabilityIndex(input.survey(s.user(input.UserID)))
	return nil, indexResult(index), nil
}

func (s *Server) handleSubmitSurvey(ctx context.Context, req *mcp.CallToolRequest, input surveyInput) (*mcp.CallToolResult, indexOutput, error) {
	res, err := s.engine.SubmitSurvey(ctx, input.survey(s.user(input.UserID)))
	if err != nil {
		return nil, indexOutput{}, fmt.Errorf("failed to submit survey: %w", err)
	}
	out := indexResult(res.Index)
	out.Message += fmt.Sprintf(". Next reassessment %s", res.Program.NextReassessmentAt.Format(models.DateLayout))
	return nil, out, nil
}

func indexResult(index *float64) indexOutput {
	if index == nil {
		return indexOutput{Message: "No survey data"}
	}
	band := irritability.BandFor(*index).String()
	return indexOutput{
		IrritabilityIndex: index,
		Band:              band,
		Message:           fmt.Sprintf("Irritability index %.1f (%s)", *index, band),
	}
}
