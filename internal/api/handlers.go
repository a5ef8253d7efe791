// ABOUTME: HTTP handlers exposing the rehab engine as a JSON API.
// ABOUTME: Request bodies mirror the MCP tool inputs.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/engine"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/irritability"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Handler implements the API handlers.
type Handler struct {
	engine  *engine.Engine
	log     logrus.FieldLogger
	version string
}

// NewHandler creates a new Handler over an engine.
func NewHandler(eng *engine.Engine, log logrus.FieldLogger, version string) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{engine: eng, log: log, version: version}
}

type trackingRequest struct {
	engine.TrackingData
	Date string `json:"date,omitempty"`
}

type evaluateRequest struct {
	IrritabilityIndex *float64 `json:"irritability_index,omitempty"`
}

type seedRequest struct {
	Results map[string]int `json:"results,omitempty"`
}

type surveyRequest struct {
	PainAtRest      bool              `json:"pain_at_rest"`
	PainLevelAtRest float64           `json:"pain_level_at_rest"`
	WorkActivities  []models.Activity `json:"work_activities"`
	HobbyActivities []models.Activity `json:"hobby_activities"`
	RecordedAt      *time.Time        `json:"recorded_at,omitempty"`
}

func (req surveyRequest) survey(userID string) *models.LoadManagementSurvey {
	s := models.NewLoadManagementSurvey(userID)
	if req.PainAtRest {
		s.WithRestPain(req.PainLevelAtRest)
	}
	s.WorkActivities = req.WorkActivities
	s.HobbyActivities = req.HobbyActivities
	if req.RecordedAt != nil {
		s.RecordedAt = *req.RecordedAt
	}
	return s
}

type indexResponse struct {
	IrritabilityIndex *float64 `json:"irritability_index"`
	Band              string   `json:"band,omitempty"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   h.version,
		"exercises": len(h.engine.Catalog().IDs()),
	})
}

// Catalog handles GET /api/v1/catalog
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	cat := h.engine.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"endurance_tests": cat.Tests,
		"exercises":       cat.All(),
	})
}

// ListPrescriptions handles GET /users/{userID}/prescriptions
func (h *Handler) ListPrescriptions(w http.ResponseWriter, r *http.Request) {
	list, err := h.engine.ListPrescriptions(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetPrescription handles GET /users/{userID}/prescriptions/{exerciseID}
func (h *Handler) GetPrescription(w http.ResponseWriter, r *http.Request) {
	p, err := h.engine.GetPrescription(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "exerciseID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RecordTracking handles POST /users/{userID}/prescriptions/{exerciseID}/tracking
func (h *Handler) RecordTracking(w http.ResponseWriter, r *http.Request) {
	var req trackingRequest
	if !decode(w, r, &req) {
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := models.ParseDate(req.Date)
		if err != nil {
			WriteProblem(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		date = d
	}

	p, err := h.engine.RecordTracking(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "exerciseID"), req.TrackingData, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Evaluate handles POST /users/{userID}/prescriptions/{exerciseID}/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.engine.EvaluateProgression(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "exerciseID"), req.IrritabilityIndex)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Initialize handles POST /users/{userID}/prescriptions/{exerciseID}/initialize
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.engine.InitializePrescription(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "exerciseID"), req.Results)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// InitializeAll handles POST /users/{userID}/prescriptions/initialize.
// A partial failure answers 207 with the report so the client can retry.
func (h *Handler) InitializeAll(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if !decode(w, r, &req) {
		return
	}

	report, err := h.engine.InitializeAllPrescriptions(r.Context(), chi.URLParam(r, "userID"), req.Results)
	if report == nil {
		h.fail(w, r, err)
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("failed", report.Failed).Warn("bulk initialization incomplete")
		writeJSON(w, http.StatusMultiStatus, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Stats handles GET /users/{userID}/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CalculateIndex handles POST /users/{userID}/irritability
func (h *Handler) CalculateIndex(w http.ResponseWriter, r *http.Request) {
	var req surveyRequest
	if !decode(w, r, &req) {
		return
	}

	index := h.engine.CalculateIrritabilityIndex(req.survey(chi.URLParam(r, "userID")))
	resp := indexResponse{IrritabilityIndex: index}
	if index != nil {
		resp.Band = irritability.BandFor(*index).String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitSurvey handles POST /users/{userID}/surveys
func (h *Handler) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	var req surveyRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.engine.SubmitSurvey(r.Context(), req.survey(chi.URLParam(r, "userID")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Program handles GET /users/{userID}/program
func (h *Handler) Program(w http.ResponseWriter, r *http.Request) {
	status, err := h.engine.Program(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// fail logs unexpected errors and writes the matching problem.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !isClientError(err) {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	MapError(w, r, err)
}

func isClientError(err error) bool {
	return errors.Is(err, engine.ErrUnknownExercise) ||
		errors.Is(err, engine.ErrInvalidTimeOfDay) ||
		errors.Is(err, engine.ErrMissingUser) ||
		errors.Is(err, engine.ErrProgramNotStarted)
}

// decode reads an optional JSON body. An empty body leaves v zero.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	if tooLarge := (*http.MaxBytesError)(nil); errors.As(err, &tooLarge) {
		WriteProblem(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}
