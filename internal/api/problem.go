// ABOUTME: RFC 7807 problem responses for the HTTP API.
// ABOUTME: Maps engine and storage sentinel errors to status codes.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/engine"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
	"github.com/sirupsen/logrus"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

type problemType struct {
	typeURI string
	title   string
}

// problemTypes maps HTTP status codes to type URIs and titles.
var problemTypes = map[int]problemType{
	http.StatusBadRequest:            {"/problems/bad-request", "Bad Request"},
	http.StatusNotFound:              {"/problems/not-found", "Not Found"},
	http.StatusUnprocessableEntity:   {"/problems/validation-error", "Validation Error"},
	http.StatusRequestEntityTooLarge: {"/problems/too-large", "Payload Too Large"},
	http.StatusMultiStatus:           {"/problems/partial-failure", "Partial Failure"},
	http.StatusInternalServerError:   {"/problems/internal-error", "Internal Server Error"},
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt, ok := problemTypes[status]
	if !ok {
		pt = problemType{typeURI: "about:blank", title: http.StatusText(status)}
	}

	p := Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		logrus.WithError(err).Error("failed to encode problem response")
	}
}

// MapError converts domain errors to Problem Details responses.
func MapError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrUnknownExercise):
		WriteProblem(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrProgramNotStarted):
		WriteProblem(w, r, http.StatusNotFound, "Program not started")
	case errors.Is(err, storage.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, engine.ErrInvalidTimeOfDay):
		WriteProblem(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, engine.ErrMissingUser):
		WriteProblem(w, r, http.StatusBadRequest, "Missing user id")
	default:
		// internal details stay in the log
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
