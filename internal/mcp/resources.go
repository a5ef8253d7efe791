// ABOUTME: MCP resource implementations for the rehab engine.
// ABOUTME: Provides rehab://prescriptions and rehab://program for the server user.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/engine"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	prescriptionsURI = "rehab://prescriptions"
	programURI       = "rehab://program"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         prescriptionsURI,
		Name:        "Current Prescriptions",
		Description: "Every stored prescription with tracking and scaling history, plus stats",
		MIMEType:    "application/json",
	}, s.handlePrescriptionsResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         programURI,
		Name:        "Program Status",
		Description: "Program start, next reassessment date and whether a survey is due",
		MIMEType:    "application/json",
	}, s.handleProgramResource)
}

// Resource handlers

func (s *Server) handlePrescriptionsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	list, err := s.engine.ListPrescriptions(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}

	stats := make([]models.PrescriptionStats, 0, len(list))
	for _, p := range list {
		stats = append(stats, p.Stats())
	}

	return jsonResource(prescriptionsURI, map[string]any{
		"user_id":       s.userID,
		"prescriptions": list,
		"stats":         stats,
		"count":         len(list),
	})
}

func (s *Server) handleProgramResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	status, err := s.engine.Program(ctx, s.userID)
	if errors.Is(err, engine.ErrProgramNotStarted) {
		return jsonResource(programURI, map[string]any{
			"user_id": s.userID,
			"started": false,
			"message": "No program yet. Initialize prescriptions or submit a survey to start one.",
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	return jsonResource(programURI, map[string]any{
		"user_id":          s.userID,
		"started":          true,
		"program":          status.Program,
		"reassessment_due": status.ReassessmentDue,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
