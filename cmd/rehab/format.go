// ABOUTME: Output helpers shared by CLI commands.
// ABOUTME: Padding, truncation and prescription summaries.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/fatih/color"
)

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// target formats a prescription's weight and rep range, e.g. "4 lbs x 15-20".
func target(p *models.Prescription) string {
	return fmt.Sprintf("%g %s x %d-%d", p.CurrentWeight, p.Unit, p.TargetRepMin, p.TargetRepMax)
}

// eventColor picks green for increases, red for decreases.
func eventColor(kind models.EventKind) *color.Color {
	k := string(kind)
	switch {
	case strings.Contains(k, "INCREASE"):
		return color.New(color.FgGreen)
	case strings.Contains(k, "DECREASE"), strings.Contains(k, "HALVE"):
		return color.New(color.FgRed)
	default:
		return color.New(color.Faint)
	}
}

// printScaled reports a scaling event when p gained one since before.
func printScaled(out io.Writer, before int, p *models.Prescription) {
	if len(p.ScalingHistory) <= before {
		return
	}
	ev := p.LatestEvent()
	eventColor(ev.Event).Fprintf(out, "↻ %s: now %s\n", ev.Event, target(p))
}
