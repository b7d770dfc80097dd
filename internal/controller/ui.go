// Package controller provides output adapters for displaying corpus plans,
// completeness checks and case runs.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// UI defines the interface for displaying workflow results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplayPlan(ctx context.Context, plan m.TestPlan) error
	DisplayCases(ctx context.Context, plan m.TestPlan) error
	DisplayCheckResults(ctx context.Context, results []m.GroupResult, showDiff bool) error
	DisplayRunResults(ctx context.Context, results []m.CaseResult) error
	DisplayWatchEvent(ctx context.Context, changed []m.Path)
	BrowsePlan(ctx context.Context, plan m.TestPlan) error
}

// NewUI picks the interactive UI for terminals and the plain one otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
