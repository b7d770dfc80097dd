package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// SimpleUI implements UI using the cobra command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayPlan prints one row per planned group.
func (s *SimpleUI) DisplayPlan(ctx context.Context, plan m.TestPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderPlanTable(plan))

	return nil
}

func renderPlanTable(plan m.TestPlan) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Directory", "Class", "Cases", "Excluded"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	groups := 0
	excluded := 0

	plan.Tree.Visit(func(g m.PlannedGroup) {
		table.Append([]string{
			g.Directory,
			g.ClassName,
			fmt.Sprintf("%d", len(g.Cases)),
			fmt.Sprintf("%d", len(g.Excluded)),
		})

		groups++
		excluded += len(g.Excluded)
	})

	table.SetFooter([]string{
		fmt.Sprintf("Total Groups %d", groups),
		"",
		fmt.Sprintf("%d", plan.Tree.CaseCount()),
		fmt.Sprintf("%d", excluded),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayCases prints one row per planned case.
func (s *SimpleUI) DisplayCases(ctx context.Context, plan m.TestPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Path", "Test"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	plan.Tree.Visit(func(g m.PlannedGroup) {
		for _, c := range g.Cases {
			name := c.Path
			if c.Problem != "" {
				name += " (" + c.Problem + ")"
			}

			table.Append([]string{name, g.ClassName + "." + c.TestName})
		}
	})

	table.SetFooter([]string{fmt.Sprintf("Total Cases %d", plan.Tree.CaseCount()), ""})
	table.Render()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

// DisplayCheckResults prints one line per group, followed by the drift of
// every failed group.
func (s *SimpleUI) DisplayCheckResults(ctx context.Context, results []m.GroupResult, showDiff bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := sortedResults(results)
	failed := 0

	for _, result := range sorted {
		if result.Passed() {
			s.printf("ok    %s\n", result.Directory)
			continue
		}

		failed++

		s.printf("FAIL  %s\n", result.Directory)
		s.printf("%s\n", indent(result.Err.Error()))

		var driftErr *m.DriftError
		if showDiff && errors.As(result.Err, &driftErr) {
			if diff := driftErr.Diff(); diff != "" {
				s.printf("%s\n", diff)
			}
		}
	}

	s.printf("%d of %d groups complete\n", len(sorted)-failed, len(sorted))

	return nil
}

// DisplayRunResults prints a table of case outcomes.
func (s *SimpleUI) DisplayRunResults(ctx context.Context, results []m.CaseResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderRunTable(results))

	for _, result := range results {
		if result.Status == m.CaseFailed && strings.TrimSpace(result.Output) != "" {
			s.printf("--- %s\n%s\n", result.Path, strings.TrimRight(result.Output, "\n"))
		}
	}

	return nil
}

func renderRunTable(results []m.CaseResult) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Path", "Target", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	counts := map[m.CaseStatus]int{}

	for _, result := range results {
		status := result.Status.String()
		if result.Err != nil && result.Status == m.CaseError {
			status += ": " + result.Err.Error()
		}

		table.Append([]string{result.Path, targetLabel(result.Target), status})
		counts[result.Status]++
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Cases %d", len(results)),
		"",
		fmt.Sprintf("%d passed, %d failed, %d errors", counts[m.CasePassed], counts[m.CaseFailed], counts[m.CaseError]),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayWatchEvent announces a re-check.
func (s *SimpleUI) DisplayWatchEvent(ctx context.Context, changed []m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%d change(s) detected, re-checking\n", len(changed))
}

// BrowsePlan prints the plan tree.
func (s *SimpleUI) BrowsePlan(ctx context.Context, plan m.TestPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", strings.Join(planLines(plan), "\n")+"\n")

	return nil
}

// planLines renders plan as an indented outline, one group or case per line.
func planLines(plan m.TestPlan) []string {
	lines := []string{
		fmt.Sprintf("%s  target=%s  generated=%s", plan.Root, targetLabel(plan.Target), plan.GeneratedAt),
	}

	var walk func(g m.PlannedGroup, depth int)

	walk = func(g m.PlannedGroup, depth int) {
		pad := strings.Repeat("  ", depth)
		lines = append(lines, fmt.Sprintf("%s%s/ (%s, %d cases)", pad, g.Directory, g.ClassName, g.CaseCount()))

		for _, c := range g.Cases {
			line := fmt.Sprintf("%s  %s  %s", pad, c.TestName, c.Metadata)
			if c.Problem != "" {
				line += "  ! " + c.Problem
			}

			lines = append(lines, line)
		}

		for _, name := range g.Excluded {
			lines = append(lines, fmt.Sprintf("%s  x %s", pad, name))
		}

		for _, sub := range g.Groups {
			walk(sub, depth+1)
		}
	}

	walk(plan.Tree, 0)

	return lines
}

func sortedResults(results []m.GroupResult) []m.GroupResult {
	sorted := append([]m.GroupResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Directory < sorted[j].Directory
	})

	return sorted
}

func targetLabel(target m.TargetClass) string {
	if target == m.TargetAny {
		return "any"
	}

	return string(target)
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
