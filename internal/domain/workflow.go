package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	"corpusgen.dev/pkg/corpusgen/internal/controller"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// DefaultWatchDebounce is how long watch mode waits for the corpus to settle.
const DefaultWatchDebounce = 300 * time.Millisecond

// PlanArgs are the arguments of Workflow.Plan.
type PlanArgs struct {
	CorpusArgs
	// Output is where the plan snapshot is written. Empty skips writing.
	Output m.Path
}

// CheckArgs are the arguments of Workflow.Check.
type CheckArgs struct {
	Plan     m.Path
	Parallel int
	ShowDiff bool
}

// ListArgs are the arguments of Workflow.List.
type ListArgs struct {
	CorpusArgs
}

// ViewArgs are the arguments of Workflow.View.
type ViewArgs struct {
	Plan m.Path
}

// RunArgs are the arguments of Workflow.Run.
type RunArgs struct {
	Plan m.Path
	RunOptions
}

// WatchArgs are the arguments of Workflow.Watch.
type WatchArgs struct {
	Plan     m.Path
	Parallel int
	ShowDiff bool
	Debounce time.Duration
}

// Workflow wires the corpus operations to storage and the UI.
type Workflow interface {
	Plan(ctx context.Context, args PlanArgs) (m.TestPlan, error)
	Check(ctx context.Context, args CheckArgs) error
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
	Run(ctx context.Context, args RunArgs) error
	Watch(ctx context.Context, args WatchArgs) error
}

type workflow struct {
	adapter.CorpusFSAdapter
	adapter.PlanStore
	adapter.CorpusWatcher
	controller.UI
	Runner

	now func() time.Time
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.CorpusFSAdapter,
	planStore adapter.PlanStore,
	caseRunner adapter.CaseRunnerAdapter,
	watcher adapter.CorpusWatcher,
	ui controller.UI,
) Workflow {
	return &workflow{
		CorpusFSAdapter: fsAdapter,
		PlanStore:       planStore,
		CorpusWatcher:   watcher,
		UI:              ui,
		Runner:          NewRunner(fsAdapter, caseRunner),
		now:             time.Now,
	}
}

// Plan walks the corpus, freezes it into a TestPlan and writes the snapshot.
func (w *workflow) Plan(ctx context.Context, args PlanArgs) (m.TestPlan, error) {
	plan, err := w.buildPlan(ctx, args.CorpusArgs)
	if err != nil {
		return m.TestPlan{}, err
	}

	plan.GeneratedAt = w.now().UTC().Format(time.RFC3339)

	if args.Output != "" {
		if err := w.SavePlan(args.Output, plan); err != nil {
			return m.TestPlan{}, fmt.Errorf("save plan: %w", err)
		}

		slog.Info("plan written", "path", args.Output, "groups", countGroups(plan.Tree), "cases", plan.Tree.CaseCount())
	}

	if err := w.DisplayPlan(ctx, plan); err != nil {
		return m.TestPlan{}, err
	}

	return plan, nil
}

// Check re-lists every planned directory and reports drift per group.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	plan, err := w.LoadPlan(args.Plan)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	return w.check(ctx, plan, args.Parallel, args.ShowDiff)
}

func (w *workflow) check(ctx context.Context, plan m.TestPlan, parallel int, showDiff bool) error {
	results, err := CheckPlan(ctx, w.CorpusFSAdapter, plan, CheckOptions{Parallel: parallel})
	if err != nil {
		return fmt.Errorf("check plan: %w", err)
	}

	if err := w.DisplayCheckResults(ctx, results, showDiff); err != nil {
		return err
	}

	failed := 0

	for _, result := range results {
		if !result.Passed() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d groups", ErrDriftDetected, failed, len(results))
	}

	return nil
}

// List walks the corpus and displays the cases a plan would contain.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	plan, err := w.buildPlan(ctx, args.CorpusArgs)
	if err != nil {
		return err
	}

	return w.DisplayCases(ctx, plan)
}

// View opens a stored plan in the plan browser.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	plan, err := w.LoadPlan(args.Plan)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	return w.BrowsePlan(ctx, plan)
}

// Run executes this shard's planned cases through the case runner.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	plan, err := w.LoadPlan(args.Plan)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	results, runErr := w.RunPlan(ctx, plan, args.RunOptions)

	if err := w.DisplayRunResults(ctx, results); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("run plan: %w", runErr)
	}

	return nil
}

// Watch checks the plan once and again after every settled burst of changes
// under the corpus root, until ctx is done.
func (w *workflow) Watch(ctx context.Context, args WatchArgs) error {
	plan, err := w.LoadPlan(args.Plan)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	debounce := args.Debounce
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	changes, watchErrs, err := w.CorpusWatcher.Watch(ctx, plan.Root, plan.SkipDirs)
	if err != nil {
		return fmt.Errorf("watch corpus: %w", err)
	}

	if err := w.recheck(ctx, plan, args); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()

	defer timer.Stop()

	var pending []m.Path

	for {
		select {
		case <-ctx.Done():
			return nil

		case path, ok := <-changes:
			if !ok {
				return nil
			}

			pending = append(pending, path)
			timer.Reset(debounce)

		case watchErr, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}

			slog.Warn("watcher error", "error", watchErr)

		case <-timer.C:
			w.DisplayWatchEvent(ctx, pending)
			pending = nil

			if err := w.recheck(ctx, plan, args); err != nil {
				return err
			}
		}
	}
}

// recheck runs one watch iteration. Drift is displayed, not returned.
func (w *workflow) recheck(ctx context.Context, plan m.TestPlan, args WatchArgs) error {
	err := w.check(ctx, plan, args.Parallel, args.ShowDiff)
	if err == nil || errors.Is(err, ErrDriftDetected) {
		return nil
	}

	if ctx.Err() != nil {
		return nil
	}

	return err
}

func (w *workflow) buildPlan(ctx context.Context, args CorpusArgs) (m.TestPlan, error) {
	rule, filter, err := args.Resolve(w.CorpusFSAdapter)
	if err != nil {
		return m.TestPlan{}, err
	}

	tree, err := NewCorpusWalker(w.CorpusFSAdapter, args.SkipDirs...).Walk(ctx, args.Root, rule, filter)
	if err != nil {
		return m.TestPlan{}, fmt.Errorf("walk corpus: %w", err)
	}

	return BuildPlan(args, rule, tree), nil
}

func countGroups(tree m.PlannedGroup) int {
	count := 0

	tree.Visit(func(m.PlannedGroup) {
		count++
	})

	return count
}
