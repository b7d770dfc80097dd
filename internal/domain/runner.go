package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// ErrCasesFailed is returned when at least one planned case did not pass.
var ErrCasesFailed = errors.New("planned cases failed")

// RunOptions control how planned cases are executed.
type RunOptions struct {
	Parallel    uint
	ShardIndex  uint
	TotalShards uint
}

// Runner drives planned cases through a CaseRunnerAdapter.
type Runner interface {
	RunPlan(ctx context.Context, plan m.TestPlan, opts RunOptions) ([]m.CaseResult, error)
}

type runner struct {
	adapter.CorpusFSAdapter
	adapter.CaseRunnerAdapter
}

// NewRunner constructs a Runner.
func NewRunner(fsAdapter adapter.CorpusFSAdapter, caseRunner adapter.CaseRunnerAdapter) Runner {
	return &runner{
		CorpusFSAdapter:   fsAdapter,
		CaseRunnerAdapter: caseRunner,
	}
}

// RunPlan runs this shard's cases with at most opts.Parallel in flight.
// Results keep plan order. Cases annotated with a problem are reported as
// errors without being run.
func (r *runner) RunPlan(ctx context.Context, plan m.TestPlan, opts RunOptions) ([]m.CaseResult, error) {
	cases := ShardCases(PlannedCases(plan.Tree), opts.ShardIndex, opts.TotalShards)
	results := make([]m.CaseResult, len(cases))

	var group errgroup.Group
	if opts.Parallel > 0 {
		group.SetLimit(int(opts.Parallel))
	}

	for i, planned := range cases {
		group.Go(func() error {
			results[i] = r.runCase(ctx, plan, planned)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}

	failed := 0

	for _, result := range results {
		if result.Status == m.CaseFailed || result.Status == m.CaseError {
			failed++
		}
	}

	if failed > 0 {
		return results, fmt.Errorf("%w: %d of %d", ErrCasesFailed, failed, len(results))
	}

	return results, nil
}

func (r *runner) runCase(ctx context.Context, plan m.TestPlan, planned m.PlannedCase) m.CaseResult {
	if planned.Problem != "" {
		return m.CaseResult{
			Path:   planned.Path,
			Target: plan.Target,
			Status: m.CaseError,
			Err:    &m.UnreadableEntryError{Path: planned.Path, Err: errors.New(planned.Problem)},
		}
	}

	if err := ctx.Err(); err != nil {
		return m.CaseResult{Path: planned.Path, Target: plan.Target, Status: m.CaseSkipped, Err: err}
	}

	result := r.RunCase(ctx, r.JoinRel(plan.Root, planned.Path), plan.Target)
	result.Path = planned.Path

	slog.Debug("case finished", "path", planned.Path, "status", result.Status.String())

	return result
}

// PlannedCases flattens tree into its cases, parents first.
func PlannedCases(tree m.PlannedGroup) []m.PlannedCase {
	var cases []m.PlannedCase

	tree.Visit(func(g m.PlannedGroup) {
		cases = append(cases, g.Cases...)
	})

	return cases
}

// ShardCases keeps the cases whose position modulo totalShards equals
// shardIndex. A zero totalShards keeps everything.
func ShardCases(cases []m.PlannedCase, shardIndex uint, totalShards uint) []m.PlannedCase {
	if totalShards == 0 {
		return cases
	}

	var shard []m.PlannedCase

	for i, c := range cases {
		if uint(i)%totalShards == shardIndex {
			shard = append(shard, c)
		}
	}

	return shard
}
