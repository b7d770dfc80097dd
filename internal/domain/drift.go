package domain

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// ErrDriftDetected is returned when at least one completeness check failed.
var ErrDriftDetected = errors.New("corpus drift detected")

// DriftDetector compares live directories with a frozen expectation.
type DriftDetector interface {
	// AssertNoDrift re-lists expected.DirectoryPath under root, one level
	// deep, and returns a *model.DriftError naming every added and removed
	// child. A directory that no longer exists yields a single vanished
	// error. It returns nil when the listing is unchanged.
	AssertNoDrift(ctx context.Context, root m.Path, rule m.MatchRule, filter TargetFilter, expected m.CorpusGroup) error

	// CheckTree runs AssertNoDrift for every group of tree with at most
	// parallel checks in flight. Results follow tree order, parents first.
	CheckTree(ctx context.Context, root m.Path, rule m.MatchRule, filter TargetFilter, tree m.PlannedGroup, parallel int) ([]m.GroupResult, error)
}

type driftDetector struct {
	walker CorpusWalker
}

// NewDriftDetector constructs a DriftDetector that lists directories with walker.
func NewDriftDetector(walker CorpusWalker) DriftDetector {
	return &driftDetector{walker: walker}
}

func (d *driftDetector) AssertNoDrift(
	ctx context.Context,
	root m.Path,
	rule m.MatchRule,
	filter TargetFilter,
	expected m.CorpusGroup,
) error {
	live, err := d.walker.WalkLevel(ctx, root, expected.DirectoryPath, rule, filter)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		slog.Info("planned directory vanished", "directory", expected.DirectoryPath)

		return m.NewVanishedError(expected.DirectoryPath)
	}

	want := listing(expected)
	got := listing(live)
	added, removed := symmetricDifference(want, got)

	driftErr := m.NewDriftError(expected.DirectoryPath, want, got, added, removed)

	for _, entry := range live.Entries {
		if entry.Failed() {
			driftErr.Unreadable = append(driftErr.Unreadable, *entry.Unreadable())
		}
	}

	if driftErr.Empty() {
		return nil
	}

	slog.Info("corpus drift detected",
		"directory", expected.DirectoryPath,
		"added", strings.Join(added, ","),
		"removed", strings.Join(removed, ","),
		"unreadable", len(driftErr.Unreadable),
	)

	return driftErr
}

func (d *driftDetector) CheckTree(
	ctx context.Context,
	root m.Path,
	rule m.MatchRule,
	filter TargetFilter,
	tree m.PlannedGroup,
	parallel int,
) ([]m.GroupResult, error) {
	var groups []m.PlannedGroup

	tree.Visit(func(g m.PlannedGroup) {
		groups = append(groups, g)
	})

	results := make([]m.GroupResult, len(groups))

	group, groupCtx := errgroup.WithContext(ctx)
	if parallel > 0 {
		group.SetLimit(parallel)
	}

	for i, planned := range groups {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			err := d.AssertNoDrift(groupCtx, root, rule, filter, planned.Expected())
			if err != nil && groupCtx.Err() != nil {
				return groupCtx.Err()
			}

			results[i] = m.GroupResult{Directory: planned.Directory, Err: err}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// listing returns the names a completeness check compares. Error annotated
// entries are reported separately and never count as present or missing.
func listing(group m.CorpusGroup) []string {
	names := make([]string, 0, len(group.Entries)+len(group.Groups))

	for _, entry := range group.Entries {
		if !entry.Failed() {
			names = append(names, entry.Name())
		}
	}

	for _, sub := range group.Groups {
		names = append(names, m.ChildName(sub.DirectoryPath, true))
	}

	sort.Strings(names)

	return names
}

func symmetricDifference(want, got []string) (added, removed []string) {
	wantSet := make(map[string]struct{}, len(want))
	for _, name := range want {
		wantSet[name] = struct{}{}
	}

	gotSet := make(map[string]struct{}, len(got))
	for _, name := range got {
		gotSet[name] = struct{}{}

		if _, ok := wantSet[name]; !ok {
			added = append(added, name)
		}
	}

	for _, name := range want {
		if _, ok := gotSet[name]; !ok {
			removed = append(removed, name)
		}
	}

	return added, removed
}

// ExpectedFromNames rebuilds an expectation from a listing as embedded in
// generated code. Names ending in "/" are nested groups.
func ExpectedFromNames(dir string, names []string) m.CorpusGroup {
	group := m.CorpusGroup{DirectoryPath: dir}

	for _, name := range names {
		if sub, ok := strings.CutSuffix(name, "/"); ok {
			group.Groups = append(group.Groups, m.CorpusGroup{DirectoryPath: m.JoinRel(dir, sub)})
			continue
		}

		group.Entries = append(group.Entries, m.CorpusEntry{RelativePath: m.JoinRel(dir, name)})
	}

	return group
}

// CheckOptions tune CheckPlan.
type CheckOptions struct {
	Parallel int
}

// CheckPlan re-checks every group of plan against the disk, using the
// rule, target and skip list the plan was generated with.
func CheckPlan(ctx context.Context, fsAdapter adapter.CorpusFSAdapter, plan m.TestPlan, opts CheckOptions) ([]m.GroupResult, error) {
	rule, filter, err := ArgsFromPlan(plan).Resolve(fsAdapter)
	if err != nil {
		return nil, err
	}

	detector := NewDriftDetector(NewCorpusWalker(fsAdapter, plan.SkipDirs...))

	return detector.CheckTree(ctx, plan.Root, rule, filter, plan.Tree, opts.Parallel)
}
