package model

import (
	"errors"
	"sort"
)

// TargetClass is an opaque tag, such as an execution backend, against which
// eligibility is evaluated.
type TargetClass string

const (
	// TargetAny means no target restriction.
	TargetAny TargetClass = ""
	// TargetWildcard keys exclusion predicates that apply to every concrete target.
	TargetWildcard TargetClass = "*"
)

// ExclusionTable maps a target to the path predicates excluding files for it.
type ExclusionTable map[TargetClass][]string

// CorpusEntry is a single leaf of a corpus. Entries with Err set could not be
// classified and surface as one failing check naming RelativePath.
type CorpusEntry struct {
	RelativePath string `yaml:"path"`
	IsDirectory  bool   `yaml:"directory,omitempty"`
	Problem      string `yaml:"problem,omitempty"`
	Err          error  `yaml:"-"`
}

// Name returns the entry's name inside its directory listing.
func (e CorpusEntry) Name() string {
	return ChildName(e.RelativePath, e.IsDirectory)
}

// Failed reports whether the entry is error annotated.
func (e CorpusEntry) Failed() bool {
	return e.Err != nil || e.Problem != ""
}

// Unreadable returns the entry's error as an UnreadableEntryError.
func (e CorpusEntry) Unreadable() *UnreadableEntryError {
	var ue *UnreadableEntryError
	if errors.As(e.Err, &ue) {
		return ue
	}

	err := e.Err
	if err == nil {
		err = errors.New(e.Problem)
	}

	return &UnreadableEntryError{Path: e.RelativePath, Err: err}
}

// CorpusGroup is one directory of a corpus. Entries and Groups are kept in
// lexicographic order of their names. Excluded lists names that matched the
// include pattern but were removed by the exclude pattern or a target rule.
type CorpusGroup struct {
	DirectoryPath string        `yaml:"directory"`
	Entries       []CorpusEntry `yaml:"entries,omitempty"`
	Groups        []CorpusGroup `yaml:"groups,omitempty"`
	Excluded      []string      `yaml:"excluded,omitempty"`
}

// Children returns the sorted names of everything a completeness check
// expects to find directly inside the directory.
func (g CorpusGroup) Children() []string {
	names := make([]string, 0, len(g.Entries)+len(g.Groups))
	for _, e := range g.Entries {
		names = append(names, e.Name())
	}

	for _, sub := range g.Groups {
		names = append(names, ChildName(sub.DirectoryPath, true))
	}

	sort.Strings(names)

	return names
}

// CaseCount returns the number of leaf entries in the group and its subgroups.
func (g CorpusGroup) CaseCount() int {
	count := len(g.Entries)
	for _, sub := range g.Groups {
		count += sub.CaseCount()
	}

	return count
}

// Visit calls fn for g and every nested group, depth first, parents first.
func (g CorpusGroup) Visit(fn func(CorpusGroup)) {
	fn(g)

	for _, sub := range g.Groups {
		sub.Visit(fn)
	}
}

// PlanVersion is the current plan snapshot format.
const PlanVersion = 1

// TestPlan is the immutable output of a generation run together with the
// inputs that produced it.
type TestPlan struct {
	Version     int            `yaml:"version"`
	Root        Path           `yaml:"root"`
	Rule        RuleSpec       `yaml:"rule"`
	Target      TargetClass    `yaml:"target,omitempty"`
	Exclusions  ExclusionTable `yaml:"exclusions,omitempty"`
	Directives  bool           `yaml:"directives,omitempty"`
	SkipDirs    []string       `yaml:"skip_dirs,omitempty"`
	GeneratedAt string         `yaml:"generated_at,omitempty"`
	Tree        PlannedGroup   `yaml:"tree"`
}

// PlannedGroup is a CorpusGroup annotated with the names a code writer emits.
type PlannedGroup struct {
	Directory        string         `yaml:"directory"`
	ClassName        string         `yaml:"class"`
	CompletenessName string         `yaml:"completeness"`
	Cases            []PlannedCase  `yaml:"cases,omitempty"`
	Groups           []PlannedGroup `yaml:"groups,omitempty"`
	Excluded         []string       `yaml:"excluded,omitempty"`
}

// PlannedCase is one generated test method.
type PlannedCase struct {
	Path        string `yaml:"path"`
	Metadata    string `yaml:"metadata"`
	TestName    string `yaml:"test"`
	IsDirectory bool   `yaml:"directory,omitempty"`
	Problem     string `yaml:"problem,omitempty"`
}

// Expected rebuilds the one-level CorpusGroup a completeness check compares
// against. Nested groups carry only their directory path.
func (g PlannedGroup) Expected() CorpusGroup {
	group := CorpusGroup{
		DirectoryPath: g.Directory,
		Excluded:      g.Excluded,
	}

	for _, c := range g.Cases {
		group.Entries = append(group.Entries, CorpusEntry{
			RelativePath: c.Path,
			IsDirectory:  c.IsDirectory,
			Problem:      c.Problem,
		})
	}

	for _, sub := range g.Groups {
		group.Groups = append(group.Groups, CorpusGroup{DirectoryPath: sub.Directory})
	}

	return group
}

// Visit calls fn for g and every nested group, depth first, parents first.
func (g PlannedGroup) Visit(fn func(PlannedGroup)) {
	fn(g)

	for _, sub := range g.Groups {
		sub.Visit(fn)
	}
}

// CaseCount returns the number of planned cases in the group and its subgroups.
func (g PlannedGroup) CaseCount() int {
	count := len(g.Cases)
	for _, sub := range g.Groups {
		count += sub.CaseCount()
	}

	return count
}

// GroupResult is the outcome of one completeness check.
type GroupResult struct {
	Directory string
	Err       error
}

// Passed reports whether the check found no drift.
func (r GroupResult) Passed() bool {
	return r.Err == nil
}

// CaseStatus is the outcome of running one planned case.
type CaseStatus int

const (
	// CasePassed indicates the runner reported success.
	CasePassed CaseStatus = iota
	// CaseFailed indicates the runner reported a structured failure.
	CaseFailed
	// CaseSkipped indicates the case was not run.
	CaseSkipped
	// CaseError indicates the runner itself could not be invoked.
	CaseError
)

func (s CaseStatus) String() string {
	switch s {
	case CasePassed:
		return "passed"
	case CaseFailed:
		return "failed"
	case CaseSkipped:
		return "skipped"
	case CaseError:
		return "error"
	}

	return "unknown"
}

// CaseResult is what the case runner reports for one file.
type CaseResult struct {
	Path   string
	Target TargetClass
	Status CaseStatus
	Output string
	Err    error
}
