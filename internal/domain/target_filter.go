package domain

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// SuffixPredicatePrefix marks an exclusion predicate matching a file stem
// suffix, e.g. "suffix:_old".
const SuffixPredicatePrefix = "suffix:"

// PathPredicate decides whether a corpus path is excluded for a target.
type PathPredicate interface {
	Match(rel string) bool
	String() string
}

type globPredicate struct {
	pattern string
}

func (p globPredicate) Match(rel string) bool {
	ok, err := doublestar.Match(p.pattern, rel)
	return err == nil && ok
}

func (p globPredicate) String() string {
	return p.pattern
}

type suffixPredicate struct {
	suffix string
}

// Match compares the suffix against the name without its final extension,
// so "_old" matches "class_old.kt" and ".fir" matches "x.fir.kt".
func (p suffixPredicate) Match(rel string) bool {
	name := path.Base(rel)
	stem := strings.TrimSuffix(name, path.Ext(name))

	return strings.HasSuffix(stem, p.suffix)
}

func (p suffixPredicate) String() string {
	return SuffixPredicatePrefix + p.suffix
}

// ParsePredicate compiles one exclusion table entry.
func ParsePredicate(source string) (PathPredicate, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, &m.ConfigurationError{Subject: "exclusion predicate", Value: source, Err: m.ErrEmptyPattern}
	}

	if suffix, ok := strings.CutPrefix(source, SuffixPredicatePrefix); ok {
		if suffix == "" {
			return nil, &m.ConfigurationError{Subject: "exclusion predicate", Value: source, Err: m.ErrEmptyPattern}
		}

		return suffixPredicate{suffix: suffix}, nil
	}

	if prefix, _, ok := strings.Cut(source, ":"); ok && !strings.ContainsAny(prefix, "/*?[{") {
		return nil, &m.ConfigurationError{Subject: "exclusion predicate", Value: source, Err: m.ErrUnknownPredicate}
	}

	if !doublestar.ValidatePattern(source) {
		return nil, &m.ConfigurationError{Subject: "exclusion predicate", Value: source, Err: doublestar.ErrBadPattern}
	}

	return globPredicate{pattern: source}, nil
}

// ExclusionRules is a compiled ExclusionTable.
type ExclusionRules map[m.TargetClass][]PathPredicate

// CompileExclusions compiles every predicate of table.
func CompileExclusions(table m.ExclusionTable) (ExclusionRules, error) {
	rules := make(ExclusionRules, len(table))

	for target, sources := range table {
		for _, source := range sources {
			predicate, err := ParsePredicate(source)
			if err != nil {
				return nil, fmt.Errorf("target %q: %w", target, err)
			}

			rules[target] = append(rules[target], predicate)
		}
	}

	return rules, nil
}

// IsEligibleForTarget applies the exclusion table to entry. Files absent from
// every applicable predicate are eligible; any matching predicate excludes.
// TargetAny disables target restrictions entirely.
func IsEligibleForTarget(entry m.CorpusEntry, target m.TargetClass, rules ExclusionRules) bool {
	if target == m.TargetAny {
		return true
	}

	for _, key := range []m.TargetClass{target, m.TargetWildcard} {
		for _, predicate := range rules[key] {
			if predicate.Match(entry.RelativePath) {
				return false
			}
		}
	}

	return true
}

// TargetFilter narrows eligibility for one generation run.
type TargetFilter interface {
	Target() m.TargetClass
	// Eligible reports whether entry, located at abs, belongs to the target.
	// An error means the entry could not be classified.
	Eligible(ctx context.Context, entry m.CorpusEntry, abs m.Path) (bool, error)
}

// directiveHeadLines bounds how much of a file is scanned for directives.
const directiveHeadLines = 40

type targetFilter struct {
	fsAdapter  adapter.CorpusFSAdapter
	target     m.TargetClass
	rules      ExclusionRules
	directives bool
}

// NewTargetFilter builds a TargetFilter. When directives is set, file heads
// are scanned for TARGET_BACKEND and DONT_TARGET_EXACT_BACKEND lines.
func NewTargetFilter(fsAdapter adapter.CorpusFSAdapter, target m.TargetClass, rules ExclusionRules, directives bool) TargetFilter {
	return &targetFilter{
		fsAdapter:  fsAdapter,
		target:     target,
		rules:      rules,
		directives: directives,
	}
}

// NoTargetFilter accepts every entry.
func NoTargetFilter() TargetFilter {
	return &targetFilter{target: m.TargetAny}
}

func (f *targetFilter) Target() m.TargetClass {
	return f.target
}

func (f *targetFilter) Eligible(ctx context.Context, entry m.CorpusEntry, abs m.Path) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if !IsEligibleForTarget(entry, f.target, f.rules) {
		return false, nil
	}

	if !f.directives || f.target == m.TargetAny || entry.IsDirectory {
		return true, nil
	}

	lines, err := f.fsAdapter.ReadHead(abs, directiveHeadLines)
	if err != nil {
		return false, &m.UnreadableEntryError{Path: entry.RelativePath, Err: err}
	}

	return parseDirectives(lines).compatible(f.target), nil
}

const (
	targetBackendDirective     = "TARGET_BACKEND"
	dontTargetBackendDirective = "DONT_TARGET_EXACT_BACKEND"
	anyBackend                 = "ANY"
)

type targetDirectives struct {
	only    []m.TargetClass
	exclude []m.TargetClass
}

// parseDirectives reads "// NAME: A, B" comment lines.
func parseDirectives(lines []string) targetDirectives {
	var d targetDirectives

	for _, line := range lines {
		body, ok := strings.CutPrefix(strings.TrimSpace(line), "//")
		if !ok {
			continue
		}

		name, values, ok := strings.Cut(strings.TrimSpace(body), ":")
		if !ok {
			continue
		}

		switch strings.TrimSpace(name) {
		case targetBackendDirective:
			d.only = append(d.only, splitTargets(values)...)
		case dontTargetBackendDirective:
			d.exclude = append(d.exclude, splitTargets(values)...)
		}
	}

	return d
}

func splitTargets(values string) []m.TargetClass {
	var targets []m.TargetClass

	for _, v := range strings.Split(values, ",") {
		if v = strings.TrimSpace(v); v != "" {
			targets = append(targets, m.TargetClass(v))
		}
	}

	return targets
}

func (d targetDirectives) compatible(target m.TargetClass) bool {
	if slices.Contains(d.exclude, target) {
		return false
	}

	if len(d.only) == 0 {
		return true
	}

	return slices.Contains(d.only, target) || slices.Contains(d.only, anyBackend)
}
