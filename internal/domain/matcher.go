// Package domain implements corpus scanning, test plan building and drift
// detection.
package domain

import (
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// Classification is the Path Matcher verdict for a single path.
type Classification int

const (
	// Irrelevant paths do not match the include pattern.
	Irrelevant Classification = iota
	// Eligible paths match the include pattern and not the exclude pattern.
	Eligible
	// Excluded paths match both patterns; they are kept for diagnostics only.
	Excluded
)

func (c Classification) String() string {
	switch c {
	case Eligible:
		return "eligible"
	case Excluded:
		return "excluded"
	case Irrelevant:
		return "irrelevant"
	}

	return "unknown"
}

// Classify decides what rel (slash separated, relative to the walk root) is
// under rule. Directories are only ever classified when the rule is not
// recursive; otherwise they are recursion boundaries and never cases.
func Classify(rel string, isDir bool, rule m.MatchRule) Classification {
	if isDir && rule.Recursive() {
		return Irrelevant
	}

	if !rule.Include().Match(rel) {
		return Irrelevant
	}

	if exclude, ok := rule.Exclude(); ok && exclude.Match(rel) {
		return Excluded
	}

	return Eligible
}

// Matches reports whether rel is an eligible case under rule.
func Matches(rel string, isDir bool, rule m.MatchRule) bool {
	return Classify(rel, isDir, rule) == Eligible
}
