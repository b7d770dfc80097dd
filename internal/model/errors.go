package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	// ErrEmptyPattern is returned when a pattern source is blank.
	ErrEmptyPattern = errors.New("empty pattern")
	// ErrRootNotDirectory is returned when a corpus root is not a directory.
	ErrRootNotDirectory = errors.New("root is not a directory")
	// ErrUnknownPredicate is returned for exclusion predicates with an unknown prefix.
	ErrUnknownPredicate = errors.New("unknown predicate kind")
)

// ConfigurationError reports a malformed rule, predicate or root. It is fatal
// at generation time.
type ConfigurationError struct {
	Subject string // what was being configured, e.g. "include pattern"
	Value   string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Subject, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// UnreadableEntryError marks a single corpus entry that could not be classified.
type UnreadableEntryError struct {
	Path string
	Err  error
}

func (e *UnreadableEntryError) Error() string {
	return fmt.Sprintf("unreadable entry %s: %v", e.Path, e.Err)
}

func (e *UnreadableEntryError) Unwrap() error {
	return e.Err
}

// DriftError reports a directory whose live contents disagree with a plan.
// Added and Removed hold child names relative to Directory. A Vanished
// directory carries no names; its parent reports it as removed.
type DriftError struct {
	Directory  string
	Added      []string
	Removed    []string
	Unreadable []UnreadableEntryError
	Vanished   bool

	expected []string
	actual   []string
}

// NewDriftError builds a DriftError and keeps both listings for Diff.
func NewDriftError(directory string, expected, actual, added, removed []string) *DriftError {
	return &DriftError{
		Directory: directory,
		Added:     added,
		Removed:   removed,
		expected:  expected,
		actual:    actual,
	}
}

// NewVanishedError reports that directory no longer exists.
func NewVanishedError(directory string) *DriftError {
	return &DriftError{Directory: directory, Vanished: true}
}

// Empty reports whether the error carries nothing to report.
func (e *DriftError) Empty() bool {
	return !e.Vanished && len(e.Added) == 0 && len(e.Removed) == 0 && len(e.Unreadable) == 0
}

func (e *DriftError) Error() string {
	if e.Vanished {
		return fmt.Sprintf("corpus drift in %s: directory vanished", e.Directory)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "corpus drift in %s: %d added, %d removed", e.Directory, len(e.Added), len(e.Removed))

	if len(e.Unreadable) > 0 {
		fmt.Fprintf(&b, ", %d unreadable", len(e.Unreadable))
	}

	for _, name := range e.Added {
		fmt.Fprintf(&b, "\n  + %s", name)
	}

	for _, name := range e.Removed {
		fmt.Fprintf(&b, "\n  - %s", name)
	}

	for _, u := range e.Unreadable {
		fmt.Fprintf(&b, "\n  ! %s: %v", u.Path, u.Err)
	}

	return b.String()
}

// Diff renders the expected and live listings as a unified diff.
func (e *DriftError) Diff() string {
	if e.Vanished {
		return ""
	}

	diff := difflib.UnifiedDiff{
		A:        withNewlines(e.expected),
		B:        withNewlines(e.actual),
		FromFile: e.Directory + " (plan)",
		ToFile:   e.Directory + " (disk)",
		Context:  1,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}

	return text
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line + "\n"
	}

	return out
}
