package model

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// RegexpPrefix marks a pattern source as a regular expression matched
// against the final path segment. Any other source is a doublestar glob.
const RegexpPrefix = "re:"

// PathRegexpPrefix marks a regular expression matched against the whole
// root relative path.
const PathRegexpPrefix = "pathre:"

// PatternKind is the syntax a Pattern was compiled from.
type PatternKind string

const (
	// PatternGlob is a doublestar glob such as "*.kt" or "**/*.kt".
	PatternGlob PatternKind = "glob"
	// PatternRegexp is an RE2 expression such as `^(.+)\.kt$`.
	PatternRegexp PatternKind = "regexp"
)

// Pattern is a compiled include or exclude pattern.
type Pattern struct {
	source   string
	kind     PatternKind
	expr     string
	re       *regexp.Regexp
	anchored bool
}

// NewPattern compiles source. Blank sources are rejected so a forgotten
// pattern never matches everything.
func NewPattern(source string) (Pattern, error) {
	if strings.TrimSpace(source) == "" {
		return Pattern{}, &ConfigurationError{Subject: "pattern", Value: source, Err: ErrEmptyPattern}
	}

	if expr, ok := strings.CutPrefix(source, PathRegexpPrefix); ok {
		return newRegexpPattern(source, expr, true)
	}

	if expr, ok := strings.CutPrefix(source, RegexpPrefix); ok {
		return newRegexpPattern(source, expr, false)
	}

	if !doublestar.ValidatePattern(source) {
		return Pattern{}, &ConfigurationError{Subject: "pattern", Value: source, Err: doublestar.ErrBadPattern}
	}

	return Pattern{
		source:   source,
		kind:     PatternGlob,
		expr:     source,
		anchored: strings.Contains(source, "/"),
	}, nil
}

func newRegexpPattern(source, expr string, anchored bool) (Pattern, error) {
	if expr == "" {
		return Pattern{}, &ConfigurationError{Subject: "pattern", Value: source, Err: ErrEmptyPattern}
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, &ConfigurationError{Subject: "pattern", Value: source, Err: err}
	}

	return Pattern{
		source:   source,
		kind:     PatternRegexp,
		expr:     expr,
		re:       re,
		anchored: anchored,
	}, nil
}

// String returns the pattern source as written.
func (p Pattern) String() string {
	return p.source
}

// Kind returns the pattern syntax.
func (p Pattern) Kind() PatternKind {
	return p.kind
}

// Anchored reports whether the pattern applies to the root relative path
// instead of the final segment.
func (p Pattern) Anchored() bool {
	return p.anchored
}

// IsZero reports whether p was never compiled.
func (p Pattern) IsZero() bool {
	return p.source == ""
}

// Match reports whether rel (slash separated, relative to the walk root)
// satisfies the pattern.
func (p Pattern) Match(rel string) bool {
	if p.IsZero() {
		return false
	}

	subject := rel
	if !p.anchored {
		subject = path.Base(rel)
	}

	if p.kind == PatternRegexp {
		return p.re.MatchString(subject)
	}

	ok, err := doublestar.Match(p.expr, subject)

	return err == nil && ok
}

// Stem returns the part of name used to derive a test name. For a regular
// expression with a capture group it is the first group, as in `^(.+)\.kt$`;
// otherwise it is the name without its final extension.
func (p Pattern) Stem(name string) string {
	if p.kind == PatternRegexp && p.re.NumSubexp() > 0 {
		if groups := p.re.FindStringSubmatch(name); len(groups) > 1 && groups[1] != "" {
			return groups[1]
		}
	}

	if ext := path.Ext(name); ext != "" && ext != name {
		return strings.TrimSuffix(name, ext)
	}

	return name
}

// RuleSpec is the serializable form of a MatchRule.
type RuleSpec struct {
	Include   string `yaml:"include" mapstructure:"include"`
	Exclude   string `yaml:"exclude,omitempty" mapstructure:"exclude"`
	Recursive bool   `yaml:"recursive" mapstructure:"recursive"`
}

// Compile turns s into an immutable MatchRule.
func (s RuleSpec) Compile() (MatchRule, error) {
	return NewMatchRule(s.Include, s.Exclude, s.Recursive)
}

// MatchRule decides which paths of a corpus are test cases. A path matches
// iff it matches the include pattern and does not match the exclude pattern.
type MatchRule struct {
	include   Pattern
	exclude   Pattern
	recursive bool
}

// NewMatchRule compiles a rule. The include pattern is mandatory; an empty
// exclude means no exclusion.
func NewMatchRule(include, exclude string, recursive bool) (MatchRule, error) {
	inc, err := NewPattern(include)
	if err != nil {
		return MatchRule{}, fmt.Errorf("include: %w", err)
	}

	rule := MatchRule{include: inc, recursive: recursive}

	if strings.TrimSpace(exclude) != "" {
		exc, err := NewPattern(exclude)
		if err != nil {
			return MatchRule{}, fmt.Errorf("exclude: %w", err)
		}

		rule.exclude = exc
	}

	return rule, nil
}

// Include returns the include pattern.
func (r MatchRule) Include() Pattern {
	return r.include
}

// Exclude returns the exclude pattern and whether one is set.
func (r MatchRule) Exclude() (Pattern, bool) {
	return r.exclude, !r.exclude.IsZero()
}

// Recursive reports whether directories are recursion boundaries. When
// false, directories are not descended and may themselves be test cases.
func (r MatchRule) Recursive() bool {
	return r.recursive
}

// Spec returns the serializable form of the rule.
func (r MatchRule) Spec() RuleSpec {
	return RuleSpec{
		Include:   r.include.String(),
		Exclude:   r.exclude.String(),
		Recursive: r.recursive,
	}
}
