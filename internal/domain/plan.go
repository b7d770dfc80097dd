package domain

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

const (
	testNamePrefix         = "Test"
	completenessNamePrefix = "TestAllFilesPresentIn"
)

// CorpusArgs are the inputs of one generation run.
type CorpusArgs struct {
	Root       m.Path
	Rule       m.RuleSpec
	Target     m.TargetClass
	Exclusions m.ExclusionTable
	Directives bool
	SkipDirs   []string
}

// ArgsFromPlan recovers the generation inputs captured in plan.
func ArgsFromPlan(plan m.TestPlan) CorpusArgs {
	return CorpusArgs{
		Root:       plan.Root,
		Rule:       plan.Rule,
		Target:     plan.Target,
		Exclusions: plan.Exclusions,
		Directives: plan.Directives,
		SkipDirs:   plan.SkipDirs,
	}
}

// Resolve compiles the rule and the target filter. Any failure is a
// configuration error.
func (a CorpusArgs) Resolve(fsAdapter adapter.CorpusFSAdapter) (m.MatchRule, TargetFilter, error) {
	rule, err := a.Rule.Compile()
	if err != nil {
		return m.MatchRule{}, nil, err
	}

	warnOnRegexpLikeGlob(rule.Include())
	if exclude, ok := rule.Exclude(); ok {
		warnOnRegexpLikeGlob(exclude)
	}

	rules, err := CompileExclusions(a.Exclusions)
	if err != nil {
		return m.MatchRule{}, nil, err
	}

	return rule, NewTargetFilter(fsAdapter, a.Target, rules, a.Directives), nil
}

// warnOnRegexpLikeGlob flags globs such as "*.fir.kts?", where "?" matches
// exactly one character rather than making the "s" optional.
func warnOnRegexpLikeGlob(p m.Pattern) {
	if p.Kind() == m.PatternGlob && strings.HasSuffix(p.String(), "s?") {
		slog.Warn("glob \"?\" matches exactly one character; use {kt,kts} or a re: pattern",
			"pattern", p.String())
	}
}

// BuildPlan turns a walked corpus into a TestPlan. The result depends only on
// its arguments.
func BuildPlan(args CorpusArgs, rule m.MatchRule, tree m.CorpusGroup) m.TestPlan {
	return m.TestPlan{
		Version:    m.PlanVersion,
		Root:       args.Root,
		Rule:       rule.Spec(),
		Target:     args.Target,
		Exclusions: args.Exclusions,
		Directives: args.Directives,
		SkipDirs:   args.SkipDirs,
		Tree:       planGroup(tree, rule, rootClassBase(args.Root)),
	}
}

func rootClassBase(root m.Path) string {
	base := filepath.Base(filepath.Clean(string(root)))
	if base == "." || base == string(filepath.Separator) {
		return "Root"
	}

	return base
}

func planGroup(group m.CorpusGroup, rule m.MatchRule, rootBase string) m.PlannedGroup {
	dirName := m.BaseName(group.DirectoryPath)
	if group.DirectoryPath == m.RootDirectory {
		dirName = rootBase
	}

	className := ClassName(dirName)

	planned := m.PlannedGroup{
		Directory:        group.DirectoryPath,
		ClassName:        className,
		CompletenessName: completenessNamePrefix + className,
		Excluded:         group.Excluded,
	}

	names := newNameSet()
	for _, entry := range group.Entries {
		name := m.BaseName(entry.RelativePath)
		planned.Cases = append(planned.Cases, m.PlannedCase{
			Path:        entry.RelativePath,
			Metadata:    name,
			TestName:    names.claim(TestName(rule.Include().Stem(name))),
			IsDirectory: entry.IsDirectory,
			Problem:     entry.Problem,
		})
	}

	for _, sub := range group.Groups {
		planned.Groups = append(planned.Groups, planGroup(sub, rule, rootBase))
	}

	return planned
}

// TestName derives a generated method name from a file stem, e.g.
// "caseInProperties" becomes "TestCaseInProperties".
func TestName(stem string) string {
	return testNamePrefix + identifier(stem)
}

// ClassName derives a generated group name from a directory name, e.g.
// "duplicateJvmSignature" becomes "DuplicateJvmSignature".
func ClassName(dir string) string {
	name := identifier(dir)

	first, _ := utf8.DecodeRuneInString(name)
	if unicode.IsDigit(first) {
		return "_" + name
	}

	return name
}

// identifier capitalizes s and replaces every character that cannot appear
// in an identifier with an underscore.
func identifier(s string) string {
	if s == "" {
		return "_"
	}

	var b strings.Builder

	for i, r := range s {
		switch {
		case i == 0 && unicode.IsLetter(r):
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return b.String()
}

// nameSet hands out unique names within one group in claim order.
type nameSet map[string]int

func newNameSet() nameSet {
	return nameSet{}
}

func (s nameSet) claim(name string) string {
	s[name]++

	if n := s[name]; n > 1 {
		candidate := name + "_" + strconv.Itoa(n)
		for s[candidate] > 0 {
			n++
			candidate = name + "_" + strconv.Itoa(n)
		}

		s[candidate]++

		return candidate
	}

	return name
}
