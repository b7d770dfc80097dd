// Package corpustest lets generated Go tests assert that the corpus they
// were generated from has not drifted.
//
// A generated completeness test embeds the listing it was generated from:
//
//	func TestAllFilesPresentInBridges(t *testing.T) {
//		corpustest.AssertAllFilesPresent(t, corpustest.Check{
//			Root:      "testData/codegen/box",
//			Directory: "duplicateJvmSignature/bridges",
//			Include:   `re:^(.+)\.kt$`,
//			Recursive: true,
//			Expected:  []string{"class_old.kt", "trait_old.kt"},
//		})
//	}
package corpustest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	"corpusgen.dev/pkg/corpusgen/internal/domain"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// Check describes one directory of a corpus as it was when the test was
// generated.
type Check struct {
	Root       string
	Directory  string
	Include    string
	Exclude    string
	Recursive  bool
	Target     string
	Exclusions map[string][]string
	Directives bool
	SkipDirs   []string
	// Expected lists the children of Directory by base name. Names ending in
	// "/" are subdirectories.
	Expected []string
}

// AssertAllFilesPresent fails t when the eligible children of c.Directory
// differ from c.Expected, naming every added and removed file. It reports
// whether the directory is unchanged.
func AssertAllFilesPresent(t testing.TB, c Check) bool {
	t.Helper()

	err := checkAllFilesPresent(context.Background(), adapter.NewLocalCorpusFSAdapter(), c)
	if err == nil {
		return true
	}

	var driftErr *m.DriftError
	if errors.As(err, &driftErr) {
		t.Errorf("%s\n%s", driftErr.Error(), driftErr.Diff())
		return false
	}

	t.Errorf("corpustest: %v", err)

	return false
}

func checkAllFilesPresent(ctx context.Context, fsAdapter adapter.CorpusFSAdapter, c Check) error {
	exclusions := make(m.ExclusionTable, len(c.Exclusions))
	for target, predicates := range c.Exclusions {
		exclusions[m.TargetClass(strings.ToUpper(target))] = predicates
	}

	args := domain.CorpusArgs{
		Root:       m.Path(c.Root),
		Rule:       m.RuleSpec{Include: c.Include, Exclude: c.Exclude, Recursive: c.Recursive},
		Target:     m.TargetClass(strings.ToUpper(c.Target)),
		Exclusions: exclusions,
		Directives: c.Directives,
		SkipDirs:   c.SkipDirs,
	}

	rule, filter, err := args.Resolve(fsAdapter)
	if err != nil {
		return err
	}

	detector := domain.NewDriftDetector(domain.NewCorpusWalker(fsAdapter, c.SkipDirs...))

	return detector.AssertNoDrift(ctx, args.Root, rule, filter, domain.ExpectedFromNames(c.Directory, c.Expected))
}
