package domain

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// writeCorpus creates files under root. A name ending in "/" creates an
// empty directory.
func writeCorpus(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))

		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}

		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

// bridgesCorpus lays out a codegen box corpus with one JVM-only directory.
func bridgesCorpus(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeCorpus(t, root, map[string]string{
		"duplicateJvmSignature/bridges/class_old.kt":             "fun box() = \"OK\"\n",
		"duplicateJvmSignature/bridges/trait_old.kt":             "fun box() = \"OK\"\n",
		"duplicateJvmSignature/bridges/fakeOverrideTrait_old.kt": "fun box() = \"OK\"\n",
		"duplicateJvmSignature/bridges/class.fir.kt":             "fun box() = \"OK\"\n",
		"duplicateJvmSignature/empty/":                           "",
		"native/nativeOnly.kt":                                   "// TARGET_BACKEND: NATIVE\nfun box() = \"OK\"\n",
		"native/anyBackend.kt":                                   "// TARGET_BACKEND: ANY\nfun box() = \"OK\"\n",
		"native/notJvm.kt":                                       "// DONT_TARGET_EXACT_BACKEND: JVM\nfun box() = \"OK\"\n",
		"README.md":                                              "corpus\n",
	})

	return root
}

func mustRule(t *testing.T, include, exclude string, recursive bool) m.MatchRule {
	t.Helper()

	rule, err := m.NewMatchRule(include, exclude, recursive)
	require.NoError(t, err)

	return rule
}

// kotlinRule is the rule generated box tests are declared with.
func kotlinRule(t *testing.T) m.MatchRule {
	t.Helper()

	return mustRule(t, `re:^(.+)\.kt$`, `re:^(.+)\.fir\.kts?$`, true)
}

// faultyFS injects errors into an otherwise real filesystem.
type faultyFS struct {
	*adapter.LocalCorpusFSAdapter
	readDirErrs map[m.Path]error
	headErrs    map[m.Path]error
}

func newFaultyFS() *faultyFS {
	return &faultyFS{
		LocalCorpusFSAdapter: adapter.NewLocalCorpusFSAdapter(),
		readDirErrs:          map[m.Path]error{},
		headErrs:             map[m.Path]error{},
	}
}

func (f *faultyFS) ReadDir(dir m.Path) ([]fs.DirEntry, error) {
	if err, ok := f.readDirErrs[dir]; ok {
		return nil, err
	}

	return f.LocalCorpusFSAdapter.ReadDir(dir)
}

func (f *faultyFS) ReadHead(path m.Path, maxLines int) ([]string, error) {
	if err, ok := f.headErrs[path]; ok {
		return nil, err
	}

	return f.LocalCorpusFSAdapter.ReadHead(path, maxLines)
}
