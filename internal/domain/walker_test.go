package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

func TestCorpusWalker_Walk_Bridges(t *testing.T) {
	root := bridgesCorpus(t)
	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter())

	tree, err := walker.Walk(context.Background(), m.Path(root), kotlinRule(t), NoTargetFilter())
	require.NoError(t, err)

	assert.Equal(t, m.RootDirectory, tree.DirectoryPath)
	assert.Empty(t, tree.Entries, "README.md is irrelevant")
	require.Len(t, tree.Groups, 2)

	dup := tree.Groups[0]
	assert.Equal(t, "duplicateJvmSignature", dup.DirectoryPath)
	assert.Equal(t, []string{"bridges/", "empty/"}, dup.Children())

	bridges := dup.Groups[0]
	assert.Equal(t, []string{"class_old.kt", "fakeOverrideTrait_old.kt", "trait_old.kt"}, bridges.Children())
	assert.Equal(t, []string{"class.fir.kt"}, bridges.Excluded)

	empty := dup.Groups[1]
	assert.Equal(t, "duplicateJvmSignature/empty", empty.DirectoryPath)
	assert.Empty(t, empty.Entries)
	assert.Empty(t, empty.Groups)

	assert.Equal(t, 6, tree.CaseCount())
}

func TestCorpusWalker_Walk_BridgesOnlyOldFiles(t *testing.T) {
	root := t.TempDir()
	writeCorpus(t, root, map[string]string{
		"duplicateJvmSignature/bridges/trait_old.kt":             "fun box() = \"OK\"\n",
		"duplicateJvmSignature/bridges/fakeOverrideTrait_old.kt": "fun box() = \"OK\"\n",
		"duplicateJvmSignature/bridges/class_old.kt":             "fun box() = \"OK\"\n",
	})

	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter())

	for _, exclude := range []string{"*.fir.{kt,kts}", `re:^(.+)\.fir\.kts?$`} {
		t.Run(exclude, func(t *testing.T) {
			tree, err := walker.Walk(context.Background(), m.Path(root), mustRule(t, "*.kt", exclude, true), NoTargetFilter())
			require.NoError(t, err)

			bridges := tree.Groups[0].Groups[0]
			assert.Equal(t, "duplicateJvmSignature/bridges", bridges.DirectoryPath)

			var paths []string
			for _, entry := range bridges.Entries {
				paths = append(paths, entry.RelativePath)
			}

			assert.Equal(t, []string{
				"duplicateJvmSignature/bridges/class_old.kt",
				"duplicateJvmSignature/bridges/fakeOverrideTrait_old.kt",
				"duplicateJvmSignature/bridges/trait_old.kt",
			}, paths)
			assert.Empty(t, bridges.Excluded)
			assert.Empty(t, bridges.Groups)
		})
	}
}

func TestCorpusWalker_Walk_LongLineAfterDirective(t *testing.T) {
	root := t.TempDir()
	writeCorpus(t, root, map[string]string{
		"box/big.kt": "// TARGET_BACKEND: JVM\n" + strings.Repeat("x", 70*1024) + "\n",
	})

	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter())
	fsAdapter := adapter.NewLocalCorpusFSAdapter()

	jvm, err := walker.Walk(context.Background(), m.Path(root), kotlinRule(t), NewTargetFilter(fsAdapter, "JVM", nil, true))
	require.NoError(t, err)

	box := jvm.Groups[0]
	require.Len(t, box.Entries, 1)
	assert.False(t, box.Entries[0].Failed())
	assert.Empty(t, box.Entries[0].Problem)

	native, err := walker.Walk(context.Background(), m.Path(root), kotlinRule(t), NewTargetFilter(fsAdapter, "NATIVE", nil, true))
	require.NoError(t, err)
	assert.Empty(t, native.Groups[0].Entries)
	assert.Equal(t, []string{"big.kt"}, native.Groups[0].Excluded)
}

func TestCorpusWalker_Walk_Soundness(t *testing.T) {
	root := bridgesCorpus(t)
	rule := kotlinRule(t)
	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter())

	tree, err := walker.Walk(context.Background(), m.Path(root), rule, NoTargetFilter())
	require.NoError(t, err)

	tree.Visit(func(g m.CorpusGroup) {
		for _, entry := range g.Entries {
			assert.True(t, Matches(entry.RelativePath, entry.IsDirectory, rule), entry.RelativePath)

			_, statErr := os.Stat(filepath.Join(root, filepath.FromSlash(entry.RelativePath)))
			assert.NoError(t, statErr)
		}
	})
}

func TestCorpusWalker_Walk_Idempotent(t *testing.T) {
	root := bridgesCorpus(t)
	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter())
	rule := kotlinRule(t)

	first, err := walker.Walk(context.Background(), m.Path(root), rule, NoTargetFilter())
	require.NoError(t, err)

	second, err := walker.Walk(context.Background(), m.Path(root), rule, NoTargetFilter())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("walk is not deterministic (-first +second):\n%s", diff)
	}
}

func TestCorpusWalker_Walk_TargetSensitive(t *testing.T) {
	root := bridgesCorpus(t)
	fsAdapter := adapter.NewLocalCorpusFSAdapter()
	walker := NewCorpusWalker(fsAdapter)

	rules, err := CompileExclusions(m.ExclusionTable{"JVM_IR": {"duplicateJvmSignature/**"}})
	require.NoError(t, err)

	jvm, err := walker.Walk(context.Background(), m.Path(root), kotlinRule(t), NewTargetFilter(fsAdapter, "JVM", rules, true))
	require.NoError(t, err)

	ir, err := walker.Walk(context.Background(), m.Path(root), kotlinRule(t), NewTargetFilter(fsAdapter, "JVM_IR", rules, true))
	require.NoError(t, err)

	assert.Equal(t, 4, jvm.CaseCount())
	assert.Equal(t, 2, ir.CaseCount(), "notJvm.kt only excludes the exact JVM target")

	native := jvm.Groups[1]
	assert.Equal(t, []string{"anyBackend.kt"}, native.Children())
	assert.ElementsMatch(t, []string{"nativeOnly.kt", "notJvm.kt"}, native.Excluded)
}

func TestCorpusWalker_Walk_NonRecursiveDirectories(t *testing.T) {
	root := t.TempDir()
	writeCorpus(t, root, map[string]string{
		"classes/main.kt":      "",
		"functions/main.kt":    "",
		"_shared/util.kt":      "",
		"toplevel.kt":          "",
		"nested/inner/main.kt": "",
	})

	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter())

	tree, err := walker.Walk(context.Background(), m.Path(root), mustRule(t, `re:^([^_](.+))$`, `re:^(.+)\.kt$`, false), NoTargetFilter())
	require.NoError(t, err)

	assert.Empty(t, tree.Groups)
	assert.Equal(t, []string{"classes/", "functions/", "nested/"}, tree.Children())
	assert.Equal(t, []string{"toplevel.kt"}, tree.Excluded)

	for _, entry := range tree.Entries {
		assert.True(t, entry.IsDirectory)
	}
}

func TestCorpusWalker_Walk_SkipsSymlinksAndSkipDirs(t *testing.T) {
	root := t.TempDir()
	writeCorpus(t, root, map[string]string{
		"box/a.kt":       "",
		".git/HEAD.kt":   "",
		"outside/b.kt":   "",
		"box/inner/c.kt": "",
	})

	if err := os.Symlink(filepath.Join(root, "box", "a.kt"), filepath.Join(root, "box", "link.kt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if err := os.Symlink(filepath.Join(root, "outside"), filepath.Join(root, "box", "linkdir")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter(), ".git")

	tree, err := walker.Walk(context.Background(), m.Path(root), mustRule(t, "*.kt", "", true), NoTargetFilter())
	require.NoError(t, err)

	assert.Equal(t, []string{"box/", "outside/"}, tree.Children())
	assert.Equal(t, []string{"a.kt", "inner/"}, tree.Groups[0].Children())
}

func TestCorpusWalker_Walk_RootErrors(t *testing.T) {
	root := t.TempDir()
	writeCorpus(t, root, map[string]string{"file.kt": ""})

	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter())
	rule := kotlinRule(t)

	_, err := walker.Walk(context.Background(), m.Path(filepath.Join(root, "missing")), rule, NoTargetFilter())

	var cfgErr *m.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "root", cfgErr.Subject)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = walker.Walk(context.Background(), m.Path(filepath.Join(root, "file.kt")), rule, NoTargetFilter())
	assert.ErrorIs(t, err, m.ErrRootNotDirectory)
}

func TestCorpusWalker_Walk_Canceled(t *testing.T) {
	root := bridgesCorpus(t)
	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := walker.Walk(ctx, m.Path(root), kotlinRule(t), NoTargetFilter())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCorpusWalker_Walk_UnreadableEntries(t *testing.T) {
	root := bridgesCorpus(t)
	fsAdapter := newFaultyFS()

	bridges := fsAdapter.JoinRel(m.Path(root), "duplicateJvmSignature/bridges")
	fsAdapter.readDirErrs[bridges] = os.ErrPermission

	notJvm := fsAdapter.JoinRel(m.Path(root), "native/notJvm.kt")
	fsAdapter.headErrs[notJvm] = errors.New("input/output error")

	walker := NewCorpusWalker(fsAdapter)

	tree, err := walker.Walk(context.Background(), m.Path(root), kotlinRule(t), NewTargetFilter(fsAdapter, "JVM", nil, true))
	require.NoError(t, err)

	bridgesGroup := tree.Groups[0].Groups[0]
	require.Len(t, bridgesGroup.Entries, 1)

	failed := bridgesGroup.Entries[0]
	assert.True(t, failed.Failed())
	assert.Equal(t, "duplicateJvmSignature/bridges", failed.RelativePath)
	assert.ErrorIs(t, failed.Err, os.ErrPermission)

	var head *m.CorpusEntry

	for i, entry := range tree.Groups[1].Entries {
		if entry.RelativePath == "native/notJvm.kt" {
			head = &tree.Groups[1].Entries[i]
		}
	}

	require.NotNil(t, head)
	assert.Equal(t, "input/output error", head.Problem)
	assert.Equal(t, "native/notJvm.kt", head.Unreadable().Path)
}

func TestCorpusWalker_WalkLevel(t *testing.T) {
	root := bridgesCorpus(t)
	walker := NewCorpusWalker(adapter.NewLocalCorpusFSAdapter())

	level, err := walker.WalkLevel(context.Background(), m.Path(root), "duplicateJvmSignature", kotlinRule(t), NoTargetFilter())
	require.NoError(t, err)

	assert.Equal(t, []string{"bridges/", "empty/"}, level.Children())

	for _, sub := range level.Groups {
		assert.Empty(t, sub.Entries)
	}

	_, err = walker.WalkLevel(context.Background(), m.Path(root), "gone", kotlinRule(t), NoTargetFilter())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
