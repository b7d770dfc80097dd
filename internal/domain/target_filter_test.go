package domain

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		source  string
		wantErr error
		match   string
		noMatch string
	}{
		{source: "testsWithJava11/**", match: "testsWithJava11/a/b.kt", noMatch: "box/a.kt"},
		{source: "suffix:_old", match: "bridges/class_old.kt", noMatch: "bridges/class.kt"},
		{source: "suffix:.fir", match: "x.fir.kt", noMatch: "x.kt"},
		{source: "", wantErr: m.ErrEmptyPattern},
		{source: "suffix:", wantErr: m.ErrEmptyPattern},
		{source: "regex:^a$", wantErr: m.ErrUnknownPredicate},
		{source: "box/[", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			predicate, err := ParsePredicate(tt.source)

			if tt.source == "box/[" {
				var cfgErr *m.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, "exclusion predicate", cfgErr.Subject)

				return
			}

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.source, predicate.String())
			assert.True(t, predicate.Match(tt.match))
			assert.False(t, predicate.Match(tt.noMatch))
		})
	}
}

func TestCompileExclusions_NamesTarget(t *testing.T) {
	_, err := CompileExclusions(m.ExclusionTable{"JVM": {"bogus:x"}})

	require.ErrorIs(t, err, m.ErrUnknownPredicate)
	assert.Contains(t, err.Error(), `target "JVM"`)
}

func TestIsEligibleForTarget(t *testing.T) {
	rules, err := CompileExclusions(m.ExclusionTable{
		"JVM_IR":         {"duplicateJvmSignature/**"},
		m.TargetWildcard: {"suffix:_disabled"},
	})
	require.NoError(t, err)

	bridges := m.CorpusEntry{RelativePath: "duplicateJvmSignature/bridges/class_old.kt"}
	disabled := m.CorpusEntry{RelativePath: "box/a_disabled.kt"}
	plain := m.CorpusEntry{RelativePath: "box/a.kt"}

	assert.False(t, IsEligibleForTarget(bridges, "JVM_IR", rules))
	assert.True(t, IsEligibleForTarget(bridges, "JVM", rules))
	assert.False(t, IsEligibleForTarget(disabled, "JVM", rules))
	assert.True(t, IsEligibleForTarget(plain, "JVM_IR", rules))

	assert.True(t, IsEligibleForTarget(bridges, m.TargetAny, rules))
	assert.True(t, IsEligibleForTarget(disabled, m.TargetAny, rules))
}

func TestParseDirectives(t *testing.T) {
	d := parseDirectives([]string{
		"// TARGET_BACKEND: JVM, NATIVE",
		"  // DONT_TARGET_EXACT_BACKEND: JS_IR",
		"// IGNORE_BACKEND_K2: JVM",
		"package foo // TARGET_BACKEND: WASM",
		"//WITH_STDLIB",
	})

	assert.Equal(t, []m.TargetClass{"JVM", "NATIVE"}, d.only)
	assert.Equal(t, []m.TargetClass{"JS_IR"}, d.exclude)

	assert.True(t, d.compatible("JVM"))
	assert.True(t, d.compatible("NATIVE"))
	assert.False(t, d.compatible("JS_IR"))
	assert.False(t, d.compatible("WASM"))

	assert.True(t, parseDirectives(nil).compatible("JVM"))
	assert.True(t, parseDirectives([]string{"// TARGET_BACKEND: ANY"}).compatible("WASM"))
}

func TestTargetFilter_Directives(t *testing.T) {
	root := bridgesCorpus(t)
	fsAdapter := adapter.NewLocalCorpusFSAdapter()
	ctx := context.Background()

	filter := NewTargetFilter(fsAdapter, "JVM", nil, true)
	assert.Equal(t, m.TargetClass("JVM"), filter.Target())

	tests := []struct {
		rel  string
		want bool
	}{
		{rel: "native/nativeOnly.kt", want: false},
		{rel: "native/anyBackend.kt", want: true},
		{rel: "native/notJvm.kt", want: false},
		{rel: "duplicateJvmSignature/bridges/class_old.kt", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			entry := m.CorpusEntry{RelativePath: tt.rel}

			ok, err := filter.Eligible(ctx, entry, fsAdapter.JoinRel(m.Path(root), tt.rel))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	native := NewTargetFilter(fsAdapter, "NATIVE", nil, true)
	ok, err := native.Eligible(ctx, m.CorpusEntry{RelativePath: "native/nativeOnly.kt"}, m.Path(filepath.Join(root, "native", "nativeOnly.kt")))
	require.NoError(t, err)
	assert.True(t, ok)

	ignored := NewTargetFilter(fsAdapter, "JVM", nil, false)
	ok, err = ignored.Eligible(ctx, m.CorpusEntry{RelativePath: "native/nativeOnly.kt"}, m.Path(filepath.Join(root, "native", "nativeOnly.kt")))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTargetFilter_UnreadableHead(t *testing.T) {
	root := bridgesCorpus(t)
	fsAdapter := newFaultyFS()
	abs := fsAdapter.JoinRel(m.Path(root), "native/notJvm.kt")
	fsAdapter.headErrs[abs] = errors.New("input/output error")

	filter := NewTargetFilter(fsAdapter, "JVM", nil, true)

	_, err := filter.Eligible(context.Background(), m.CorpusEntry{RelativePath: "native/notJvm.kt"}, abs)

	var ue *m.UnreadableEntryError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "native/notJvm.kt", ue.Path)
}

func TestNoTargetFilter(t *testing.T) {
	filter := NoTargetFilter()

	ok, err := filter.Eligible(context.Background(), m.CorpusEntry{RelativePath: "any.kt"}, "/does/not/exist")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, m.TargetAny, filter.Target())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = filter.Eligible(ctx, m.CorpusEntry{RelativePath: "any.kt"}, "/does/not/exist")
	assert.ErrorIs(t, err, context.Canceled)
}
