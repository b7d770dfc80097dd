package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPattern(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantKind PatternKind
		anchored bool
		wantErr  bool
	}{
		{"glob", "*.kt", PatternGlob, false, false},
		{"anchored glob", "testsWithJava11/*.kt", PatternGlob, true, false},
		{"regexp", `re:^(.+)\.kt$`, PatternRegexp, false, false},
		{"regexp with slash stays on the name", `re:^[^/]+\.kt$`, PatternRegexp, false, false},
		{"path regexp", `pathre:^codegen/.+\.kt$`, PatternRegexp, true, false},
		{"empty path regexp", "pathre:", "", false, true},
		{"empty", "", "", false, true},
		{"blank", "   ", "", false, true},
		{"empty regexp", "re:", "", false, true},
		{"bad regexp", "re:(", "", false, true},
		{"bad glob", "[", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPattern(tt.source)
			if tt.wantErr {
				require.Error(t, err)

				var cfgErr *ConfigurationError
				assert.True(t, errors.As(err, &cfgErr))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, p.Kind())
			assert.Equal(t, tt.anchored, p.Anchored())
			assert.Equal(t, tt.source, p.String())
		})
	}
}

func TestNewPattern_EmptyIsSentinel(t *testing.T) {
	_, err := NewPattern("")
	require.ErrorIs(t, err, ErrEmptyPattern)
}

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		pattern string
		rel     string
		want    bool
	}{
		{"*.kt", "class_old.kt", true},
		{"*.kt", "bridges/class_old.kt", true},
		{"*.kt", "bridges/notes.txt", false},
		{"*.kt", "x.fir.kt", true},
		{"*.fir.kt", "x.fir.kt", true},
		{"*.{kt,kts}", "build.kts", true},
		{`re:^(.+)\.fir\.kts?$`, "a/x.fir.kt", true},
		{`re:^(.+)\.fir\.kts?$`, "x.fir.kts", true},
		{`re:^(.+)\.fir\.kts?$`, "x.kt", false},
		{"bridges/*.kt", "bridges/class_old.kt", true},
		{"bridges/*.kt", "class_old.kt", false},
		{"**/records/*.kt", "testsWithJava15/records/a.kt", true},
		{`re:^([^_](.+))$`, "_helpers", false},
		{`re:^([^_](.+))$`, "smokes", true},
		{`re:^[^/]+\.kt$`, "bridges/class_old.kt", true},
		{`pathre:^codegen/.+\.kt$`, "codegen/box/a.kt", true},
		{`pathre:^codegen/.+\.kt$`, "other/a.kt", false},
		// "?" in a glob is exactly one character, not an optional one.
		{"*.fir.kts?", "x.fir.kt", false},
		{"*.fir.kts?", "x.fir.ktsx", true},
		{"*.fir.{kt,kts}", "x.fir.kt", true},
		{"*.fir.{kt,kts}", "x.fir.kts", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.rel, func(t *testing.T) {
			p, err := NewPattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.rel))
		})
	}
}

func TestPattern_Stem(t *testing.T) {
	re, err := NewPattern(`re:^(.+)\.kt$`)
	require.NoError(t, err)
	assert.Equal(t, "caseInProperties", re.Stem("caseInProperties.kt"))
	assert.Equal(t, "x.fir", re.Stem("x.fir.kt"))

	noGroup, err := NewPattern(`re:\.kt$`)
	require.NoError(t, err)
	assert.Equal(t, "inlineCycle", noGroup.Stem("inlineCycle.kt"))

	glob, err := NewPattern("*.kt")
	require.NoError(t, err)
	assert.Equal(t, "trait_old", glob.Stem("trait_old.kt"))
	assert.Equal(t, "smokes", glob.Stem("smokes"))
	assert.Equal(t, ".hidden", glob.Stem(".hidden"))
}

func TestNewMatchRule(t *testing.T) {
	t.Run("include is mandatory", func(t *testing.T) {
		_, err := NewMatchRule("", "*.fir.kt", true)
		require.ErrorIs(t, err, ErrEmptyPattern)
	})

	t.Run("exclude is optional", func(t *testing.T) {
		rule, err := NewMatchRule("*.kt", "", true)
		require.NoError(t, err)

		_, ok := rule.Exclude()
		assert.False(t, ok)
		assert.True(t, rule.Recursive())
	})

	t.Run("bad exclude fails", func(t *testing.T) {
		_, err := NewMatchRule("*.kt", "re:(", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exclude")
	})

	t.Run("serialized form round trip", func(t *testing.T) {
		spec := RuleSpec{Include: "*.kt", Exclude: `re:^(.+)\.fir\.kts?$`, Recursive: true}
		rule, err := spec.Compile()
		require.NoError(t, err)
		assert.Equal(t, spec, rule.Spec())
	})
}
