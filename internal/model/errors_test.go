package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriftError_Error(t *testing.T) {
	err := NewDriftError(
		"duplicateJvmSignature/bridges",
		[]string{"class_old.kt", "fakeOverrideTrait_old.kt", "trait_old.kt"},
		[]string{"class_old.kt", "newOne.kt", "trait_old.kt"},
		[]string{"newOne.kt"},
		[]string{"fakeOverrideTrait_old.kt"},
	)

	msg := err.Error()
	assert.Contains(t, msg, "duplicateJvmSignature/bridges")
	assert.Contains(t, msg, "1 added, 1 removed")
	assert.Contains(t, msg, "+ newOne.kt")
	assert.Contains(t, msg, "- fakeOverrideTrait_old.kt")
	assert.False(t, err.Empty())
}

func TestDriftError_Diff(t *testing.T) {
	err := NewDriftError("bridges", []string{"a.kt", "b.kt"}, []string{"a.kt", "c.kt"}, []string{"c.kt"}, []string{"b.kt"})

	diff := err.Diff()
	assert.Contains(t, diff, "--- bridges (plan)")
	assert.Contains(t, diff, "+++ bridges (disk)")
	assert.Contains(t, diff, "-b.kt")
	assert.Contains(t, diff, "+c.kt")
}

func TestDriftError_Unreadable(t *testing.T) {
	err := NewDriftError("x", nil, nil, nil, nil)
	assert.True(t, err.Empty())

	err.Unreadable = append(err.Unreadable, UnreadableEntryError{Path: "x/locked", Err: errors.New("permission denied")})
	assert.False(t, err.Empty())
	assert.Contains(t, err.Error(), "! x/locked: permission denied")
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Subject: "root", Value: "/nope", Err: ErrRootNotDirectory}
	assert.Equal(t, `invalid root "/nope": root is not a directory`, err.Error())
	assert.ErrorIs(t, err, ErrRootNotDirectory)
}

func TestDriftError_Vanished(t *testing.T) {
	err := NewVanishedError("duplicateJvmSignature/bridges")

	assert.False(t, err.Empty())
	assert.Equal(t, "corpus drift in duplicateJvmSignature/bridges: directory vanished", err.Error())
	assert.Empty(t, err.Diff())
}
