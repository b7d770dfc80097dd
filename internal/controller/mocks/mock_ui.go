// Package mocks provides testify mocks of the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// MockUI is a mock implementation of controller.UI.
type MockUI struct {
	mock.Mock
}

// DisplayPlan provides a mock function.
func (u *MockUI) DisplayPlan(ctx context.Context, plan m.TestPlan) error {
	return u.Called(ctx, plan).Error(0)
}

// DisplayCases provides a mock function.
func (u *MockUI) DisplayCases(ctx context.Context, plan m.TestPlan) error {
	return u.Called(ctx, plan).Error(0)
}

// DisplayCheckResults provides a mock function.
func (u *MockUI) DisplayCheckResults(ctx context.Context, results []m.GroupResult, showDiff bool) error {
	return u.Called(ctx, results, showDiff).Error(0)
}

// DisplayRunResults provides a mock function.
func (u *MockUI) DisplayRunResults(ctx context.Context, results []m.CaseResult) error {
	return u.Called(ctx, results).Error(0)
}

// DisplayWatchEvent provides a mock function.
func (u *MockUI) DisplayWatchEvent(ctx context.Context, changed []m.Path) {
	u.Called(ctx, changed)
}

// BrowsePlan provides a mock function.
func (u *MockUI) BrowsePlan(ctx context.Context, plan m.TestPlan) error {
	return u.Called(ctx, plan).Error(0)
}
