// Package mocks provides testify mocks of the adapter interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// MockPlanStore is a mock implementation of adapter.PlanStore.
type MockPlanStore struct {
	mock.Mock
}

// SavePlan provides a mock function.
func (s *MockPlanStore) SavePlan(path m.Path, plan m.TestPlan) error {
	return s.Called(path, plan).Error(0)
}

// LoadPlan provides a mock function.
func (s *MockPlanStore) LoadPlan(path m.Path) (m.TestPlan, error) {
	args := s.Called(path)
	return args.Get(0).(m.TestPlan), args.Error(1)
}

// MockCaseRunner is a mock implementation of adapter.CaseRunnerAdapter.
type MockCaseRunner struct {
	mock.Mock
}

// RunCase provides a mock function.
func (r *MockCaseRunner) RunCase(ctx context.Context, path m.Path, target m.TargetClass) m.CaseResult {
	return r.Called(ctx, path, target).Get(0).(m.CaseResult)
}

// MockCorpusWatcher is a mock implementation of adapter.CorpusWatcher.
type MockCorpusWatcher struct {
	mock.Mock
}

// Watch provides a mock function.
func (w *MockCorpusWatcher) Watch(ctx context.Context, root m.Path, skipDirs []string) (<-chan m.Path, <-chan error, error) {
	args := w.Called(ctx, root, skipDirs)

	changes, _ := args.Get(0).(<-chan m.Path)
	errs, _ := args.Get(1).(<-chan error)

	return changes, errs, args.Error(2)
}
