// Package mocks provides testify mocks of the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	domain "corpusgen.dev/pkg/corpusgen/internal/domain"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// MockWorkflow is a mock implementation of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a MockWorkflow whose expectations are asserted
// when the test ends.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	w := &MockWorkflow{}
	w.Test(t)

	t.Cleanup(func() { w.AssertExpectations(t) })

	return w
}

// Plan provides a mock function.
func (w *MockWorkflow) Plan(ctx context.Context, args domain.PlanArgs) (m.TestPlan, error) {
	ret := w.Called(ctx, args)

	plan, _ := ret.Get(0).(m.TestPlan)

	return plan, ret.Error(1)
}

// Check provides a mock function.
func (w *MockWorkflow) Check(ctx context.Context, args domain.CheckArgs) error {
	return w.Called(ctx, args).Error(0)
}

// List provides a mock function.
func (w *MockWorkflow) List(ctx context.Context, args domain.ListArgs) error {
	return w.Called(ctx, args).Error(0)
}

// View provides a mock function.
func (w *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	return w.Called(ctx, args).Error(0)
}

// Run provides a mock function.
func (w *MockWorkflow) Run(ctx context.Context, args domain.RunArgs) error {
	return w.Called(ctx, args).Error(0)
}

// Watch provides a mock function.
func (w *MockWorkflow) Watch(ctx context.Context, args domain.WatchArgs) error {
	return w.Called(ctx, args).Error(0)
}
