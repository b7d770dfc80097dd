package adapter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// PlanStore persists test plan snapshots for the code writer and for later
// completeness checks.
type PlanStore interface {
	SavePlan(path m.Path, plan m.TestPlan) error
	LoadPlan(path m.Path) (m.TestPlan, error)
}

// YAMLPlanStore stores plans as YAML documents.
type YAMLPlanStore struct{}

// NewPlanStore constructs the default PlanStore.
func NewPlanStore() *YAMLPlanStore {
	return &YAMLPlanStore{}
}

// SavePlan writes plan to path through a temporary file so readers never see
// a partially written snapshot.
func (s *YAMLPlanStore) SavePlan(path m.Path, plan m.TestPlan) error {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	dir := filepath.Dir(string(path))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create plan directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".plan-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp plan: %w", err)
	}

	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write plan: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close plan: %w", err)
	}

	if err := os.Rename(tmp.Name(), string(path)); err != nil {
		return fmt.Errorf("replace plan: %w", err)
	}

	return nil
}

// LoadPlan reads a plan snapshot.
func (s *YAMLPlanStore) LoadPlan(path m.Path) (m.TestPlan, error) {
	// #nosec G304 - plan path is chosen by the operator
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.TestPlan{}, fmt.Errorf("read plan: %w", err)
	}

	var plan m.TestPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return m.TestPlan{}, fmt.Errorf("decode plan %s: %w", path, err)
	}

	if plan.Version != m.PlanVersion {
		return m.TestPlan{}, fmt.Errorf("plan %s: unsupported version %d", path, plan.Version)
	}

	return plan, nil
}
