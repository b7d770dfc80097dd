package adapter

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

const (
	// PathPlaceholder is replaced by the resolved case path in a runner command.
	PathPlaceholder = "{path}"
	// TargetPlaceholder is replaced by the target class in a runner command.
	TargetPlaceholder = "{target}"
)

// ErrNoRunnerCommand is returned when no runner command is configured.
var ErrNoRunnerCommand = errors.New("no runner command configured")

// CaseRunnerAdapter is the hook into actual test execution: it runs one
// resolved test-data path for one target.
type CaseRunnerAdapter interface {
	RunCase(ctx context.Context, path m.Path, target m.TargetClass) m.CaseResult
}

// CommandCaseRunner runs an external command per case.
type CommandCaseRunner struct {
	command []string
	workDir string
	timeout time.Duration
}

// NewCommandCaseRunner constructs a runner for a command template such as
// "./gradlew runCase --file {path} --backend {target}".
func NewCommandCaseRunner(command string, workDir string, timeout time.Duration) *CommandCaseRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &CommandCaseRunner{
		command: strings.Fields(command),
		workDir: workDir,
		timeout: timeout,
	}
}

// RunCase runs the command for path. A non-zero exit is a failed case; a
// command that cannot be started is a CaseError.
func (r *CommandCaseRunner) RunCase(ctx context.Context, path m.Path, target m.TargetClass) m.CaseResult {
	result := m.CaseResult{Path: string(path), Target: target}

	if len(r.command) == 0 {
		result.Status = m.CaseError
		result.Err = ErrNoRunnerCommand

		return result
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := make([]string, len(r.command))
	for i, arg := range r.command {
		arg = strings.ReplaceAll(arg, PathPlaceholder, string(path))
		args[i] = strings.ReplaceAll(arg, TargetPlaceholder, string(target))
	}

	// #nosec G204 - the command is configured by the operator
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.workDir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Output = stdout.String() + stderr.String()

	var exitErr *exec.ExitError

	switch {
	case err == nil:
		result.Status = m.CasePassed
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		result.Status = m.CaseFailed
		result.Err = err
	default:
		result.Status = m.CaseError
		result.Err = err
	}

	return result
}
