package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type Command struct {
	Name string
	Args []string
	// Env is added to the parent environment of this child only.
	Env map[string]string
	// Stdout, when set, receives standard output and only standard error
	// is captured in Result.Output.
	Stdout io.Writer
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

type Result struct {
	Command  Command
	Output   string
	ExitCode int
}

// Err returns an *ExitError when the command exited non-zero.
func (r *Result) Err() error {
	if r.ExitCode == 0 {
		return nil
	}
	return &ExitError{Command: r.Command.String(), ExitCode: r.ExitCode, Output: r.Output}
}

type ExitError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *ExitError) Error() string {
	return "command failed: " + e.Command + "\n" + e.Output
}

type Runner struct{}

func NewRunner() *Runner {
	return &Runner{}
}

// Run blocks until the child exits. A non-zero exit status is reported in
// the result, not as an error.
func (r *Runner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = childEnv(c.Env)

	var output bytes.Buffer
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	} else {
		cmd.Stdout = &output
	}
	cmd.Stderr = &output

	result := &Result{Command: c}
	err := cmd.Run()
	result.Output = output.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		result.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("failed to run %s: %w", c.Name, err)
	}

	return result, nil
}

// RunChecked is Run with a non-zero exit turned into an *ExitError.
func (r *Runner) RunChecked(ctx context.Context, c Command) (*Result, error) {
	result, err := r.Run(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func childEnv(overrides map[string]string) []string {
	env := os.Environ()
	if len(overrides) == 0 {
		return env
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
