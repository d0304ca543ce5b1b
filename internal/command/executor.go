package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultShell runs command strings when no shell is configured.
const DefaultShell = "sh"

// Executor runs a command string through a shell.
type Executor struct {
	// Shell is invoked as `Shell -c <exec>`.
	Shell string
	// HardKill terminates an in-flight run when the job is stopped.
	// Otherwise the run completes and its output is discarded.
	HardKill bool
}

// Run executes once. A non-zero exit is not an error: the returned Output
// embeds the status and stderr. An error means the shell could not be
// started or its output could not be collected.
func (e Executor) Run(ctx context.Context, line string) (Output, error) {
	shell := e.Shell
	if shell == "" {
		shell = DefaultShell
	}
	runCtx := ctx
	if !e.HardKill {
		runCtx = context.WithoutCancel(ctx)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, shell, "-c", line)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	out := Output{
		Time:     time.Now(),
		Duration: time.Since(start),
	}

	if err == nil {
		code := 0
		out.Text = stdout.String()
		out.ExitCode = &code
		return out, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return Output{}, fmt.Errorf("run %q: %w", line, err)
	}
	if e.HardKill && ctx.Err() != nil {
		return Output{}, fmt.Errorf("run %q: %w", line, ctx.Err())
	}
	if code := exitErr.ExitCode(); code >= 0 {
		out.ExitCode = &code
	}
	out.Text = fmt.Sprintf("Command failed with status: %s. Error: %s", exitErr.ProcessState, stderr.String())
	return out, nil
}
