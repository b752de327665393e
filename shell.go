package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// shellCommand appends name to the configured command prefix. The child
// inherits the terminal once the dashboard has released it.
func shellCommand(ctx context.Context, prefix, name string) (*exec.Cmd, error) {
	args := strings.Fields(prefix)
	if len(args) == 0 {
		return nil, errors.New("empty shell command")
	}
	args = append(args, name)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// runShell runs the shell command for name and returns its exit code.
// A command that could not be started returns an error.
func runShell(ctx context.Context, prefix, name string) (int, error) {
	cmd, err := shellCommand(ctx, prefix, name)
	if err != nil {
		return 1, err
	}
	err = cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitStatus(exitErr), nil
	}
	if err != nil {
		return 1, fmt.Errorf("run %s: %w", cmd.Path, err)
	}
	return 0, nil
}

// exitStatus maps a child killed by a signal to 128+signal, the way
// shells report it.
func exitStatus(err *exec.ExitError) int {
	if code := err.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}
