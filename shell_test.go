package main

import (
	"context"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellCommand(t *testing.T) {
	cmd, err := shellCommand(context.Background(), "machinectl   shell", "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"machinectl", "shell", "web"}, cmd.Args)

	_, err = shellCommand(context.Background(), "  ", "web")
	assert.Error(t, err)
}

func TestRunShell_ExitCode(t *testing.T) {
	code, err := runShell(context.Background(), "sh -c", "exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	code, err = runShell(context.Background(), "true", "web")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRunShell_KilledBySignal(t *testing.T) {
	code, err := runShell(context.Background(), "sh -c", "kill -TERM $$")
	require.NoError(t, err)
	assert.Equal(t, 128+int(syscall.SIGTERM), code)

	code, err = runShell(context.Background(), "sh -c", "kill -KILL $$")
	require.NoError(t, err)
	assert.Equal(t, 137, code)
}

func TestRunShell_MissingCommand(t *testing.T) {
	code, err := runShell(context.Background(), "machview-no-such-command", "web")
	require.Error(t, err)
	assert.Equal(t, 1, code)
}
