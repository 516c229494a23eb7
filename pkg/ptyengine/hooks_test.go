package ptyengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectShellKind(t *testing.T) {
	require.Equal(t, ShellBash, DetectShellKind("/bin/bash"))
	require.Equal(t, ShellZsh, DetectShellKind("/usr/bin/zsh"))
	require.Equal(t, ShellFish, DetectShellKind("/usr/local/bin/fish"))
	require.Equal(t, ShellUnknown, DetectShellKind("/bin/dash"))
}

func TestHookScriptEmptyForUnknownShell(t *testing.T) {
	require.Empty(t, HookScript(ShellUnknown))
	require.NotEmpty(t, HookScript(ShellBash))
	require.NotEmpty(t, HookScript(ShellZsh))
	require.NotEmpty(t, HookScript(ShellFish))
}
