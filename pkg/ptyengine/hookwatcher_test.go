package ptyengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHookWatcherNilFallsBackToBuiltin(t *testing.T) {
	var w *HookWatcher
	require.Equal(t, HookScript(ShellZsh), w.Script(ShellZsh))
}

func TestHookWatcherEmptyDirIsNoop(t *testing.T) {
	w := NewHookWatcher("")
	require.NoError(t, w.Start())
	require.Equal(t, HookScript(ShellBash), w.Script(ShellBash))
	require.NoError(t, w.Close())
}

func TestHookWatcherLoadsExistingOverrideOnStart(t *testing.T) {
	dir := t.TempDir()
	override := "echo override"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zsh.sh"), []byte(override), 0o644))

	w := NewHookWatcher(dir)
	require.NoError(t, w.Start())
	defer w.Close()

	require.Equal(t, override, w.Script(ShellZsh))
	require.Equal(t, HookScript(ShellBash), w.Script(ShellBash))
}

func TestHookWatcherPicksUpLiveChanges(t *testing.T) {
	dir := t.TempDir()
	w := NewHookWatcher(dir)
	require.NoError(t, w.Start())
	defer w.Close()

	require.Equal(t, HookScript(ShellFish), w.Script(ShellFish))

	override := "function __tos_cwd_hook; end"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fish.sh"), []byte(override), 0o644))

	require.Eventually(t, func() bool {
		return w.Script(ShellFish) == override
	}, 2*time.Second, 10*time.Millisecond)
}
