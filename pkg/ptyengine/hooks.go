package ptyengine

import "fmt"

// ShellKind names a supported shell for hook injection.
type ShellKind int

const (
	ShellUnknown ShellKind = iota
	ShellBash
	ShellZsh
	ShellFish
)

// DetectShellKind classifies a shell by its executable name, e.g. "/bin/zsh" -> ShellZsh.
func DetectShellKind(shellPath string) ShellKind {
	switch lastSegment(shellPath) {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// HookScript returns the shell-specific initialization script that hooks
// directory-change and preexec/postexec to emit OSC 9003/9002. Returns
// "" for shells that never send ShellReady and therefore receive no
// hooks.
func HookScript(kind ShellKind) string {
	switch kind {
	case ShellBash:
		return bashHook
	case ShellZsh:
		return zshHook
	case ShellFish:
		return fishHook
	default:
		return ""
	}
}

const bashHook = `
__tos_cwd_hook() {
  printf '\033]9003;%s\007' "$PWD"
}
__tos_preexec_hook() {
  __tos_last_command="$1"
}
__tos_postexec_hook() {
  local status=$?
  printf '\033]9002;%s;%s\007' "$__tos_last_command" "$status"
}
PROMPT_COMMAND="__tos_cwd_hook; __tos_postexec_hook${PROMPT_COMMAND:+; $PROMPT_COMMAND}"
trap '__tos_preexec_hook "$BASH_COMMAND"' DEBUG
printf '\033]9006;bash;%s\007' "$BASH_VERSION"
`

const zshHook = `
__tos_cwd_hook() {
  printf '\033]9003;%s\007' "$PWD"
}
autoload -Uz add-zsh-hook
add-zsh-hook chpwd __tos_cwd_hook
add-zsh-hook preexec __tos_preexec_hook
add-zsh-hook precmd __tos_postexec_hook
__tos_preexec_hook() {
  __tos_last_command="$1"
}
__tos_postexec_hook() {
  local status=$?
  printf '\033]9002;%s;%s\007' "$__tos_last_command" "$status"
}
printf '\033]9006;zsh;%s\007' "$ZSH_VERSION"
`

const fishHook = `
function __tos_cwd_hook --on-variable PWD
  printf '\033]9003;%s\007' "$PWD"
end
function __tos_postexec_hook --on-event fish_postexec
  printf '\033]9002;%s;%s\007' "$argv[1]" "$status"
end
printf '\033]9006;fish;%s\007' "$version"
`

// WriteHook sends the shell's hook script to the pty, if one is defined
// for the detected shell kind. A user override from h.Hooks, if present,
// takes precedence over the builtin script. Implementations must
// tolerate shells that never send ShellReady (no hooks injected) —
// callers only invoke this after observing an EventShellReady PtyEvent.
func (h *Handle) WriteHook(kind ShellKind) error {
	script := h.Hooks.Script(kind)
	if script == "" {
		return nil
	}
	return h.WriteLine(fmt.Sprintf("%s", script))
}
