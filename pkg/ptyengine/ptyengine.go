// Package ptyengine manages per-application shell subprocesses: forking a
// pseudoterminal, execing the configured shell with the TOS shell-API
// environment, and relaying bytes through the OSC parser.
package ptyengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/tos-desktop/tos/pkg/oscparser"
	"github.com/tos-desktop/tos/pkg/toserr"
)

const readChunkSize = 4096

// Config describes how to spawn a shell for one application surface.
type Config struct {
	Shell   string
	Args    []string
	Dir     string
	Env     []string
	Cols    uint16
	Rows    uint16
	Version string
}

// PtyEventKind discriminates an event emitted by the reader task.
type PtyEventKind int

const (
	EventOutput PtyEventKind = iota
	EventOsc
	EventProcessExited
	EventError
)

// PtyEvent is emitted by the reader task for the owning session to
// translate into a SemanticEvent.
type PtyEvent struct {
	Kind     PtyEventKind
	Output   []byte
	Osc      oscparser.Event
	ExitCode int
	Err      error
}

// Handle is one spawned shell's PTY lifecycle. A Handle is marked dead
// once its reader sees EOF or a read error, or once it is closed; further
// commands on a dead handle no-op rather than panicking. A fork/exec
// failure is returned as an error by Spawn, which then yields no Handle
// and emits no Error event.
type Handle struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	master *os.File
	parser *oscparser.Parser
	events chan PtyEvent

	ctx    context.Context
	cancel context.CancelFunc

	// Hooks resolves shell hook scripts, preferring a live user override
	// over the builtin. Nil uses the builtin HookScript unconditionally.
	Hooks *HookWatcher

	wg     conc.WaitGroup
	dead   bool
	closed bool
}

// Spawn forks a pseudoterminal and execs cfg.Shell with the TOS shell-API
// environment (TOS_SHELL_API=1, TERM=xterm-256color, TOS_VERSION). The
// returned Handle's Events channel is closed once the reader task exits.
func Spawn(ctx context.Context, cfg Config) (*Handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	shell := cfg.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, shell, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.Env = append(append([]string{}, cfg.Env...),
		"TOS_SHELL_API=1",
		"TERM=xterm-256color",
		fmt.Sprintf("TOS_VERSION=%s", cfg.Version),
	)

	master, err := pty.Start(cmd)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("spawn pty: %w: %v", toserr.ErrExecutionFailed, err)
	}

	if cfg.Cols > 0 && cfg.Rows > 0 {
		_ = pty.Setsize(master, &pty.Winsize{Rows: cfg.Rows, Cols: cfg.Cols})
	}

	h := &Handle{
		cmd:    cmd,
		master: master,
		parser: oscparser.New(),
		events: make(chan PtyEvent, 256),
		ctx:    ctx,
		cancel: cancel,
	}

	h.wg.Go(h.readLoop)

	return h, nil
}

// Events returns the channel of events produced by the reader task.
func (h *Handle) Events() <-chan PtyEvent {
	return h.events
}

func (h *Handle) readLoop() {
	defer close(h.events)

	buf := make([]byte, readChunkSize)
	for {
		select {
		case <-h.ctx.Done():
			return
		default:
		}

		n, err := h.master.Read(buf)
		if n > 0 {
			h.parser.Feed(buf[:n])
			clean, oscEvents := h.parser.Drain()
			if len(clean) > 0 {
				h.emit(PtyEvent{Kind: EventOutput, Output: []byte(clean)})
			}
			for _, oe := range oscEvents {
				h.emit(PtyEvent{Kind: EventOsc, Osc: oe})
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				h.emit(PtyEvent{Kind: EventProcessExited, ExitCode: 0})
			} else {
				log.Debug().Err(err).Msg("pty read error")
				h.emit(PtyEvent{Kind: EventProcessExited, ExitCode: 0})
			}
			h.markDead()
			return
		}
	}
}

func (h *Handle) emit(e PtyEvent) {
	select {
	case h.events <- e:
	case <-h.ctx.Done():
	}
}

func (h *Handle) markDead() {
	h.mu.Lock()
	h.dead = true
	h.mu.Unlock()
}

func (h *Handle) isDead() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dead
}

// Write sends raw bytes to the shell.
func (h *Handle) Write(raw []byte) error {
	if h.isDead() {
		return nil
	}
	_, err := h.master.Write(raw)
	return err
}

// WriteLine sends a line terminated with \n.
func (h *Handle) WriteLine(line string) error {
	return h.Write([]byte(line + "\n"))
}

// Resize issues the terminal-window-size ioctl.
func (h *Handle) Resize(cols, rows uint16) error {
	if h.isDead() {
		return nil
	}
	return pty.Setsize(h.master, &pty.Winsize{Rows: rows, Cols: cols})
}

// Signal sends a signal to the child process.
func (h *Handle) Signal(sig os.Signal) error {
	if h.isDead() || h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Signal(sig)
}

// InjectOsc writes a `\x1b]1337;key=value\x07` OSC frame to the shell (compositor-to-shell
// direction is out of band from the reader/parser, used for e.g. context
// responses).
func (h *Handle) InjectOsc(key, value string) error {
	return h.Write([]byte(fmt.Sprintf("\x1b]1337;%s=%s\x07", key, value)))
}

// Close sends SIGTERM to the child and closes the master fd. Safe to call
// more than once.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.dead = true
	h.mu.Unlock()

	if h.cmd.Process != nil {
		_ = h.cmd.Process.Signal(syscall.SIGTERM)
	}
	h.cancel()
	err := h.master.Close()

	if rec := h.wg.WaitAndRecover(); rec != nil {
		log.Error().Interface("recovered", rec).Msg("pty reader goroutine panicked")
	}
	return err
}
