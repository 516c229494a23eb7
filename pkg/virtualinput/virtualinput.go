// Package virtualinput injects synthetic pointer and keyboard events into
// the Wayland compositor on behalf of accessibility input sources (eye
// tracking dwell-click, switch scanning) that have no native Wayland
// client of their own to emit real events from.
package virtualinput

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/wayland-virtual-input-go/virtual_keyboard"
	"github.com/bnema/wayland-virtual-input-go/virtual_pointer"
)

// Injector owns one virtual pointer and one virtual keyboard device,
// both created against the zwlr_virtual_pointer_v1/zwp_virtual_keyboard_v1
// protocols the compositor exposes — no /dev/uinput or root privileges
// required.
type Injector struct {
	mu sync.Mutex

	pointerManager  *virtual_pointer.VirtualPointerManager
	pointer         *virtual_pointer.VirtualPointer
	keyboardManager *virtual_keyboard.VirtualKeyboardManager
	keyboard        *virtual_keyboard.VirtualKeyboard

	screenWidth, screenHeight int
	currentX, currentY        float64
	closed                    bool
}

// New creates the virtual pointer and keyboard devices against the
// running compositor. screenWidth/screenHeight size the coordinate space
// Click's normalized (x, y) arguments are resolved against.
func New(screenWidth, screenHeight int) (*Injector, error) {
	ctx := context.Background()

	pointerManager, err := virtual_pointer.NewVirtualPointerManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("create virtual pointer manager: %w", err)
	}
	pointer, err := pointerManager.CreatePointer()
	if err != nil {
		pointerManager.Close()
		return nil, fmt.Errorf("create virtual pointer: %w", err)
	}

	keyboardManager, err := virtual_keyboard.NewVirtualKeyboardManager(ctx)
	if err != nil {
		pointer.Close()
		pointerManager.Close()
		return nil, fmt.Errorf("create virtual keyboard manager: %w", err)
	}
	keyboard, err := keyboardManager.CreateKeyboard()
	if err != nil {
		keyboardManager.Close()
		pointer.Close()
		pointerManager.Close()
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}

	return &Injector{
		pointerManager:  pointerManager,
		pointer:         pointer,
		keyboardManager: keyboardManager,
		keyboard:        keyboard,
		screenWidth:     screenWidth,
		screenHeight:    screenHeight,
		currentX:        float64(screenWidth) / 2,
		currentY:        float64(screenHeight) / 2,
	}, nil
}

// moveTo computes the relative movement needed to reach normalized (x,
// y) from the tracked position; the virtual pointer protocol only
// supports relative motion.
func moveTo(curX, curY, x, y float64, w, h int) (dx, dy, newX, newY float64) {
	targetX := x * float64(w)
	targetY := y * float64(h)
	return targetX - curX, targetY - curY, targetX, targetY
}

// Click moves the virtual pointer to a normalized (x, y) position — both
// in [0, 1] — and fires a left-button press/release, the synthetic
// action a dwell-click or switch-scan selection resolves to.
func (in *Injector) Click(x, y float64) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}

	dx, dy, newX, newY := moveTo(in.currentX, in.currentY, x, y, in.screenWidth, in.screenHeight)
	if dx != 0 || dy != 0 {
		in.pointer.MoveRelative(dx, dy)
	}
	in.currentX, in.currentY = newX, newY

	in.pointer.Button(time.Now(), virtual_pointer.BTN_LEFT, virtual_pointer.BUTTON_STATE_PRESSED)
	in.pointer.Frame()
	in.pointer.Button(time.Now(), virtual_pointer.BTN_LEFT, virtual_pointer.BUTTON_STATE_RELEASED)
	in.pointer.Frame()
	return nil
}

// KeyTap presses and releases a Linux evdev keycode, the action an
// accessibility switch's "select current element" binding resolves to
// when the focused element is a key rather than a screen position.
func (in *Injector) KeyTap(evdevCode uint32) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	now := time.Now()
	if err := in.keyboard.Key(now, evdevCode, virtual_keyboard.KeyStatePressed); err != nil {
		return err
	}
	return in.keyboard.Key(now, evdevCode, virtual_keyboard.KeyStateReleased)
}

// Close releases every virtual input device; safe to call more than
// once.
func (in *Injector) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	in.closed = true

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(in.keyboard.Close())
	record(in.keyboardManager.Close())
	record(in.pointer.Close())
	record(in.pointerManager.Close())
	return firstErr
}
