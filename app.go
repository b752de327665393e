package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cansyan/machview/logger"
	"github.com/cansyan/machview/machine"
	"github.com/cansyan/machview/ui"
	"github.com/gdamore/tcell/v2"
)

var (
	// ErrNoImages is returned from Run when the backend has nothing to show.
	ErrNoImages = errors.New("no images found")
	// ErrUnhandledEvent is returned in strict mode for unrecognized input.
	ErrUnhandledEvent = errors.New("unhandled event")
)

// Status texts shown while an action settles.
const (
	msgNoImages    = "No images found"
	msgStarting    = "starting"
	msgPoweringOff = "powering off"
	msgRebooting   = "rebooting"
	msgCopied      = "copied"
)

// action is what the loop does after an event has been dispatched.
type action int

const (
	actionNone action = iota
	actionRedraw
	actionQuit
)

// RefreshResult tells whether a refresh replaced the snapshot. When it did
// not, Reason records why and the previous snapshot stays on screen.
type RefreshResult struct {
	Updated bool
	Reason  error
}

// App owns the terminal session, the snapshot and the selection cursor.
// It runs on a single goroutine.
type App struct {
	Screen    tcell.Screen
	Log       *slog.Logger
	Palette   ui.Palette
	Clipboard Clipboard // nil disables copying

	src machine.Source
	cfg Config

	comp   *ui.Compositor
	list   *ui.Dialog
	snap   machine.Snapshot
	cursor int
	shell  string
}

func NewApp(screen tcell.Screen, src machine.Source, cfg Config) *App {
	return &App{
		Screen:  screen,
		Log:     logger.Discard(),
		Palette: ui.SelectPalette(),
		src:     src,
		cfg:     cfg,
	}
}

// ShellTarget returns the image picked for a shell, or "" if the user
// quit without asking for one.
func (a *App) ShellTarget() string { return a.shell }

// Cursor returns the index of the selected row.
func (a *App) Cursor() int { return a.cursor }

// Snapshot returns the snapshot currently displayed.
func (a *App) Snapshot() machine.Snapshot { return a.snap }

// Run takes over the terminal and processes input until the user quits.
// The terminal is restored before Run returns, on every path.
func (a *App) Run(ctx context.Context) error {
	if err := a.Screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer a.Screen.Fini()

	if err := a.setup(ctx); err != nil {
		return err
	}
	defer a.comp.Detach()
	if err := a.draw(); err != nil {
		return err
	}

	for {
		ev := a.Screen.PollEvent()
		if ev == nil {
			// screen finalized
			return nil
		}
		act, err := a.handleEvent(ctx, ev)
		if err != nil {
			return err
		}
		switch act {
		case actionQuit:
			return nil
		case actionRedraw:
			if err := a.draw(); err != nil {
				return err
			}
		}
	}
}

// setup loads the first snapshot and builds the list dialog. The screen
// must already be initialized.
func (a *App) setup(ctx context.Context) error {
	a.comp = ui.NewCompositor(a.Screen)

	res := a.refresh(ctx)
	if a.snap.Len() == 0 {
		if err := a.transient(ctx, msgNoImages); err != nil {
			return err
		}
		if res.Reason != nil {
			return fmt.Errorf("%w: %w", ErrNoImages, res.Reason)
		}
		return ErrNoImages
	}

	w, h := a.Screen.Size()
	list, err := ui.NewDialog(a.comp.Root(), w-2, h-2, 1, 1, a.shadow(), a.Palette)
	if err != nil {
		return fmt.Errorf("build list: %w", err)
	}
	a.list = list
	return nil
}

func (a *App) shadow() bool { return !a.cfg.NoShadow }

// draw repaints the list and flushes the surface tree.
func (a *App) draw() error {
	if err := ui.DrawImageList(a.list.Content(), a.snap, a.cursor, a.Palette); err != nil {
		return err
	}
	return a.comp.Render()
}

func (a *App) handleEvent(ctx context.Context, ev tcell.Event) (action, error) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		// layout is fixed at startup
		return actionNone, nil
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyUp:
			if a.cursor > 0 {
				a.cursor--
			}
			return actionRedraw, nil
		case tcell.KeyDown:
			if a.cursor < a.snap.Len()-1 {
				a.cursor++
			}
			return actionRedraw, nil
		case tcell.KeyF5:
			a.cursor = 0
			a.refresh(ctx)
			return actionRedraw, nil
		case tcell.KeyEnter:
			return a.activate(ctx)
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return actionQuit, nil
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return actionQuit, nil
			case 'r':
				return a.reboot(ctx)
			case 's':
				return a.openShell()
			case 'y':
				return a.copyName(ctx)
			}
		}
	}
	return a.unhandled(ev)
}

func (a *App) unhandled(ev tcell.Event) (action, error) {
	desc := fmt.Sprintf("%T", ev)
	if key, ok := ev.(*tcell.EventKey); ok {
		desc = key.Name()
	}
	if a.cfg.Strict {
		return actionNone, fmt.Errorf("%w: %s", ErrUnhandledEvent, desc)
	}
	a.Log.Debug("ignoring event", "event", desc)
	return actionNone, nil
}

// selected returns the image under the cursor.
func (a *App) selected() (machine.Image, bool) {
	if a.cursor < 0 || a.cursor >= a.snap.Len() {
		return machine.Image{}, false
	}
	return a.snap.At(a.cursor), true
}

// activate starts a stopped image or powers off a running one.
func (a *App) activate(ctx context.Context) (action, error) {
	img, ok := a.selected()
	if !ok {
		return actionNone, nil
	}
	if img.Running() {
		return a.perform(ctx, img.Name, msgPoweringOff, func(ctx context.Context) error {
			return a.src.Stop(ctx, img.Name, machine.SignalPowerOff)
		})
	}
	return a.perform(ctx, img.Name, msgStarting, func(ctx context.Context) error {
		return a.src.Start(ctx, img.Name)
	})
}

func (a *App) reboot(ctx context.Context) (action, error) {
	img, ok := a.selected()
	if !ok || !img.Running() {
		return actionNone, nil
	}
	return a.perform(ctx, img.Name, msgRebooting, func(ctx context.Context) error {
		return a.src.Stop(ctx, img.Name, machine.SignalReboot)
	})
}

func (a *App) openShell() (action, error) {
	img, ok := a.selected()
	if !ok || !img.Running() {
		return actionNone, nil
	}
	a.shell = img.Name
	return actionQuit, nil
}

func (a *App) copyName(ctx context.Context) (action, error) {
	img, ok := a.selected()
	if !ok {
		return actionNone, nil
	}
	if a.Clipboard == nil {
		a.Log.Debug("copy skipped, no clipboard")
		return actionNone, nil
	}
	if err := a.Clipboard.Copy(img.Name); err != nil {
		a.Log.Warn("copy failed", "image", img.Name, "err", err)
		return actionNone, nil
	}
	if err := a.transient(ctx, msgCopied); err != nil {
		return actionNone, err
	}
	return actionRedraw, nil
}

// perform issues a state-changing call, keeps a status dialog up for the
// configured pause and refreshes. The cursor is kept.
func (a *App) perform(ctx context.Context, name, status string, call func(context.Context) error) (action, error) {
	cctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	err := call(cctx)
	cancel()
	if err != nil {
		a.Log.Warn("action failed", "image", name, "action", status, "err", err)
	} else {
		a.Log.Info("action issued", "image", name, "action", status)
	}

	if err := a.transient(ctx, status); err != nil {
		return actionNone, err
	}
	a.refresh(ctx)
	return actionRedraw, nil
}

// transient shows a centered message, holds it for the pause and removes
// it again.
func (a *App) transient(ctx context.Context, text string) error {
	d, err := ui.NewMessageDialog(a.comp.Root(), text, a.shadow(), a.Palette)
	if err != nil {
		return err
	}
	defer d.Destroy()
	if err := a.comp.Render(); err != nil {
		return err
	}
	pause(ctx, a.cfg.Pause)
	return nil
}

// refresh reloads the snapshot. On failure the old snapshot is kept.
func (a *App) refresh(ctx context.Context) RefreshResult {
	cctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	snap, err := machine.Load(cctx, a.src)
	if err != nil {
		err = fmt.Errorf("refresh: %w", err)
		a.Log.Warn("snapshot unchanged", "err", err)
		return RefreshResult{Reason: err}
	}
	a.snap = snap
	if a.cursor >= snap.Len() {
		a.cursor = max(snap.Len()-1, 0)
	}
	a.Log.Debug("snapshot refreshed", "images", snap.Len(), "running", snap.Running())
	return RefreshResult{Updated: true}
}

// pause blocks for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
