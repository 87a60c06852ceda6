package ui

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/undoredo/internal/config"
	"github.com/dshills/undoredo/internal/history"
	"github.com/dshills/undoredo/internal/logging"
	"github.com/dshills/undoredo/internal/records"
	"github.com/dshills/undoredo/internal/scene"
)

// Action is a user command bound to a key and a button.
type Action int

// Actions in button bar order.
const (
	ActionUndo Action = iota
	ActionRedo
	ActionSpawn
	ActionDelete
	ActionClear
	ActionToggle
	ActionQuit
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionUndo:
		return "undo"
	case ActionRedo:
		return "redo"
	case ActionSpawn:
		return "spawn"
	case ActionDelete:
		return "delete"
	case ActionClear:
		return "clear"
	case ActionToggle:
		return "toggle"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// App is the terminal demo: a scene of objects whose spawns and deletes
// are recorded in a container and can be undone and redone.
type App struct {
	screen  tcell.Screen
	history *history.Synchronized
	scene   *scene.Scene
	logger  *logging.Logger

	mu      sync.Mutex
	status  string
	buttons []button
	pressed bool

	dirty atomic.Bool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the application logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an App drawing on screen. The screen is initialized by Run;
// callers driving HandleEvent directly must initialize it themselves.
func New(screen tcell.Screen, h *history.Synchronized, sc *scene.Scene, opts ...Option) *App {
	a := &App{
		screen:  screen,
		history: h,
		scene:   sc,
		logger:  logging.Null(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithComponent("ui")
	a.subscribe()
	sc.OnChange(a.invalidate)
	return a
}

// subscribe attaches the status handlers to the container's three
// notification channels. Clear resets the channels, so it runs again after
// every clear.
func (a *App) subscribe() {
	a.history.Do(func(c *history.Container) {
		c.OnEndRecord().Add(a.notify("recorded"))
		c.OnEndUndo().Add(a.notify("undone"))
		c.OnEndRedo().Add(a.notify("redone"))
	})
}

func (a *App) notify(verb string) history.Handler {
	return func(r history.Record) {
		a.setStatus(verb + " " + history.Describe(r))
	}
}

func (a *App) setStatus(s string) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
	a.invalidate()
}

// invalidate marks the screen for redrawing after the current event.
func (a *App) invalidate() {
	a.dirty.Store(true)
}

// Status returns the last status line message.
func (a *App) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Run initializes the screen and processes events until the user quits
// or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return err
	}
	defer a.screen.Fini()

	a.screen.EnableMouse()
	a.screen.HideCursor()
	a.Draw()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(ActionQuit))
		case <-done:
		}
	}()

	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !a.HandleEvent(ev) {
			return nil
		}
	}
}

// HandleEvent processes one event and redraws if anything changed. It
// returns false when the application should exit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		action, ok := keyAction(e)
		if !ok {
			return true
		}
		if action == ActionQuit {
			return false
		}
		a.Perform(action)

	case *tcell.EventMouse:
		x, y := e.Position()
		down := e.Buttons()&tcell.Button1 != 0
		a.mu.Lock()
		press := down && !a.pressed
		a.pressed = down
		a.mu.Unlock()
		if press {
			if action, ok := a.buttonAt(x, y); ok {
				a.Perform(action)
			}
		}

	case *tcell.EventResize:
		a.screen.Sync()
		a.invalidate()

	case *tcell.EventInterrupt:
		if action, ok := e.Data().(Action); ok && action == ActionQuit {
			return false
		}
	}

	if a.dirty.Swap(false) {
		a.Draw()
	}
	return true
}

func keyAction(e *tcell.EventKey) (Action, bool) {
	switch e.Key() {
	case tcell.KeyCtrlZ:
		return ActionUndo, true
	case tcell.KeyCtrlY:
		return ActionRedo, true
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit, true
	case tcell.KeyRune:
		if e.Modifiers()&tcell.ModCtrl != 0 {
			switch e.Rune() {
			case 'z', 'Z':
				return ActionUndo, true
			case 'y', 'Y':
				return ActionRedo, true
			}
			return 0, false
		}
		switch e.Rune() {
		case 'u', 'U':
			return ActionUndo, true
		case 'r', 'R':
			return ActionRedo, true
		case 's', 'S':
			return ActionSpawn, true
		case 'd', 'D':
			return ActionDelete, true
		case 'c', 'C':
			return ActionClear, true
		case 'e', 'E':
			return ActionToggle, true
		case 'q', 'Q':
			return ActionQuit, true
		}
	}
	return 0, false
}

// Perform runs an action against the container and scene.
func (a *App) Perform(action Action) {
	a.logger.Debug("action %s", action)

	switch action {
	case ActionUndo:
		if !a.history.Status().CanUndo {
			a.setStatus("nothing to undo")
			return
		}
		a.history.Undo()

	case ActionRedo:
		if !a.history.Status().CanRedo {
			a.setStatus("nothing to redo")
			return
		}
		a.history.Redo()

	case ActionSpawn:
		a.history.Do(func(c *history.Container) {
			records.Spawn(a.scene, c, a.logger)
		})

	case ActionDelete:
		var ok bool
		a.history.Do(func(c *history.Container) {
			_, ok = records.DeleteRandom(a.scene, c, a.logger)
		})
		if !ok {
			a.setStatus("nothing to delete")
		}

	case ActionClear:
		a.history.Clear()
		a.subscribe()
		a.setStatus("history cleared")

	case ActionToggle:
		enabled := !a.history.Enabled()
		a.history.SetEnabled(enabled)
		a.setStatus("recording " + onOff(enabled))
	}
}

// ApplyConfig applies the settings of a reloaded configuration that can
// change at runtime. It is safe to call from any goroutine.
func (a *App) ApplyConfig(old, updated *config.Config) {
	a.history.SetEnabled(updated.History.Enabled)
	a.logger.SetLevel(updated.LogLevel())

	if old != nil && old.History.Capacity != updated.History.Capacity {
		a.logger.Warn("history.capacity changed to %d, restart to apply", updated.History.Capacity)
	}
	a.setStatus("configuration reloaded")
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
