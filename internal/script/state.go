package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undoredo/internal/history"
	"github.com/dshills/undoredo/internal/logging"
	"github.com/dshills/undoredo/internal/scene"
)

// DefaultExecutionTimeout bounds a single DoFile or DoString call.
const DefaultExecutionTimeout = 5 * time.Second

// State is a sandboxed Lua runtime bound to a record container.
//
// gopher-lua's LState is not goroutine-safe. Records created by a script
// call back into the same LState when the container undoes or redoes them,
// so the container and the State must be driven from one goroutine, or
// behind one external lock.
type State struct {
	L *lua.LState

	mu sync.Mutex

	history *history.Container
	scene   *scene.Scene
	logger  *logging.Logger
	output  io.Writer
	timeout time.Duration

	closed atomic.Bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithScene exposes sc to scripts as the scene module.
func WithScene(sc *scene.Scene) StateOption {
	return func(s *State) {
		s.scene = sc
	}
}

// WithLogger sets the logger used by the state and its records.
func WithLogger(l *logging.Logger) StateOption {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOutput redirects the Lua print function.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		if w != nil {
			s.output = w
		}
	}
}

// WithExecutionTimeout sets the timeout for DoFile and DoString.
// Zero disables the timeout.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// NewState creates a new sandboxed Lua state recording into c.
func NewState(c *history.Container, opts ...StateOption) (*State, error) {
	if c == nil {
		return nil, errors.New("script: nil container")
	}

	s := &State{
		history: c,
		logger:  logging.Null(),
		output:  os.Stdout,
		timeout: DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("script")

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	s.L = L

	openSafeLibraries(L)
	installSandbox(L, s.output)

	s.registerModule("history", s.historyFuncs())
	if s.scene != nil {
		s.registerModule("scene", s.sceneFuncs())
	}
	return s, nil
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	return s.do(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua chunk.
func (s *State) DoString(code string) error {
	return s.do(func() error {
		return s.L.DoString(code)
	})
}

func (s *State) do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrStateClosed
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	err := doWithRecovery(fn)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
	}
	return err
}

// doWithRecovery executes a function with panic recovery.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// registerModule registers a global table with the given functions.
func (s *State) registerModule(name string, funcs map[string]lua.LGFunction) {
	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed.Load()
}

// Close releases the Lua state. Records created by the state fail with
// ErrStateClosed afterwards.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Swap(true) {
		return nil
	}
	s.L.Close()
	return nil
}
