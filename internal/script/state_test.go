package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undoredo/internal/history"
	"github.com/dshills/undoredo/internal/logging"
	"github.com/dshills/undoredo/internal/scene"
)

func newTestState(t *testing.T, capacity int, opts ...StateOption) (*State, *history.Container, *bytes.Buffer) {
	t.Helper()
	c := history.New(capacity)
	var out bytes.Buffer
	opts = append([]StateOption{WithOutput(&out)}, opts...)
	s, err := NewState(c, opts...)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, c, &out
}

func mustDo(t *testing.T, s *State, code string) {
	t.Helper()
	if err := s.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
}

func TestNewState(t *testing.T) {
	if _, err := NewState(nil); err == nil {
		t.Error("NewState(nil) should fail")
	}

	s, _, _ := newTestState(t, 5)
	if s.IsClosed() {
		t.Error("NewState() returned closed state")
	}
	if s.L.GetGlobal("history") == lua.LNil {
		t.Error("history module not installed")
	}
	if s.L.GetGlobal("scene") != lua.LNil {
		t.Error("scene module installed without a scene")
	}
}

func TestSandbox(t *testing.T) {
	s, _, out := newTestState(t, 5)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "io", "os", "debug"} {
		if v := s.L.GetGlobal(name); v != lua.LNil {
			t.Errorf("global %s = %v, want nil", name, v.Type())
		}
	}

	mustDo(t, s, `print("hello", 1, true)`)
	if got := out.String(); got != "hello\t1\ttrue\n" {
		t.Errorf("print output = %q", got)
	}
}

func TestDoFile(t *testing.T) {
	s, c, _ := newTestState(t, 5)
	path := filepath.Join(t.TempDir(), "session.lua")
	code := `history.record{undo=function() end, redo=function() end}`
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.DoFile(path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if err := s.DoFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("DoFile(missing) should fail")
	}
}

func TestClosedState(t *testing.T) {
	s, _, _ := newTestState(t, 5)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if err := s.DoString("x = 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString after Close = %v, want ErrStateClosed", err)
	}
}

func TestExecutionTimeout(t *testing.T) {
	s, _, _ := newTestState(t, 5, WithExecutionTimeout(50*time.Millisecond))

	err := s.DoString(`while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("DoString(loop) = %v, want ErrExecutionTimeout", err)
	}

	// The state stays usable after a timeout
	mustDo(t, s, `x = 1`)
}

func TestHistoryModule(t *testing.T) {
	s, c, out := newTestState(t, 5)

	mustDo(t, s, `
		value = 0
		for i = 1, 3 do
			value = value + 1
			history.record{
				name = "inc " .. i,
				undo = function() value = value - 1 end,
				redo = function() value = value + 1 end,
			}
		end
		history.undo()
		history.undo()
		print(value, history.undo_count(), history.redo_count(), history.can_undo(), history.can_redo())
		history.redo()
		print(value, history.undo_count(), history.redo_count())
	`)

	want := "1\t1\t2\ttrue\ttrue\n2\t2\t1\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if c.Len() != 3 || c.Cursor() != 1 {
		t.Errorf("Len()=%d Cursor()=%d, want 3 and 1", c.Len(), c.Cursor())
	}
	if e, ok := c.PeekUndo(); !ok || e.Description != "inc 2" {
		t.Errorf("PeekUndo() = %+v, %v", e, ok)
	}

	out.Reset()
	mustDo(t, s, `
		print(history.peek_undo(), history.peek_redo())
		history.redo()
		print(history.peek_redo())
		history.clear()
		print(history.peek_undo())
	`)
	if got, want := out.String(), "inc 2\tinc 3\nnil\nnil\n"; got != want {
		t.Errorf("peek output = %q, want %q", got, want)
	}
}

func TestHistoryModule_EnabledAndClear(t *testing.T) {
	s, c, out := newTestState(t, 5)

	mustDo(t, s, `
		removed = 0
		local rec = {
			undo = function() end,
			redo = function() end,
			on_remove = function() removed = removed + 1 end,
		}
		print(history.record(rec))
		history.set_enabled(false)
		print(history.enabled(), history.record(rec))
		history.set_enabled(true)
		history.record(rec)
		history.clear()
		print(removed, history.can_undo())
	`)

	want := "true\nfalse\tfalse\n2\tfalse\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if c.Len() != 0 || c.Cursor() != -1 {
		t.Errorf("Len()=%d Cursor()=%d after clear", c.Len(), c.Cursor())
	}
}

func TestHistoryRecord_Validation(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"missing undo", `history.record{redo=function() end}`, "undo is required"},
		{"redo not function", `history.record{undo=function() end, redo=5}`, "redo is a number"},
		{"on_error not function", `history.record{undo=function() end, redo=function() end, on_error="x"}`, "on_error is a string"},
		{"name not string", `history.record{undo=function() end, redo=function() end, name={}}`, "name must be a string"},
		{"not a table", `history.record(1)`, "table expected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, c, _ := newTestState(t, 5)
			err := s.DoString(tt.code)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("DoString() error = %v, want containing %q", err, tt.want)
			}
			if c.Len() != 0 {
				t.Errorf("invalid record was recorded, Len() = %d", c.Len())
			}
		})
	}
}

func TestLuaRecord_FailureIsContained(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &logs})
	s, c, out := newTestState(t, 5, WithLogger(logger))

	mustDo(t, s, `
		local function rec(name, fail)
			history.record{
				name = name,
				undo = function() if fail then error("broken " .. name, 0) end end,
				redo = function() end,
				on_remove = function() print("removed " .. name) end,
				on_error = function(msg) print("error " .. msg) end,
			}
		end
		rec("a", false)
		rec("b", true)
		rec("c", false)
		history.undo()
		history.undo()
		print(history.undo_count(), history.redo_count())
	`)

	want := "error broken b\n1\t1\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	entries := c.Entries()
	if entries[0].Description != "a" || entries[1].Description != "c" {
		t.Errorf("entries = %+v, want a and c", entries)
	}
	if !strings.Contains(logs.String(), "broken b") {
		t.Errorf("failure not logged:\n%s", logs.String())
	}
}

func TestLuaRecord_GoSideErrors(t *testing.T) {
	s, c, _ := newTestState(t, 5)
	mustDo(t, s, `
		history.record{
			name = "boom",
			undo = function() error("undo failed", 0) end,
			redo = function() end,
		}
	`)

	e, ok := c.PeekUndo()
	if !ok || e.Description != "boom" {
		t.Fatalf("PeekUndo() = %+v, %v", e, ok)
	}

	rec := &luaRecord{state: s, name: "direct"}
	f := rec.record()
	if err := f.Undo(); err != nil {
		t.Errorf("nil callback Undo() = %v, want nil", err)
	}
	rec.undo = s.L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("raised %d", 7)
		return 0
	})
	err := f.Undo()
	var cbErr *CallbackError
	if !errors.As(err, &cbErr) {
		t.Fatalf("Undo() = %v, want *CallbackError", err)
	}
	if cbErr.Record != "direct" || cbErr.Callback != "undo" {
		t.Errorf("CallbackError = %+v", cbErr)
	}
	if !strings.Contains(cbErr.Message, "raised 7") {
		t.Errorf("Message = %q", cbErr.Message)
	}
}

func TestLuaRecord_AfterClose(t *testing.T) {
	s, c, _ := newTestState(t, 5)
	mustDo(t, s, `history.record{undo=function() end, redo=function() end}`)
	_ = s.Close()

	c.Undo()
	if c.Len() != 0 {
		t.Errorf("record of a closed state should fail and be dropped, Len() = %d", c.Len())
	}
}

func TestErrorMessage(t *testing.T) {
	cb := &CallbackError{Record: "r", Callback: "redo", Message: "oops"}
	if got := errorMessage(fmt.Errorf("wrapped: %w", cb)); got != "oops" {
		t.Errorf("errorMessage(CallbackError) = %q, want oops", got)
	}
	if got := errorMessage(errors.New("plain")); got != "plain" {
		t.Errorf("errorMessage(plain) = %q", got)
	}
	if got := cb.Error(); got != "r.redo: oops" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSceneModule(t *testing.T) {
	sc := scene.New(scene.WithSeed(5))
	s, c, out := newTestState(t, 20, WithScene(sc))

	mustDo(t, s, `
		local a = scene.spawn()
		local b, kind = scene.spawn()
		print(scene.count(), type(kind))
		print(scene.delete(a) == a, scene.count())
		history.undo()
		print(scene.count())
		local id, msg = scene.delete("no-such-object")
		print(id, msg ~= nil)
	`)

	want := "2\tstring\ntrue\t1\n2\nnil\ttrue\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestSceneModule_DeleteRandom(t *testing.T) {
	sc := scene.New(scene.WithSeed(8))
	s, _, out := newTestState(t, 20, WithScene(sc))

	mustDo(t, s, `
		print(scene.delete())
		local id = scene.spawn()
		print(scene.delete() == id, scene.count())
	`)

	if got, want := out.String(), "nil\ntrue\t0\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
