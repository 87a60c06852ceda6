package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undoredo/internal/records"
)

const defaultRecordName = "lua record"

// luaRecord holds the Lua callbacks of a scripted record.
type luaRecord struct {
	state *State
	name  string

	undo     *lua.LFunction
	redo     *lua.LFunction
	onRemove *lua.LFunction
	onError  *lua.LFunction
}

// newLuaRecord builds a record from a table of the form
// {undo=fn, redo=fn, on_remove=fn, on_error=fn, name=str}.
func newLuaRecord(s *State, L *lua.LState, tbl *lua.LTable) (*luaRecord, error) {
	r := &luaRecord{state: s, name: defaultRecordName}

	switch name := L.GetField(tbl, "name").(type) {
	case lua.LString:
		if name != "" {
			r.name = string(name)
		}
	case *lua.LNilType:
	default:
		return nil, fmt.Errorf("name must be a string, got %s", name.Type())
	}

	fields := []struct {
		key      string
		dst      **lua.LFunction
		required bool
	}{
		{"undo", &r.undo, true},
		{"redo", &r.redo, true},
		{"on_remove", &r.onRemove, false},
		{"on_error", &r.onError, false},
	}
	for _, f := range fields {
		fn, err := funcField(L, tbl, f.key, f.required)
		if err != nil {
			return nil, err
		}
		*f.dst = fn
	}
	return r, nil
}

func funcField(L *lua.LState, tbl *lua.LTable, key string, required bool) (*lua.LFunction, error) {
	switch v := L.GetField(tbl, key).(type) {
	case *lua.LFunction:
		return v, nil
	case *lua.LNilType:
		if required {
			return nil, fmt.Errorf("%w: %s is required", ErrNotFunction, key)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotFunction, key, v.Type())
	}
}

func (r *luaRecord) call(callback string, fn *lua.LFunction, args ...lua.LValue) error {
	if fn == nil {
		return nil
	}
	if r.state.closed.Load() {
		return ErrStateClosed
	}
	err := r.state.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	if err != nil {
		return newCallbackError(r.name, callback, err)
	}
	return nil
}

// record returns the history record that runs the callbacks.
func (r *luaRecord) record() *records.Func {
	return &records.Func{
		Name:       r.name,
		UndoFunc:   func() error { return r.call("undo", r.undo) },
		RedoFunc:   func() error { return r.call("redo", r.redo) },
		RemoveFunc: func() error { return r.call("on_remove", r.onRemove) },
		ErrorFunc:  r.handleError,
	}
}

// handleError hands the failure message to on_error. Errors raised by
// on_error itself are logged.
func (r *luaRecord) handleError(err error) {
	r.state.logger.Debug("record %q failed: %v", r.name, err)
	if r.onError == nil || r.state.closed.Load() {
		return
	}
	if cbErr := r.call("on_error", r.onError, lua.LString(errorMessage(err))); cbErr != nil {
		r.state.logger.Warn("on_error callback failed: %v", cbErr)
	}
}
