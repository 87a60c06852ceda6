package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undoredo/internal/history"
	"github.com/dshills/undoredo/internal/records"
)

// historyFuncs returns the history module bound to the state's container.
func (s *State) historyFuncs() map[string]lua.LGFunction {
	c := s.history
	return map[string]lua.LGFunction{
		"record": func(L *lua.LState) int {
			rec, err := newLuaRecord(s, L, L.CheckTable(1))
			if err != nil {
				L.ArgError(1, err.Error())
				return 0
			}
			recorded := c.Enabled()
			c.Record(rec.record())
			L.Push(lua.LBool(recorded))
			return 1
		},
		"undo": func(L *lua.LState) int {
			c.Undo()
			return 0
		},
		"redo": func(L *lua.LState) int {
			c.Redo()
			return 0
		},
		"clear": func(L *lua.LState) int {
			c.Clear()
			return 0
		},
		"can_undo": func(L *lua.LState) int {
			L.Push(lua.LBool(c.CanUndo()))
			return 1
		},
		"can_redo": func(L *lua.LState) int {
			L.Push(lua.LBool(c.CanRedo()))
			return 1
		},
		"peek_undo": func(L *lua.LState) int {
			return pushEntry(L, c.PeekUndo)
		},
		"peek_redo": func(L *lua.LState) int {
			return pushEntry(L, c.PeekRedo)
		},
		"undo_count": func(L *lua.LState) int {
			L.Push(lua.LNumber(c.UndoCount()))
			return 1
		},
		"redo_count": func(L *lua.LState) int {
			L.Push(lua.LNumber(c.RedoCount()))
			return 1
		},
		"set_enabled": func(L *lua.LState) int {
			c.SetEnabled(L.CheckBool(1))
			return 0
		},
		"enabled": func(L *lua.LState) int {
			L.Push(lua.LBool(c.Enabled()))
			return 1
		},
	}
}

// pushEntry pushes the description of the peeked record, or nil.
func pushEntry(L *lua.LState, peek func() (history.Entry, bool)) int {
	e, ok := peek()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(e.Description))
	return 1
}

// sceneFuncs returns the scene module. Spawns and deletes are recorded.
func (s *State) sceneFuncs() map[string]lua.LGFunction {
	sc := s.scene
	return map[string]lua.LGFunction{
		"spawn": func(L *lua.LState) int {
			obj := records.Spawn(sc, s.history, s.logger)
			L.Push(lua.LString(obj.ID))
			L.Push(lua.LString(obj.Kind.String()))
			return 2
		},
		"delete": func(L *lua.LState) int {
			if L.GetTop() == 0 || L.Get(1) == lua.LNil {
				obj, ok := records.DeleteRandom(sc, s.history, s.logger)
				if !ok {
					L.Push(lua.LNil)
					return 1
				}
				L.Push(lua.LString(obj.ID))
				return 1
			}
			obj, err := records.Delete(sc, s.history, L.CheckString(1), s.logger)
			if err != nil {
				L.Push(lua.LNil)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			L.Push(lua.LString(obj.ID))
			return 1
		},
		"count": func(L *lua.LState) int {
			L.Push(lua.LNumber(sc.ActiveCount()))
			return 1
		},
	}
}
