// Package script drives a record container from Lua.
//
// A State is a sandboxed gopher-lua runtime. Only the base, table, string
// and math libraries are opened, and functions that load code from disk
// or strings are removed. Two modules are installed:
//
//	history.record{undo=fn, redo=fn, on_remove=fn, on_error=fn, name="..."}
//	history.undo()  history.redo()  history.clear()
//	history.can_undo()  history.can_redo()
//	history.peek_undo()  history.peek_redo()  -- name, or nil
//	history.undo_count()  history.redo_count()
//	history.set_enabled(b)  history.enabled()
//
//	scene.spawn()        -- id, kind
//	scene.delete([id])   -- id, or nil and a message
//	scene.count()
//
// The scene module is only present when the state was created WithScene.
//
// A Lua error raised inside undo, redo or on_remove is returned to the
// container as a *CallbackError, so it is contained like any other record
// failure; on_error then receives the error message as a string.
//
//	state, err := script.NewState(container, script.WithScene(sc))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//	err = state.DoFile("session.lua")
package script
