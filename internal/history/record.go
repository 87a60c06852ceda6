package history

import (
	"fmt"
)

// Record is a reversible unit of work owned by a Container.
//
// The container calls these methods one at a time and never concurrently
// for the same record. Undo, Redo and OnRemove report failure either by
// returning an error or by panicking; both are routed to OnError.
type Record interface {
	// Undo reverses the effect applied by the record.
	Undo() error

	// Redo re-applies the record's effect.
	Redo() error

	// OnRemove is called exactly once when the record is permanently
	// evicted from history. It is not called for records evicted because
	// Undo or Redo failed.
	OnRemove() error

	// OnError receives failures from Undo, Redo and OnRemove.
	// Panics raised here are not recovered by the container.
	OnError(err error)
}

// Describer is optionally implemented by records that can describe
// themselves for display.
type Describer interface {
	Description() string
}

// Op identifies the record operation that failed.
type Op string

// Record operations invoked by the container.
const (
	OpUndo   Op = "undo"
	OpRedo   Op = "redo"
	OpRemove Op = "remove"
)

// PanicError wraps a value recovered from a panicking record operation.
type PanicError struct {
	Op    Op
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("record %s panicked: %v", e.Op, e.Value)
}

// Unwrap returns the recovered value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// call runs fn and converts a panic into a *PanicError.
func call(op Op, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Op: op, Value: r}
		}
	}()
	return fn()
}

// Describe returns a human-readable label for a record: its Description
// when it implements Describer, otherwise its type name.
func Describe(r Record) string {
	if d, ok := r.(Describer); ok {
		return d.Description()
	}
	return fmt.Sprintf("%T", r)
}
