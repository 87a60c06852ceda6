package history

import "sync"

// Synchronized serializes access to a Container with a mutex held for the
// whole of each call, including record callbacks and signal handlers.
//
// Handlers and record methods must not call back into the same
// Synchronized value; the mutex is not reentrant.
type Synchronized struct {
	mu sync.Mutex
	c  *Container
}

// NewSynchronized wraps c.
func NewSynchronized(c *Container) *Synchronized {
	return &Synchronized{c: c}
}

// Do runs fn with exclusive access to the wrapped container.
func (s *Synchronized) Do(fn func(c *Container)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.c)
}

// Record adds r to history.
func (s *Synchronized) Record(r Record) {
	s.Do(func(c *Container) { c.Record(r) })
}

// Undo reverses the record at the cursor.
func (s *Synchronized) Undo() {
	s.Do(func(c *Container) { c.Undo() })
}

// Redo re-applies the record after the cursor.
func (s *Synchronized) Redo() {
	s.Do(func(c *Container) { c.Redo() })
}

// Clear removes every record and subscription.
func (s *Synchronized) Clear() {
	s.Do(func(c *Container) { c.Clear() })
}

// SetEnabled opens or closes the gate on Record, Undo and Redo.
func (s *Synchronized) SetEnabled(enabled bool) {
	s.Do(func(c *Container) { c.SetEnabled(enabled) })
}

// Enabled reports whether Record, Undo and Redo are active.
func (s *Synchronized) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Enabled()
}

// Status is a consistent snapshot of a container's counters.
type Status struct {
	CanUndo   bool
	CanRedo   bool
	UndoCount int
	RedoCount int
	Len       int
	Enabled   bool
}

// Status returns the container's counters read under one lock.
func (s *Synchronized) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatusOf(s.c)
}

// StatusOf reads the counters of c.
func StatusOf(c *Container) Status {
	return Status{
		CanUndo:   c.CanUndo(),
		CanRedo:   c.CanRedo(),
		UndoCount: c.UndoCount(),
		RedoCount: c.RedoCount(),
		Len:       c.Len(),
		Enabled:   c.Enabled(),
	}
}
