package history

import (
	"time"

	"github.com/dshills/undoredo/internal/logging"
)

// Unbounded is the capacity value for a container that never evicts.
// Any negative capacity behaves the same way.
const Unbounded = -1

// entry wraps a record with metadata.
type entry struct {
	record     Record
	recordedAt time.Time
}

// Entry provides read-only info about a record held by a container.
type Entry struct {
	Index       int       // Position in history, 0 is oldest
	Description string    // Describer output or the record's type name
	Applied     bool      // True when the record is on the undo side of the cursor
	RecordedAt  time.Time // When the record was added
}

// Container owns an ordered history of records and a cursor into it.
//
// Records at or below the cursor are applied and can be undone; records
// above it have been undone and can be redone. A cursor of -1 means
// nothing is applied.
//
// Container is not safe for concurrent use. Wrap it in Synchronized when
// several goroutines need to reach the same history.
type Container struct {
	capacity int
	entries  []entry
	cursor   int
	enabled  bool

	onEndRecord *Signal
	onEndUndo   *Signal
	onEndRedo   *Signal

	logger *logging.Logger
}

// New creates a container that retains at most capacity records.
// A negative capacity means unbounded.
func New(capacity int, opts ...Option) *Container {
	if capacity < 0 {
		capacity = Unbounded
	}
	c := &Container{
		capacity:    capacity,
		cursor:      -1,
		enabled:     true,
		onEndRecord: newSignal("record"),
		onEndUndo:   newSignal("undo"),
		onEndRedo:   newSignal("redo"),
		logger:      logging.Null(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record adds r to history as the newest applied record.
//
// Any redo branch is discarded first, each discarded record receiving
// OnRemove in index order. If the container is bounded and now holds more
// than capacity records, the oldest record is evicted. The end-of-record
// signal fires with r afterwards.
//
// Record is a no-op while the container is disabled or r is nil.
func (c *Container) Record(r Record) {
	if !c.enabled || r == nil {
		return
	}

	c.record(r)
	c.onEndRecord.emit(r)
}

func (c *Container) record(r Record) {
	if start := c.cursor + 1; start < len(c.entries) {
		removed := c.detach(start, len(c.entries)-start)
		c.logger.Debug("discarding %d redo records", len(removed))
		c.release(removed)
	}

	c.entries = append(c.entries, entry{record: r, recordedAt: time.Now()})

	if c.capacity >= 0 && len(c.entries) > c.capacity {
		removed := c.detach(0, 1)
		c.logger.Debug("capacity %d reached, evicting %s", c.capacity, Describe(removed[0].record))
		c.release(removed)
	}

	c.cursor = len(c.entries) - 1
	c.logger.Debug("recorded %s (undo=%d redo=%d)", Describe(r), c.UndoCount(), c.RedoCount())
}

// Undo reverses the record at the cursor and moves the cursor back.
//
// The cursor moves before the record runs and is never restored. If the
// record fails, it receives OnError and is dropped from history without
// an OnRemove call. The end-of-undo signal fires with the record in both
// cases.
//
// Undo is a no-op while the container is disabled or nothing can be undone.
func (c *Container) Undo() {
	if !c.enabled || !c.CanUndo() {
		return
	}

	index := c.cursor
	r := c.entries[index].record
	c.cursor--

	if err := call(OpUndo, r.Undo); err != nil {
		c.fail(r, index, err)
	} else {
		c.logger.Debug("undid %s", Describe(r))
	}

	c.onEndUndo.emit(r)
}

// Redo re-applies the record after the cursor and moves the cursor forward.
//
// Failure handling mirrors Undo. After a failed redo the cursor keeps its
// advanced position, clamped to the end of history.
//
// Redo is a no-op while the container is disabled or nothing can be redone.
func (c *Container) Redo() {
	if !c.enabled || !c.CanRedo() {
		return
	}

	c.cursor++
	index := c.cursor
	r := c.entries[index].record

	if err := call(OpRedo, r.Redo); err != nil {
		c.fail(r, index, err)
		if c.cursor > len(c.entries)-1 {
			c.cursor = len(c.entries) - 1
		}
	} else {
		c.logger.Debug("redid %s", Describe(r))
	}

	c.onEndRedo.emit(r)
}

// Clear removes every record, calling OnRemove on each, resets the cursor
// and drops all subscriptions on the three signals.
// Clear is not affected by the enabled gate.
func (c *Container) Clear() {
	removed := c.detach(0, len(c.entries))
	c.cursor = -1
	if len(removed) > 0 {
		c.logger.Debug("clearing %d records", len(removed))
	}
	c.release(removed)

	c.onEndRecord.Reset()
	c.onEndUndo.Reset()
	c.onEndRedo.Reset()
}

// fail reports err to r and drops it from history at index.
func (c *Container) fail(r Record, index int, err error) {
	c.logger.WithField("record", Describe(r)).Warn("record failed, removing from history: %v", err)
	r.OnError(err)
	c.detach(index, 1)
}

// detach removes count entries starting at start and returns them.
// Vacated slots are zeroed so released records can be collected.
func (c *Container) detach(start, count int) []entry {
	if count <= 0 {
		return nil
	}

	removed := make([]entry, count)
	copy(removed, c.entries[start:start+count])

	n := copy(c.entries[start:], c.entries[start+count:])
	tail := c.entries[start+n:]
	for i := range tail {
		tail[i] = entry{}
	}
	c.entries = c.entries[:start+n]

	return removed
}

// release calls OnRemove on each detached record in order. A failure is
// routed to that record's OnError and does not stop the rest.
func (c *Container) release(removed []entry) {
	for _, e := range removed {
		r := e.record
		if err := call(OpRemove, r.OnRemove); err != nil {
			c.logger.WithField("record", Describe(r)).Warn("remove failed: %v", err)
			r.OnError(err)
		}
	}
}

// CanUndo returns true if undo is available.
func (c *Container) CanUndo() bool {
	return c.cursor >= 0
}

// CanRedo returns true if redo is available.
func (c *Container) CanRedo() bool {
	return len(c.entries) > 0 && c.cursor < len(c.entries)-1
}

// UndoCount returns the number of records that can be undone.
func (c *Container) UndoCount() int {
	return c.cursor + 1
}

// RedoCount returns the number of records that can be redone.
func (c *Container) RedoCount() int {
	return len(c.entries) - c.cursor - 1
}

// Len returns the number of records in history.
func (c *Container) Len() int {
	return len(c.entries)
}

// Cursor returns the index of the newest applied record, or -1.
func (c *Container) Cursor() int {
	return c.cursor
}

// Capacity returns the maximum number of retained records, or Unbounded.
func (c *Container) Capacity() int {
	return c.capacity
}

// Enabled reports whether Record, Undo and Redo are active.
func (c *Container) Enabled() bool {
	return c.enabled
}

// SetEnabled opens or closes the gate on Record, Undo and Redo.
func (c *Container) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// OnEndRecord returns the signal fired after Record.
func (c *Container) OnEndRecord() *Signal {
	return c.onEndRecord
}

// OnEndUndo returns the signal fired after Undo.
func (c *Container) OnEndUndo() *Signal {
	return c.onEndUndo
}

// OnEndRedo returns the signal fired after Redo.
func (c *Container) OnEndRedo() *Signal {
	return c.onEndRedo
}

// Entries returns info about every record, oldest first.
func (c *Container) Entries() []Entry {
	result := make([]Entry, len(c.entries))
	for i := range c.entries {
		result[i] = c.info(i)
	}
	return result
}

// PeekUndo returns info about the record the next Undo would reverse.
func (c *Container) PeekUndo() (Entry, bool) {
	if !c.CanUndo() {
		return Entry{}, false
	}
	return c.info(c.cursor), true
}

// PeekRedo returns info about the record the next Redo would re-apply.
func (c *Container) PeekRedo() (Entry, bool) {
	if !c.CanRedo() {
		return Entry{}, false
	}
	return c.info(c.cursor + 1), true
}

func (c *Container) info(i int) Entry {
	e := c.entries[i]
	return Entry{
		Index:       i,
		Description: Describe(e.record),
		Applied:     i <= c.cursor,
		RecordedAt:  e.recordedAt,
	}
}
