// Package history provides a bounded undo/redo history of caller-supplied
// records.
//
// A Record is any value that can undo and redo its own effect and be told
// when it leaves history. The package knows nothing else about it.
//
// # Container
//
// Container keeps records in recording order with a cursor pointing at the
// newest applied record:
//
//	c := history.New(20) // keep at most 20 records
//
//	c.Record(rec) // drops the redo branch, may evict the oldest record
//	c.Undo()
//	c.Redo()
//	c.Clear()     // removes every record and every subscription
//
// # Failure isolation
//
// Errors returned by, and panics raised in, Undo, Redo and OnRemove are
// caught and handed to the record's OnError. A record whose Undo or Redo
// fails is dropped from history; the cursor still moves as if the call
// had succeeded. Panics in OnError and in signal handlers are not caught.
//
// # Signals
//
// OnEndRecord, OnEndUndo and OnEndRedo return signals whose handlers run
// synchronously, in registration order, after the operation completes:
//
//	sub := c.OnEndUndo().Add(func(r history.Record) { refresh() })
//	defer sub.Unsubscribe()
package history
