package history

import (
	"testing"
)

func TestSignalOrder(t *testing.T) {
	s := newSignal("test")
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		s.Add(func(Record) { order = append(order, i) })
	}

	s.emit(nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("handlers ran in order %v, want [1 2 3]", order)
	}
}

func TestSignalRemove(t *testing.T) {
	s := newSignal("test")
	calls := 0
	sub := s.Add(func(Record) { calls++ })
	other := s.Add(func(Record) {})

	s.Remove(sub)
	s.emit(nil)

	if calls != 0 {
		t.Error("removed handler was called")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	other.Unsubscribe()
	other.Unsubscribe()
	s.Remove(nil)
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestSignalRemoveIgnoresOtherSignals(t *testing.T) {
	c := New(5)
	recordCalls, undoCalls := 0, 0
	recSub := c.OnEndRecord().Add(func(Record) { recordCalls++ })
	c.OnEndUndo().Add(func(Record) { undoCalls++ })

	c.OnEndUndo().Remove(recSub)
	if got := c.OnEndUndo().Len(); got != 1 {
		t.Fatalf("undo handlers after removing a record subscription = %d, want 1", got)
	}
	if got := c.OnEndRecord().Len(); got != 1 {
		t.Fatalf("record handlers = %d, want 1", got)
	}

	c.Record(newTestRecord("A", nil))
	c.Undo()
	if recordCalls != 1 || undoCalls != 1 {
		t.Errorf("calls record=%d undo=%d, want 1 and 1", recordCalls, undoCalls)
	}

	recSub.Unsubscribe()
	if c.OnEndRecord().Len() != 0 || c.OnEndUndo().Len() != 1 {
		t.Errorf("Unsubscribe removed the wrong handler: record=%d undo=%d",
			c.OnEndRecord().Len(), c.OnEndUndo().Len())
	}
}

func TestSignalAddNil(t *testing.T) {
	s := newSignal("test")
	if sub := s.Add(nil); sub != nil {
		t.Error("Add(nil) should return nil")
	}
	if s.Len() != 0 {
		t.Error("Add(nil) should not register a handler")
	}

	var sub *Subscription
	sub.Unsubscribe()
}

func TestSignalSameHandlerTwice(t *testing.T) {
	s := newSignal("test")
	calls := 0
	h := func(Record) { calls++ }
	first := s.Add(h)
	s.Add(h)

	s.emit(nil)
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}

	first.Unsubscribe()
	s.emit(nil)
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSignalUnsubscribeDuringEmit(t *testing.T) {
	s := newSignal("test")
	var second *Subscription
	secondCalls := 0

	s.Add(func(Record) { second.Unsubscribe() })
	second = s.Add(func(Record) { secondCalls++ })

	s.emit(nil)
	if secondCalls != 1 {
		t.Errorf("handler removed mid-emit should still run this round, got %d calls", secondCalls)
	}

	s.emit(nil)
	if secondCalls != 1 {
		t.Errorf("handler removed mid-emit ran again, got %d calls", secondCalls)
	}
}

func TestSignalReceivesRecord(t *testing.T) {
	c := New(5)
	r := newTestRecord("A", nil)
	var got []Record
	c.OnEndRecord().Add(func(x Record) { got = append(got, x) })
	c.OnEndUndo().Add(func(x Record) { got = append(got, x) })
	c.OnEndRedo().Add(func(x Record) { got = append(got, x) })

	c.Record(r)
	c.Undo()
	c.Redo()

	if len(got) != 3 {
		t.Fatalf("got %d notifications, want 3", len(got))
	}
	for i, x := range got {
		if x != r {
			t.Errorf("notification %d carried %v, want A", i, x)
		}
	}
}

func TestSignalNames(t *testing.T) {
	c := New(1)
	tests := []struct {
		signal *Signal
		want   string
	}{
		{c.OnEndRecord(), "record"},
		{c.OnEndUndo(), "undo"},
		{c.OnEndRedo(), "redo"},
	}
	for _, tt := range tests {
		if got := tt.signal.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}
