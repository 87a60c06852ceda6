package records

// Func is a record built from closures. Nil closures do nothing.
type Func struct {
	Name       string
	UndoFunc   func() error
	RedoFunc   func() error
	RemoveFunc func() error
	ErrorFunc  func(err error)
}

// Undo calls UndoFunc.
func (f *Func) Undo() error {
	if f.UndoFunc == nil {
		return nil
	}
	return f.UndoFunc()
}

// Redo calls RedoFunc.
func (f *Func) Redo() error {
	if f.RedoFunc == nil {
		return nil
	}
	return f.RedoFunc()
}

// OnRemove calls RemoveFunc.
func (f *Func) OnRemove() error {
	if f.RemoveFunc == nil {
		return nil
	}
	return f.RemoveFunc()
}

// OnError calls ErrorFunc.
func (f *Func) OnError(err error) {
	if f.ErrorFunc != nil {
		f.ErrorFunc(err)
	}
}

// Description returns Name, or "func" when unnamed.
func (f *Func) Description() string {
	if f.Name == "" {
		return "func"
	}
	return f.Name
}
