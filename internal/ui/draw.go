package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/undoredo/internal/history"
)

// Styles used by the demo.
var (
	styleDefault  = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleButton   = tcell.StyleDefault.Reverse(true)
	styleDisabled = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleUndone   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCursor   = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorYellow)
)

// button is a clickable label on the button bar.
type button struct {
	action  Action
	label   string
	x, y    int
	enabled bool
}

func (b button) contains(x, y int) bool {
	return y == b.y && x >= b.x && x < b.x+len(b.label)
}

// historyRows is the number of entries listed beside the scene.
const historyRows = 10

// Draw renders the whole screen.
func (a *App) Draw() {
	var (
		status   history.Status
		entries  []history.Entry
		cursor   int
		capacity int
	)
	a.history.Do(func(c *history.Container) {
		status = history.StatusOf(c)
		entries = c.Entries()
		cursor = c.Cursor()
		capacity = c.Capacity()
	})

	a.screen.Clear()
	width, height := a.scene.Size()

	title := fmt.Sprintf("undoredo  undo:%d  redo:%d  objects:%d  recording:%s",
		status.UndoCount, status.RedoCount, a.scene.ActiveCount(), onOff(status.Enabled))
	a.drawText(0, 0, title, styleTitle)

	// Scene box
	a.drawBox(0, 1, width+2, height+2)
	for _, obj := range a.scene.Active() {
		a.screen.SetContent(1+obj.X, 2+obj.Y, obj.Kind.Glyph(), nil, styleDefault)
	}

	// History list
	listX := width + 4
	a.drawText(listX, 1, fmt.Sprintf("history %d/%s", status.Len, capacityLabel(capacity)), styleTitle)
	start := 0
	if len(entries) > historyRows {
		start = len(entries) - historyRows
	}
	for row, e := range entries[start:] {
		marker, style := "  ", styleDefault
		switch {
		case e.Index == cursor:
			marker, style = "> ", styleCursor
		case !e.Applied:
			style = styleUndone
		}
		a.drawText(listX, 2+row, marker+e.Description, style)
	}

	// Button bar
	barY := height + 3
	a.layoutButtons(barY, status)
	a.mu.Lock()
	buttons := a.buttons
	msg := a.status
	a.mu.Unlock()
	for _, b := range buttons {
		style := styleButton
		if !b.enabled {
			style = styleDisabled
		}
		a.drawText(b.x, b.y, b.label, style)
	}

	a.drawText(0, barY+1, msg, styleDefault)
	a.screen.Show()
}

func capacityLabel(capacity int) string {
	if capacity < 0 {
		return "unbounded"
	}
	return fmt.Sprint(capacity)
}

// layoutButtons positions the button bar at row y.
func (a *App) layoutButtons(y int, status history.Status) {
	defs := []struct {
		action  Action
		label   string
		enabled bool
	}{
		{ActionUndo, "[U]ndo", status.CanUndo},
		{ActionRedo, "[R]edo", status.CanRedo},
		{ActionSpawn, "[S]pawn", true},
		{ActionDelete, "[D]elete", a.scene.ActiveCount() > 0},
		{ActionClear, "[C]lear", status.Len > 0},
		{ActionToggle, "[E]nable", status.Enabled},
	}

	buttons := make([]button, 0, len(defs))
	x := 0
	for _, s := range defs {
		buttons = append(buttons, button{action: s.action, label: s.label, x: x, y: y, enabled: s.enabled})
		x += len(s.label) + 1
	}

	a.mu.Lock()
	a.buttons = buttons
	a.mu.Unlock()
}

// buttonAt returns the action of the button under x, y. Dimmed buttons
// other than the enable toggle do not respond.
func (a *App) buttonAt(x, y int) (Action, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, b := range a.buttons {
		if !b.contains(x, y) {
			continue
		}
		if !b.enabled && b.action != ActionToggle {
			return 0, false
		}
		return b.action, true
	}
	return 0, false
}

func (a *App) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (a *App) drawBox(x, y, w, h int) {
	right, bottom := x+w-1, y+h-1
	for i := x + 1; i < right; i++ {
		a.screen.SetContent(i, y, tcell.RuneHLine, nil, styleBorder)
		a.screen.SetContent(i, bottom, tcell.RuneHLine, nil, styleBorder)
	}
	for j := y + 1; j < bottom; j++ {
		a.screen.SetContent(x, j, tcell.RuneVLine, nil, styleBorder)
		a.screen.SetContent(right, j, tcell.RuneVLine, nil, styleBorder)
	}
	a.screen.SetContent(x, y, tcell.RuneULCorner, nil, styleBorder)
	a.screen.SetContent(right, y, tcell.RuneURCorner, nil, styleBorder)
	a.screen.SetContent(x, bottom, tcell.RuneLLCorner, nil, styleBorder)
	a.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, styleBorder)
}
