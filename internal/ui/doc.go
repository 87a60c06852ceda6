// Package ui is a terminal demo of the record container.
//
// Spawning and deleting objects in a scene is recorded, and the records
// can be undone and redone from the keyboard or by clicking the button
// bar:
//
//	u, Ctrl+Z   undo
//	r, Ctrl+Y   redo
//	s           spawn a random object
//	d           delete a random object
//	c           clear the history
//	e           toggle recording
//	q, Esc      quit
//
// Undo and redo are dimmed when there is nothing to undo or redo. The
// status line follows the container's record, undo and redo
// notifications.
package ui
