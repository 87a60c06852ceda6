// Package records provides history.Record implementations for the demo
// scene: spawning an object and deleting one.
//
// Both records hide rather than destroy objects while they are undoable,
// and only destroy an object for good when the record leaves history
// while the object is hidden.
package records

import (
	"fmt"

	"github.com/dshills/undoredo/internal/history"
	"github.com/dshills/undoredo/internal/logging"
	"github.com/dshills/undoredo/internal/scene"
)

// Recorder accepts new records. Satisfied by *history.Container and
// *history.Synchronized.
type Recorder interface {
	Record(r history.Record)
}

// SpawnRecord reverses the spawning of an object.
type SpawnRecord struct {
	scene  *scene.Scene
	object scene.Object
	logger *logging.Logger
	undone bool
}

// NewSpawnRecord creates a record for an object that was just spawned.
func NewSpawnRecord(sc *scene.Scene, obj scene.Object, logger *logging.Logger) *SpawnRecord {
	if logger == nil {
		logger = logging.Null()
	}
	return &SpawnRecord{scene: sc, object: obj, logger: logger}
}

// Undo hides the spawned object.
func (r *SpawnRecord) Undo() error {
	if err := r.scene.Deactivate(r.object.ID); err != nil {
		return err
	}
	r.undone = true
	return nil
}

// Redo shows the spawned object again.
func (r *SpawnRecord) Redo() error {
	if err := r.scene.Activate(r.object.ID); err != nil {
		return err
	}
	r.undone = false
	return nil
}

// OnRemove destroys the object if the spawn is currently undone.
func (r *SpawnRecord) OnRemove() error {
	if !r.undone {
		return nil
	}
	return r.scene.Destroy(r.object.ID)
}

// OnError logs the failure.
func (r *SpawnRecord) OnError(err error) {
	r.logger.WithField("object", r.object.ID).Error("execute spawn record failure, message: %v", err)
}

// Description returns a label for history listings.
func (r *SpawnRecord) Description() string {
	return fmt.Sprintf("spawn %s %s", r.object.Kind, shortID(r.object.ID))
}

// ObjectID returns the id of the spawned object.
func (r *SpawnRecord) ObjectID() string {
	return r.object.ID
}

// DeleteRecord reverses the deletion of an object.
type DeleteRecord struct {
	scene   *scene.Scene
	object  scene.Object
	logger  *logging.Logger
	deleted bool
}

// NewDeleteRecord creates a record for an object that was just hidden.
func NewDeleteRecord(sc *scene.Scene, obj scene.Object, logger *logging.Logger) *DeleteRecord {
	if logger == nil {
		logger = logging.Null()
	}
	return &DeleteRecord{scene: sc, object: obj, logger: logger, deleted: true}
}

// Undo shows the deleted object again.
func (r *DeleteRecord) Undo() error {
	if err := r.scene.Activate(r.object.ID); err != nil {
		return err
	}
	r.deleted = false
	return nil
}

// Redo hides the object again.
func (r *DeleteRecord) Redo() error {
	if err := r.scene.Deactivate(r.object.ID); err != nil {
		return err
	}
	r.deleted = true
	return nil
}

// OnRemove destroys the object if it is currently deleted.
func (r *DeleteRecord) OnRemove() error {
	if !r.deleted {
		return nil
	}
	return r.scene.Destroy(r.object.ID)
}

// OnError logs the failure.
func (r *DeleteRecord) OnError(err error) {
	r.logger.WithField("object", r.object.ID).Error("execute delete record failure, message: %v", err)
}

// Description returns a label for history listings.
func (r *DeleteRecord) Description() string {
	return fmt.Sprintf("delete %s %s", r.object.Kind, shortID(r.object.ID))
}

// ObjectID returns the id of the deleted object.
func (r *DeleteRecord) ObjectID() string {
	return r.object.ID
}

// Spawn creates an object in sc and records its SpawnRecord.
func Spawn(sc *scene.Scene, rec Recorder, logger *logging.Logger) scene.Object {
	obj := sc.Spawn()
	rec.Record(NewSpawnRecord(sc, obj, logger))
	return obj
}

// Delete hides the object with the given id and records a DeleteRecord.
func Delete(sc *scene.Scene, rec Recorder, id string, logger *logging.Logger) (scene.Object, error) {
	obj, ok := sc.Get(id)
	if !ok || !obj.Active {
		return scene.Object{}, fmt.Errorf("delete %s: %w", id, scene.ErrObjectNotFound)
	}
	if err := sc.Deactivate(id); err != nil {
		return scene.Object{}, fmt.Errorf("delete %s: %w", id, err)
	}
	rec.Record(NewDeleteRecord(sc, obj, logger))
	return obj, nil
}

// DeleteRandom deletes a random visible object. It reports false when
// nothing is visible.
func DeleteRandom(sc *scene.Scene, rec Recorder, logger *logging.Logger) (scene.Object, bool) {
	obj, ok := sc.RandomActive()
	if !ok {
		return scene.Object{}, false
	}
	deleted, err := Delete(sc, rec, obj.ID, logger)
	if err != nil {
		return scene.Object{}, false
	}
	return deleted, true
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
