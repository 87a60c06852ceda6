// Package scene provides the object world manipulated by the demo.
//
// Objects are spawned at random positions, can be hidden and shown again,
// and are destroyed permanently once no history record can bring them
// back. Live objects are kept in spawn order.
package scene

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
)

// Errors for scene operations.
var (
	// ErrObjectNotFound is returned for an unknown object id.
	ErrObjectNotFound = errors.New("object not found")

	// ErrObjectDestroyed is returned when touching a destroyed object.
	ErrObjectDestroyed = errors.New("object destroyed")
)

// Default spawn area.
const (
	DefaultWidth  = 30
	DefaultHeight = 12
)

// Kind is the primitive shape of an object.
type Kind int

// Primitive kinds.
const (
	Sphere Kind = iota
	Capsule
	Cylinder
	Cube
	Plane
	Quad

	kindCount
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Sphere:
		return "sphere"
	case Capsule:
		return "capsule"
	case Cylinder:
		return "cylinder"
	case Cube:
		return "cube"
	case Plane:
		return "plane"
	case Quad:
		return "quad"
	default:
		return "unknown"
	}
}

// Glyph returns the rune used to draw the kind.
func (k Kind) Glyph() rune {
	switch k {
	case Sphere:
		return 'o'
	case Capsule:
		return '0'
	case Cylinder:
		return 'H'
	case Cube:
		return '#'
	case Plane:
		return '='
	case Quad:
		return '+'
	default:
		return '?'
	}
}

// Object is a spawned primitive.
type Object struct {
	ID     string
	Seq    uint64 // Spawn order
	Kind   Kind
	X, Y   int
	Active bool
}

// Scene holds every live object.
type Scene struct {
	mu sync.RWMutex

	width, height int
	rng           *rand.Rand
	seeded        bool

	objects   *btree.BTreeG[*Object]
	byID      map[string]*Object
	destroyed map[string]struct{}
	nextSeq   uint64

	listeners []func()
}

// Option configures a Scene.
type Option func(*Scene)

// WithSeed makes spawning deterministic, object ids included. A zero seed
// uses the clock.
func WithSeed(seed int64) Option {
	return func(s *Scene) {
		if seed != 0 {
			s.rng = rand.New(rand.NewSource(seed))
			s.seeded = true
		}
	}
}

// WithSize sets the spawn area. Non-positive values keep the default.
func WithSize(width, height int) Option {
	return func(s *Scene) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		width:     DefaultWidth,
		height:    DefaultHeight,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		objects:   btree.NewG(16, func(a, b *Object) bool { return a.Seq < b.Seq }),
		byID:      make(map[string]*Object),
		destroyed: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size returns the spawn area.
func (s *Scene) Size() (width, height int) {
	return s.width, s.height
}

// OnChange registers fn to run after every change to the scene.
func (s *Scene) OnChange(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Spawn creates an active object of random kind at a random position.
func (s *Scene) Spawn() Object {
	s.mu.Lock()
	s.nextSeq++
	obj := &Object{
		ID:     s.newID(),
		Seq:    s.nextSeq,
		Kind:   Kind(s.rng.Intn(int(kindCount))),
		X:      s.rng.Intn(s.width),
		Y:      s.rng.Intn(s.height),
		Active: true,
	}
	s.objects.ReplaceOrInsert(obj)
	s.byID[obj.ID] = obj
	snapshot := *obj
	s.mu.Unlock()

	s.changed()
	return snapshot
}

// newID returns a random uuid, drawn from the seeded source when there is
// one. Callers hold s.mu.
func (s *Scene) newID() string {
	if s.seeded {
		if id, err := uuid.NewRandomFromReader(s.rng); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}

// Activate shows a hidden object.
func (s *Scene) Activate(id string) error {
	return s.setActive(id, true)
}

// Deactivate hides an object without destroying it.
func (s *Scene) Deactivate(id string) error {
	return s.setActive(id, false)
}

func (s *Scene) setActive(id string, active bool) error {
	s.mu.Lock()
	obj, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	changed := obj.Active != active
	obj.Active = active
	s.mu.Unlock()

	if changed {
		s.changed()
	}
	return nil
}

// Destroy removes an object permanently.
func (s *Scene) Destroy(id string) error {
	s.mu.Lock()
	obj, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.objects.Delete(obj)
	delete(s.byID, id)
	s.destroyed[id] = struct{}{}
	s.mu.Unlock()

	s.changed()
	return nil
}

// lookup must be called with s.mu held.
func (s *Scene) lookup(id string) (*Object, error) {
	if obj, ok := s.byID[id]; ok {
		return obj, nil
	}
	if _, ok := s.destroyed[id]; ok {
		return nil, ErrObjectDestroyed
	}
	return nil, ErrObjectNotFound
}

// Get returns a copy of the object with the given id.
func (s *Scene) Get(id string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.byID[id]
	if !ok {
		return Object{}, false
	}
	return *obj, true
}

// IsDestroyed reports whether id belonged to an object that was destroyed.
func (s *Scene) IsDestroyed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.destroyed[id]
	return ok
}

// Objects returns every live object in spawn order, hidden ones included.
func (s *Scene) Objects() []Object {
	return s.collect(func(*Object) bool { return true })
}

// Active returns the visible objects in spawn order.
func (s *Scene) Active() []Object {
	return s.collect(func(o *Object) bool { return o.Active })
}

func (s *Scene) collect(keep func(*Object) bool) []Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Object, 0, s.objects.Len())
	s.objects.Ascend(func(o *Object) bool {
		if keep(o) {
			result = append(result, *o)
		}
		return true
	})
	return result
}

// ActiveCount returns the number of visible objects.
func (s *Scene) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	s.objects.Ascend(func(o *Object) bool {
		if o.Active {
			n++
		}
		return true
	})
	return n
}

// Len returns the number of live objects, hidden ones included.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects.Len()
}

// RandomActive picks a visible object at random.
func (s *Scene) RandomActive() (Object, bool) {
	active := s.Active()
	if len(active) == 0 {
		return Object{}, false
	}
	s.mu.Lock()
	i := s.rng.Intn(len(active))
	s.mu.Unlock()
	return active[i], true
}

func (s *Scene) changed() {
	s.mu.RLock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
