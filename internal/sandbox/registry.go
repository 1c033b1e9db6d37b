package sandbox

import (
	"github.com/san-kum/physbox/internal/physics"
	"github.com/san-kum/physbox/internal/scene"
)

// Kind names the shape a managed object was spawned as.
type Kind string

const (
	KindSphere Kind = "sphere"
	KindBox    Kind = "box"
)

// ManagedObject pairs a mesh with the body that drives it.
type ManagedObject struct {
	Kind Kind
	Mesh *scene.Mesh
	Body *physics.Body

	listener physics.ListenerID
}

// Registry keeps spawned objects in creation order. Objects leave it only
// all at once, through Drain.
type Registry struct {
	objects []*ManagedObject
}

// Add appends o. Callers keep the scene and world in step; Add touches
// neither.
func (r *Registry) Add(o *ManagedObject) {
	r.objects = append(r.objects, o)
}

// Len is the number of objects currently registered.
func (r *Registry) Len() int { return len(r.objects) }

// Objects returns a copy of the registered objects, oldest first.
func (r *Registry) Objects() []*ManagedObject {
	out := make([]*ManagedObject, len(r.objects))
	copy(out, r.objects)
	return out
}

// Each calls fn for every object in creation order. fn must not add to or
// drain the registry.
func (r *Registry) Each(fn func(*ManagedObject)) {
	for _, o := range r.objects {
		fn(o)
	}
}

// Drain empties the registry and returns what it held.
func (r *Registry) Drain() []*ManagedObject {
	out := r.objects
	r.objects = nil
	return out
}
