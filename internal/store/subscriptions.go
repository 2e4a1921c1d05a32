package store

import (
	"strings"
	"sync"
)

// subscriptionRegistry tracks handlers per resource path. The dashboard it
// replaces ran a polling timer per widget next to live listeners; here every
// consumer of a path shares one registry entry and the entry disappears when
// its reference count drops to zero.
type subscriptionRegistry struct {
	mu     sync.RWMutex
	nextID int
	paths  map[string]map[int]ValueHandler
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{paths: make(map[string]map[int]ValueHandler)}
}

// add registers a handler and returns its disposer. The disposer is safe to
// call from any goroutine and is a no-op after the first call, so teardown
// paths can release unconditionally. A disposed handler never fires again.
func (r *subscriptionRegistry) add(path string, handler ValueHandler) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	if r.paths[path] == nil {
		r.paths[path] = make(map[int]ValueHandler)
	}
	r.paths[path][id] = handler
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			handlers, ok := r.paths[path]
			if !ok {
				return
			}
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(r.paths, path)
			}
		})
	}
}

// affected lists subscribed paths that observe a mutation at mutated: the
// path itself, any subscribed ancestor, and any subscribed descendant whose
// subtree the mutation replaced.
func (r *subscriptionRegistry) affected(mutated string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for path := range r.paths {
		if path == mutated || isAncestor(path, mutated) || isAncestor(mutated, path) {
			out = append(out, path)
		}
	}
	return out
}

func (r *subscriptionRegistry) dispatch(path string, value any) {
	r.mu.RLock()
	handlers := make([]ValueHandler, 0, len(r.paths[path]))
	for _, h := range r.paths[path] {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h(value)
	}
}

// refCount reports live handlers for a path.
func (r *subscriptionRegistry) refCount(path string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.paths[path])
}

func isAncestor(ancestor, descendant string) bool {
	if ancestor == "" {
		return descendant != ""
	}
	return strings.HasPrefix(descendant, ancestor+"/")
}
