package store

import (
	"fmt"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"fmd/internal/providers"
)

// ValueHandler receives the current value at a subscribed path after every
// mutation under it. A nil value means the path no longer exists.
type ValueHandler func(value any)

// RealtimeStore is the capability surface the dashboard code programs
// against: one-shot snapshot reads, push subscriptions, and mutations.
// Values are JSON-shaped trees (maps, slices, strings, float64, bool).
type RealtimeStore interface {
	Fetch(path string) (any, bool)
	Write(path string, value any) error
	Patch(path string, partial map[string]any) error
	Delete(path string) error
	Subscribe(path string, onChange ValueHandler) (unsubscribe func())
	Export() map[string]any
	Restore(root map[string]any)
}

// MemoryStore keeps the whole tree in memory. Mutations are serialized
// under a single write lock; reads hand out deep copies so callers always
// work on an immutable snapshot. Concurrent writers are last-write-wins.
type MemoryStore struct {
	mu     sync.RWMutex
	root   map[string]any
	subs   *subscriptionRegistry
	logger providers.Logger
}

func NewMemoryStore(logger providers.Logger) RealtimeStore {
	return &MemoryStore{
		root:   make(map[string]any),
		subs:   newSubscriptionRegistry(),
		logger: logger,
	}
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Fetch returns a deep copy of the value at path. A missing path yields
// ok=false; callers treat that as an empty collection, not an error.
func (s *MemoryStore) Fetch(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.lookup(splitPath(path))
	if !ok {
		return nil, false
	}
	return cloneValue(val), true
}

func (s *MemoryStore) lookup(segments []string) (any, bool) {
	var cur any = s.root
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Write replaces the value at path. Writing nil deletes the node, matching
// the realtime-database convention the firmware and dashboard rely on.
func (s *MemoryStore) Write(path string, value any) error {
	if value == nil {
		return s.Delete(path)
	}
	normalized, err := normalize(value)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "rejected write at %s: %s", path, err)
		return err
	}

	s.mu.Lock()
	segments := splitPath(path)
	if len(segments) == 0 {
		m, ok := normalized.(map[string]any)
		if !ok {
			s.mu.Unlock()
			return fmt.Errorf("store: root value must be an object")
		}
		s.root = m
	} else {
		parent := s.materialize(segments[:len(segments)-1])
		parent[segments[len(segments)-1]] = normalized
	}
	s.mu.Unlock()

	s.notify(path)
	return nil
}

// Patch merges the partial object into the node at path, creating it when
// absent. Nil entries in the partial delete the corresponding child.
func (s *MemoryStore) Patch(path string, partial map[string]any) error {
	normalized, err := normalize(partial)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "rejected patch at %s: %s", path, err)
		return err
	}
	patch, _ := normalized.(map[string]any)

	s.mu.Lock()
	node := s.materialize(splitPath(path))
	for k, v := range patch {
		if v == nil {
			delete(node, k)
			continue
		}
		node[k] = v
	}
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *MemoryStore) Delete(path string) error {
	segments := splitPath(path)

	s.mu.Lock()
	if len(segments) == 0 {
		s.root = make(map[string]any)
	} else {
		parent, ok := s.lookup(segments[:len(segments)-1])
		if m, isMap := parent.(map[string]any); ok && isMap {
			delete(m, segments[len(segments)-1])
		}
	}
	s.mu.Unlock()

	s.notify(path)
	return nil
}

// materialize walks to the node at segments, creating intermediate objects.
// Non-object nodes on the way are replaced; the tree is schemaless.
func (s *MemoryStore) materialize(segments []string) map[string]any {
	cur := s.root
	for _, seg := range segments {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	return cur
}

// Subscribe registers onChange for every mutation at or under path, and for
// mutations to ancestors that replace the subtree. The returned unsubscribe
// is idempotent and must be called exactly once per Subscribe on teardown.
func (s *MemoryStore) Subscribe(path string, onChange ValueHandler) func() {
	return s.subs.add(strings.Trim(path, "/"), onChange)
}

func (s *MemoryStore) notify(path string) {
	for _, target := range s.subs.affected(strings.Trim(path, "/")) {
		val, _ := s.Fetch(target)
		s.subs.dispatch(target, val)
	}
}

// Export deep-copies the whole tree for persistence.
func (s *MemoryStore) Export() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, _ := cloneValue(s.root).(map[string]any)
	return out
}

// Restore replaces the tree wholesale, used on startup. No notifications
// fire; nothing is subscribed that early.
func (s *MemoryStore) Restore(root map[string]any) {
	if root == nil {
		root = make(map[string]any)
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	s.logger.Infof(providers.TypeStore, "restored tree: %d top-level nodes", len(root))
}

// normalize round-trips a value through JSON so the tree only ever holds
// plain maps, slices and scalars regardless of what typed struct was
// written.
func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("store: unencodable value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return v
	}
}

// Decode copies a fetched tree value into a typed destination.
func Decode(value any, dst any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
