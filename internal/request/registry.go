package request

import "sync"

// Handle is anything the registry can abort: a single Task or a TaskSet.
type Handle interface {
	Abort()
}

// TaskSet holds the per-file tasks of an upload call.
type TaskSet []Task

// Abort aborts every task in the set.
func (s TaskSet) Abort() {
	for _, t := range s {
		t.Abort()
	}
}

// Registry maps caller-supplied names to the tasks of their latest call.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]Handle)}
}

// Register stores h under name, replacing any previous entry.
func (r *Registry) Register(name string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = h
}

// Lookup returns the handle registered under name.
func (r *Registry) Lookup(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.tasks[name]
	return h, ok
}

// Len returns the number of named entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
