// Package worker tracks the client's named background workers so a
// remediation pass can enumerate and stop every one of them.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

type workerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry owns the background workers. Each worker runs in its own
// goroutine under a cancelable context; unregistering cancels the context
// and waits for the run function to return.
type Registry struct {
	mu      sync.Mutex
	workers map[string]*workerHandle
	log     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		workers: make(map[string]*workerHandle),
		log:     slog.Default().With("component", "workers"),
	}
}

// Register starts run under a fresh context and tracks it by name. Names
// must be unique.
func (r *Registry) Register(name string, run func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[name]; exists {
		return fmt.Errorf("worker %q already registered", name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &workerHandle{cancel: cancel, done: make(chan struct{})}
	r.workers[name] = handle

	go func() {
		defer close(handle.done)
		run(ctx)
	}()

	r.log.Debug("Worker registered", "worker", name)
	return nil
}

// Names returns the registered worker names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister stops the named worker and waits for it to exit. Returns false
// when no such worker exists.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	handle, ok := r.workers[name]
	if ok {
		delete(r.workers, name)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	handle.cancel()
	<-handle.done
	r.log.Debug("Worker unregistered", "worker", name)
	return true
}

// UnregisterAll stops every worker. Used on shutdown and by remediation.
func (r *Registry) UnregisterAll() {
	for _, name := range r.Names() {
		r.Unregister(name)
	}
}
