// Package session keeps one workflow per front-end session in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agenthands/matchpredict/internal/workflow"
)

// Registry maps session keys to workflows. Sessions idle for longer than
// the TTL are evicted by Sweep; a workflow with a call in flight is never
// evicted.
type Registry[K comparable] struct {
	mu       sync.Mutex
	sessions map[K]*workflow.Workflow
	factory  func() *workflow.Workflow
	ttl      time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

func NewRegistry[K comparable](factory func() *workflow.Workflow, ttl time.Duration) *Registry[K] {
	return &Registry[K]{
		sessions: make(map[K]*workflow.Workflow),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		logger:   log.With().Str("component", "session_registry").Logger(),
	}
}

func (r *Registry[K]) Get(key K) (*workflow.Workflow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.sessions[key]
	return w, ok
}

func (r *Registry[K]) GetOrCreate(key K) *workflow.Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.sessions[key]; ok {
		return w
	}
	w := r.factory()
	r.sessions[key] = w
	return w
}

func (r *Registry[K]) Delete(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[key]; !ok {
		return false
	}
	delete(r.sessions, key)
	return true
}

func (r *Registry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts expired sessions and returns how many were removed.
func (r *Registry[K]) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for key, w := range r.sessions {
		if w.Busy() || w.LastActivity().After(cutoff) {
			continue
		}
		delete(r.sessions, key)
		removed++
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry[K]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug().Int("evicted", n).Int("remaining", r.Len()).Msg("Expired sessions evicted")
			}
		}
	}
}
