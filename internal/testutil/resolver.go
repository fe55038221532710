package testutil

import (
	"context"
	"sync"

	"github.com/roach88/rsrepair/internal/prompt"
	"github.com/roach88/rsrepair/internal/reconcile"
)

// Answer is one scripted operator response.
type Answer func(ctx context.Context, req prompt.Request) (reconcile.Decision, error)

// Decide answers with d.
func Decide(d reconcile.Decision) Answer {
	return func(context.Context, prompt.Request) (reconcile.Decision, error) {
		return d, nil
	}
}

// Close answers as if operator input ended.
func Close() Answer {
	return func(context.Context, prompt.Request) (reconcile.Decision, error) {
		return reconcile.Decision{}, prompt.ErrClosed
	}
}

// ScriptedResolver stands in for the operator prompt. It plays its answers
// in order and records the ids it was asked about. Once the script is used
// up it answers with the fallback, or closes when there is none.
type ScriptedResolver struct {
	mu       sync.Mutex
	answers  []Answer
	fallback Answer
	asked    []string
}

// NewScriptedResolver creates a resolver that plays answers in order.
func NewScriptedResolver(answers ...Answer) *ScriptedResolver {
	return &ScriptedResolver{answers: answers, fallback: Close()}
}

// Always sets the answer used after the script runs out.
func (r *ScriptedResolver) Always(a Answer) *ScriptedResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = a
	return r
}

// Resolve implements engine.Resolver.
func (r *ScriptedResolver) Resolve(ctx context.Context, req prompt.Request) (reconcile.Decision, error) {
	r.mu.Lock()
	r.asked = append(r.asked, req.ID.String())
	answer := r.fallback
	if len(r.answers) > 0 {
		answer, r.answers = r.answers[0], r.answers[1:]
	}
	r.mu.Unlock()
	return answer(ctx, req)
}

// Asked returns the ids asked about, as canonical JSON text, in order.
func (r *ScriptedResolver) Asked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.asked...)
}
