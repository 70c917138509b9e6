// Package mediator dispatches commands and queries to their handlers through an ordered
// pipeline of behaviors.
package mediator

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/result"
)

// HandlerFunc is the type-erased form of a registered request handler
type HandlerFunc func(ctx context.Context, req any) (any, error)

// Behavior wraps every request. Behaviors run in the order given to New, the first being
// the outermost.
type Behavior func(ctx context.Context, req any, next HandlerFunc) (any, error)

type Mediator struct {
	mu        sync.RWMutex
	handlers  map[reflect.Type]HandlerFunc
	behaviors []Behavior
}

func New(behaviors ...Behavior) *Mediator {
	return &Mediator{
		handlers:  make(map[reflect.Type]HandlerFunc),
		behaviors: behaviors,
	}
}

// Register binds the handler for requests of type Req. Registering the same request type
// twice panics since it is a wiring bug.
func Register[Req any, Res any](m *Mediator, h func(ctx context.Context, req Req) (Res, error)) {
	key := reflect.TypeOf((*Req)(nil)).Elem()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.handlers[key]; exists {
		panic(fmt.Sprintf("mediator: handler already registered for %s", key))
	}
	m.handlers[key] = func(ctx context.Context, req any) (any, error) {
		return h(ctx, req.(Req))
	}
}

// Send runs req through the pipeline and its handler
func Send[Res any](ctx context.Context, m *Mediator, req any) result.Result[Res] {
	if req == nil {
		return result.Failure[Res](apperrors.BadRequest("request is required", nil))
	}

	key := reflect.TypeOf(req)
	m.mu.RLock()
	h, ok := m.handlers[key]
	m.mu.RUnlock()
	if !ok {
		return result.Failure[Res](apperrors.Internal(fmt.Errorf("no handler registered for %s", key)))
	}

	out, err := m.pipeline(h)(ctx, req)
	if err != nil {
		return result.Failure[Res](err)
	}

	if out == nil {
		var zero Res
		return result.Success(zero)
	}
	value, ok := out.(Res)
	if !ok {
		return result.Failure[Res](apperrors.Internal(fmt.Errorf("handler for %s returned %T", key, out)))
	}
	return result.Success(value)
}

func (m *Mediator) pipeline(h HandlerFunc) HandlerFunc {
	next := h
	for i := len(m.behaviors) - 1; i >= 0; i-- {
		behavior, inner := m.behaviors[i], next
		next = func(ctx context.Context, req any) (any, error) {
			return behavior(ctx, req, inner)
		}
	}
	return next
}

// RequestName is the short type name used in logs and metrics
func RequestName(req any) string {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
