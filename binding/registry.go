package binding

import (
	"context"
	"net/http"
	"reflect"
	"sort"
	"sync"

	"github.com/kbukum/httpbind/errors"
)

// Binder binds a context into a request. *RequestBinder implements it.
type Binder interface {
	Bind(ctx context.Context, bc *Context) (*Request, error)
	Build(ctx context.Context, bc *Context, bound *Request) (*http.Request, error)
}

var _ Binder = (*RequestBinder)(nil)

// Registry maps model types to custom binders.
type Registry struct {
	mu       sync.RWMutex
	binders  map[reflect.Type]Binder
	fallback Binder
}

// NewRegistry creates a registry that resolves unregistered types to
// fallback. A nil fallback is a RequestBinder with default options.
func NewRegistry(fallback Binder) *Registry {
	if fallback == nil {
		fallback = NewRequestBinder()
	}
	return &Registry{binders: make(map[reflect.Type]Binder), fallback: fallback}
}

// Register sets the binder for models of type t, replacing any previous
// one. Pointer types register their element type.
func (r *Registry) Register(t reflect.Type, b Binder) error {
	if t == nil {
		return errors.ArgumentNull("type")
	}
	if b == nil {
		return errors.ArgumentNull("binder")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binders[baseType(t)] = b
	return nil
}

// Unregister removes the binder for t.
func (r *Registry) Unregister(t reflect.Type) {
	if t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.binders, baseType(t))
}

// Lookup returns the binder registered for t.
func (r *Registry) Lookup(t reflect.Type) (Binder, bool) {
	if t == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.binders[baseType(t)]
	return b, ok
}

// Resolve returns the binder for t, or the fallback.
func (r *Registry) Resolve(t reflect.Type) Binder {
	if b, ok := r.Lookup(t); ok {
		return b
	}
	return r.fallback
}

// Types returns the registered types sorted by name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	types := make([]reflect.Type, 0, len(r.binders))
	for t := range r.binders {
		types = append(types, t)
	}
	r.mu.RUnlock()
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
