package deserialization

import (
	"reflect"
	"sync/atomic"

	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/response"
)

// Registry is an ordered provider list. Readers always observe a complete
// list: writers publish a new immutable slice with an atomic swap.
type Registry struct {
	list atomic.Pointer[[]Provider]
}

var defaultRegistry = NewRegistry(DefaultProviders()...)

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// DefaultProviders returns a fresh [JSON, XML, PlainText] list.
func DefaultProviders() []Provider {
	return []Provider{&JSON{}, &XML{}, &PlainText{}}
}

// NewRegistry creates a registry holding providers in order.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{}
	list := append([]Provider(nil), providers...)
	r.list.Store(&list)
	return r
}

// Providers returns a copy of the current list.
func (r *Registry) Providers() []Provider {
	cur := *r.list.Load()
	return append([]Provider(nil), cur...)
}

// SetProviders replaces the list. A nil list is rejected.
func (r *Registry) SetProviders(providers []Provider) error {
	if providers == nil {
		return errors.ArgumentNull("value")
	}
	for _, p := range providers {
		if p == nil {
			return errors.InvalidArgument("value", "provider list contains nil")
		}
	}
	list := append([]Provider(nil), providers...)
	r.list.Store(&list)
	return nil
}

// Prepend inserts p ahead of the current providers.
func (r *Registry) Prepend(p Provider) error {
	if p == nil {
		return errors.ArgumentNull("provider")
	}
	r.update(func(cur []Provider) []Provider {
		return append([]Provider{p}, cur...)
	})
	return nil
}

// Append adds p after the current providers.
func (r *Registry) Append(p Provider) error {
	if p == nil {
		return errors.ArgumentNull("provider")
	}
	r.update(func(cur []Provider) []Provider {
		next := make([]Provider, 0, len(cur)+1)
		return append(append(next, cur...), p)
	})
	return nil
}

func (r *Registry) update(fn func([]Provider) []Provider) {
	for {
		old := r.list.Load()
		next := fn(*old)
		if r.list.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Len returns the number of providers.
func (r *Registry) Len() int {
	return len(*r.list.Load())
}

// Find returns the first provider accepting the stream and result type.
func (r *Registry) Find(s *response.Stream, t reflect.Type) Provider {
	for _, p := range *r.list.Load() {
		if p.CanDeserialize(s, t) {
			return p
		}
	}
	return nil
}
