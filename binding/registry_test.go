package binding

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/serialization"
)

func TestRegistry(t *testing.T) {
	fallback := NewRequestBinder()
	reg := NewRegistry(fallback)
	custom := NewRequestBinder(WithSerializationOptions(serialization.Options{Charset: "utf-8"}))

	require.NoError(t, reg.Register(reflect.TypeOf(&getUser{}), custom))

	got, ok := reg.Lookup(reflect.TypeOf(getUser{}))
	require.True(t, ok)
	assert.Same(t, custom, got)
	assert.Same(t, custom, reg.Resolve(reflect.TypeOf(&getUser{})))
	assert.Same(t, fallback, reg.Resolve(reflect.TypeOf(widget{})))
	assert.Equal(t, []reflect.Type{reflect.TypeOf(getUser{})}, reg.Types())

	reg.Unregister(reflect.TypeOf(getUser{}))
	_, ok = reg.Lookup(reflect.TypeOf(getUser{}))
	assert.False(t, ok)
}

func TestRegistry_Preconditions(t *testing.T) {
	reg := NewRegistry(nil)
	assert.NotNil(t, reg.Resolve(reflect.TypeOf(widget{})))

	err := reg.Register(nil, NewRequestBinder())
	assert.Equal(t, "type", errors.Param(err))
	err = reg.Register(reflect.TypeOf(widget{}), nil)
	assert.Equal(t, "binder", errors.Param(err))

	_, ok := reg.Lookup(nil)
	assert.False(t, ok)
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry(nil)
	types := []reflect.Type{reflect.TypeOf(getUser{}), reflect.TypeOf(widget{}), reflect.TypeOf(login{})}
	binder := NewRequestBinder()

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10000; i++ {
				typ := types[(g+i)%len(types)]
				switch i % 4 {
				case 0:
					_ = reg.Register(typ, binder)
				case 1:
					reg.Unregister(typ)
				case 2:
					assert.NotNil(t, reg.Resolve(typ))
				default:
					assert.LessOrEqual(t, len(reg.Types()), len(types))
				}
			}
		}(g)
	}
	wg.Wait()
}
