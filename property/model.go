package property

import (
	"reflect"
	"strings"
	"sync"

	"github.com/kbukum/httpbind/errors"
)

// Field is one entry of a model descriptor.
type Field struct {
	// Index is the reflect field index path, including embedded structs.
	Index []int
	// Name is the Go field name.
	Name  string
	Usage Usage
	Type  reflect.Type
	// Collection is set for header-collection typed fields.
	Collection bool
}

// WireName returns the name used on the wire.
func (f *Field) WireName() string {
	return f.Usage.ResolvedName(f.Name)
}

// Value returns the field value of root, following embedded pointers.
// The boolean is false when an embedded pointer on the path is nil.
func (f *Field) Value(root reflect.Value) (reflect.Value, bool) {
	for root.Kind() == reflect.Pointer {
		if root.IsNil() {
			return reflect.Value{}, false
		}
		root = root.Elem()
	}
	v, err := root.FieldByIndexErr(f.Index)
	if err != nil {
		return reflect.Value{}, false
	}
	return v, true
}

// Model is the cached descriptor table of a struct type.
type Model struct {
	Type   reflect.Type
	Fields []Field
}

// Lookup finds a field whose Go name or wire name matches name
// case-insensitively.
func (m *Model) Lookup(name string) (*Field, bool) {
	for i := range m.Fields {
		f := &m.Fields[i]
		if strings.EqualFold(f.Name, name) || (f.Usage.HasName && strings.EqualFold(f.Usage.Name, name)) {
			return f, true
		}
	}
	return nil, false
}

// Select returns the fields for which keep reports true, in declaration order.
func (m *Model) Select(keep func(*Field) bool) []*Field {
	var out []*Field
	for i := range m.Fields {
		if keep(&m.Fields[i]) {
			out = append(out, &m.Fields[i])
		}
	}
	return out
}

// HasKind reports whether any field carries one of the flags in k.
func (m *Model) HasKind(k Kind) bool {
	for i := range m.Fields {
		if m.Fields[i].Usage.Kind&k != 0 {
			return true
		}
	}
	return false
}

type cacheEntry struct {
	model *Model
	err   error
}

var cache sync.Map // reflect.Type -> cacheEntry

// Describe returns the descriptor table for t. Pointer types describe their
// element. Non-struct types yield an empty table. The result is computed once
// per type.
func Describe(t reflect.Type) (*Model, error) {
	if t == nil {
		return nil, errors.ArgumentNull("type")
	}
	t = deref(t)
	if v, ok := cache.Load(t); ok {
		e := v.(cacheEntry)
		return e.model, e.err
	}
	m, err := build(t)
	v, _ := cache.LoadOrStore(t, cacheEntry{model: m, err: err})
	e := v.(cacheEntry)
	return e.model, e.err
}

// DescribeValue is Describe for the dynamic type of v. A nil v yields nil.
func DescribeValue(v any) (*Model, error) {
	if v == nil {
		return nil, nil
	}
	return Describe(reflect.TypeOf(v))
}

func build(t reflect.Type) (*Model, error) {
	m := &Model{Type: t}
	if t.Kind() != reflect.Struct {
		return m, nil
	}
	seen := make(map[string]bool)
	if err := collect(m, t, nil, seen, map[reflect.Type]bool{t: true}); err != nil {
		return nil, err
	}
	return m, nil
}

func collect(m *Model, t reflect.Type, prefix []int, seen map[string]bool, visiting map[reflect.Type]bool) error {
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && flatten(sf) {
			embedded = append(embedded, sf)
			continue
		}
		u, err := Classify(sf)
		if err != nil {
			return errors.InvalidFormat(t.Name()+"."+sf.Name, err.Error()).WithCause(err)
		}
		if !u.Participates() || seen[sf.Name] {
			continue
		}
		seen[sf.Name] = true
		m.Fields = append(m.Fields, Field{
			Index:      appendIndex(prefix, i),
			Name:       sf.Name,
			Usage:      u,
			Type:       sf.Type,
			Collection: IsHeaderCollection(sf.Type),
		})
	}
	// Embedded fields are promoted after the outer fields so shallower
	// names shadow deeper ones.
	for _, sf := range embedded {
		et := deref(sf.Type)
		if visiting[et] {
			continue
		}
		visiting[et] = true
		if err := collect(m, et, appendIndex(prefix, sf.Index[0]), seen, visiting); err != nil {
			return err
		}
		delete(visiting, et)
	}
	return nil
}

// flatten reports whether an embedded field is promoted rather than treated
// as a field of its own.
func flatten(sf reflect.StructField) bool {
	if _, tagged := sf.Tag.Lookup(TagName); tagged {
		return false
	}
	t := deref(sf.Type)
	if t.Kind() != reflect.Struct {
		return false
	}
	if IsHeaderCollection(sf.Type) || implements(sf.Type, credentialType) {
		return false
	}
	return true
}

func appendIndex(prefix []int, i int) []int {
	out := make([]int, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = i
	return out
}
