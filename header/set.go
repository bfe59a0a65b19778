// Package header provides an ordered, case-insensitive header multimap.
//
// A Set remembers the order in which names were first added and the casing
// used at that point. Lookups ignore case. Values for one name are kept as a
// list and joined with commas when written to an http.Header.
package header

import (
	"net/http"
	"sort"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/kbukum/httpbind/errors"
)

// Collection is implemented by header-collection types. A model field whose
// type implements Collection is classified as a header field without a hint
// and is flattened into the outer set by the header mapper.
type Collection interface {
	// Range calls fn for every name in order until fn returns false.
	Range(fn func(name string, values []string) bool)
}

// Set is an ordered multimap of header names to values.
// The zero value is an empty set ready to use.
type Set struct {
	names  []string
	values [][]string
	index  map[string]int
}

// compile-time assertion
var _ Collection = (*Set)(nil)

// New creates an empty Set.
func New() *Set {
	return &Set{index: make(map[string]int)}
}

// FromHTTP copies an http.Header into a new Set. Names are added in sorted
// order because http.Header does not preserve insertion order.
func FromHTTP(h http.Header) *Set {
	s := New()
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.addUnchecked(name, h[name]...)
	}
	return s
}

// Add appends value to the values stored under name.
func (s *Set) Add(name, value string) error {
	return s.AddValues(name, value)
}

// AddValues appends values to the values stored under name.
func (s *Set) AddValues(name string, values ...string) error {
	if err := validate(name, values); err != nil {
		return err
	}
	s.addUnchecked(name, values...)
	return nil
}

// Replace stores values under name, discarding previous values.
func (s *Set) Replace(name string, values ...string) error {
	if err := validate(name, values); err != nil {
		return err
	}
	s.Del(name)
	s.addUnchecked(name, values...)
	return nil
}

// Values returns the values stored under name, or nil.
func (s *Set) Values(name string) []string {
	if s == nil || s.index == nil {
		return nil
	}
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return s.values[i]
}

// Get returns the comma-joined values stored under name.
func (s *Set) Get(name string) string {
	return strings.Join(s.Values(name), ",")
}

// Has reports whether name is present.
func (s *Set) Has(name string) bool {
	if s == nil || s.index == nil {
		return false
	}
	_, ok := s.index[strings.ToLower(name)]
	return ok
}

// Del removes name and its values.
func (s *Set) Del(name string) {
	if s == nil || s.index == nil {
		return
	}
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return
	}
	s.names = append(s.names[:i], s.names[i+1:]...)
	s.values = append(s.values[:i], s.values[i+1:]...)
	s.reindex()
}

// Len returns the number of distinct names.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the names in insertion order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Range calls fn for every name in insertion order until fn returns false.
func (s *Set) Range(fn func(name string, values []string) bool) {
	if s == nil {
		return
	}
	for i, name := range s.names {
		if !fn(name, s.values[i]) {
			return
		}
	}
}

// Merge appends every entry of other into s.
func (s *Set) Merge(other *Set) {
	other.Range(func(name string, values []string) bool {
		s.addUnchecked(name, values...)
		return true
	})
}

// Clone returns a deep copy of s.
func (s *Set) Clone() *Set {
	c := New()
	c.Merge(s)
	return c
}

// Apply writes the set into h, one comma-joined value per name. Existing
// values in h for the same names are replaced.
func (s *Set) Apply(h http.Header) {
	s.Range(func(name string, values []string) bool {
		h.Set(name, strings.Join(values, ","))
		return true
	})
}

func (s *Set) addUnchecked(name string, values ...string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	key := strings.ToLower(name)
	i, ok := s.index[key]
	if !ok {
		i = len(s.names)
		s.index[key] = i
		s.names = append(s.names, name)
		s.values = append(s.values, nil)
	}
	s.values[i] = append(s.values[i], values...)
}

func (s *Set) reindex() {
	s.index = make(map[string]int, len(s.names))
	for i, name := range s.names {
		s.index[strings.ToLower(name)] = i
	}
}

func validate(name string, values []string) error {
	if name == "" {
		return errors.ArgumentNull("name")
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return errors.InvalidArgument("header", "invalid header name "+quote(name))
	}
	for _, v := range values {
		if !httpguts.ValidHeaderFieldValue(v) {
			return errors.InvalidArgument("header", "invalid value for header "+quote(name))
		}
	}
	return nil
}

func quote(s string) string { return `"` + s + `"` }
