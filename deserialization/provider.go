// Package deserialization converts response streams into typed results.
//
// Providers are consulted in registry order; the first whose CanDeserialize
// accepts the stream and result type performs the conversion. The default
// order is JSON, XML, PlainText, so plain text is the universal fallback.
package deserialization

import (
	"context"
	"io"
	"reflect"
	"strings"

	"github.com/kbukum/httpbind/charset"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/response"
)

// Provider converts a response stream into a value of a result type.
type Provider interface {
	Name() string
	CanDeserialize(s *response.Stream, t reflect.Type) bool
	Deserialize(ctx context.Context, s *response.Stream, t reflect.Type) (any, error)
}

// Hinter is implemented by result, model and client types that choose the
// response provider directly. A nil result means no hint.
type Hinter interface {
	ResponseDeserializer() Provider
}

var (
	hinterType = reflect.TypeOf((*Hinter)(nil)).Elem()
	readerType = reflect.TypeOf((*io.Reader)(nil)).Elem()
)

// HintOf returns the provider hinted by v, or nil.
func HintOf(v any) Provider {
	if v == nil {
		return nil
	}
	if h, ok := v.(Hinter); ok {
		return h.ResponseDeserializer()
	}
	return HintOfType(reflect.TypeOf(v))
}

// HintOfType returns the provider hinted by a type, calling the hint method
// on a fresh zero value.
func HintOfType(t reflect.Type) Provider {
	if t == nil {
		return nil
	}
	switch {
	case t.Kind() == reflect.Pointer && t.Implements(hinterType):
		return reflect.New(t.Elem()).Interface().(Hinter).ResponseDeserializer()
	case t.Kind() == reflect.Interface:
		return nil
	case t.Implements(hinterType):
		return reflect.Zero(t).Interface().(Hinter).ResponseDeserializer()
	case reflect.PointerTo(t).Implements(hinterType):
		return reflect.New(t).Interface().(Hinter).ResponseDeserializer()
	}
	return nil
}

// readText reads the whole body and converts it to UTF-8. The charset is the
// configured one, else the response charset, else def.
func readText(ctx context.Context, s *response.Stream, configured, def string) ([]byte, error) {
	data, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return data, nil
	}
	name := configured
	if name == "" {
		name = s.Charset()
	}
	if name == "" {
		name = def
	}
	out, err := charset.Decode(data, name)
	if err != nil {
		return nil, errors.Client("decode response charset", err)
	}
	return out, nil
}

// mediaMatches reports whether the stream's media type is one of types or
// carries one of the structured-syntax suffixes.
func mediaMatches(s *response.Stream, types []string, suffix string) bool {
	mt := s.MediaType()
	if mt == "" {
		return false
	}
	for _, t := range types {
		if mt == t {
			return true
		}
	}
	return suffix != "" && strings.HasSuffix(mt, suffix)
}

// isStructured reports whether t is a non-primitive, non-string type that a
// document format can decode into.
func isStructured(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(readerType) {
		return false
	}
	switch t.Kind() {
	case reflect.Interface:
		return t.NumMethod() == 0
	case reflect.Struct:
		return t != timeType && !t.Implements(textUnmarshalerType) && !reflect.PointerTo(t).Implements(textUnmarshalerType)
	case reflect.Map:
		return true
	case reflect.Slice, reflect.Array:
		return t.Elem().Kind() != reflect.Uint8
	}
	return false
}

func zero(t reflect.Type) any {
	return reflect.Zero(t).Interface()
}
