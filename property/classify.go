package property

import (
	"encoding"
	"fmt"
	"net/http"
	"net/url"
	"reflect"

	"github.com/kbukum/httpbind/credentials"
	"github.com/kbukum/httpbind/header"
)

var (
	httpHeaderType    = reflect.TypeOf(http.Header(nil))
	urlValuesType     = reflect.TypeOf(url.Values(nil))
	collectionType    = reflect.TypeOf((*header.Collection)(nil)).Elem()
	credentialType    = reflect.TypeOf((*credentials.Credential)(nil)).Elem()
	stringerType      = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Classify resolves the usage of a struct field. Explicit kind flags in the
// tag win outright; otherwise the field's type decides. Unexported fields
// never participate.
func Classify(f reflect.StructField) (Usage, error) {
	if !f.IsExported() {
		return Usage{}, nil
	}
	tag, tagged := f.Tag.Lookup(TagName)
	var u Usage
	if tagged {
		var err error
		if u, err = ParseTag(tag); err != nil {
			return Usage{}, err
		}
	}
	if !u.Explicit {
		u.Kind = ImplicitKind(f.Type)
	}
	return u, nil
}

// ImplicitKind classifies a type that carries no explicit hint.
// It returns Header for header collections, Credentials for credential
// types, Implicit for scalars and simple collections, and 0 otherwise.
func ImplicitKind(t reflect.Type) Kind {
	if t == nil {
		return 0
	}
	switch {
	case IsHeaderCollection(t):
		return Header
	case implements(t, credentialType):
		return Credentials
	}
	base := deref(t)
	if t == urlValuesType || base == urlValuesType {
		return Implicit
	}
	switch base.Kind() {
	case reflect.Slice, reflect.Array:
		if base.Elem().Kind() == reflect.Uint8 || isScalar(base.Elem()) {
			return Implicit
		}
	case reflect.Map:
		if isScalar(base.Key()) && (isScalar(base.Elem()) || isScalarList(base.Elem())) {
			return Implicit
		}
	default:
		if isScalar(base) {
			return Implicit
		}
	}
	return 0
}

// IsHeaderCollection reports whether t (or *t) is a header collection.
func IsHeaderCollection(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if deref(t) == httpHeaderType {
		return true
	}
	return implements(t, collectionType)
}

func implements(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	return t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(iface)
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isScalar(t reflect.Type) bool {
	t = deref(t)
	if implements(t, textMarshalerType) || implements(t, stringerType) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isScalarList(t reflect.Type) bool {
	t = deref(t)
	return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && isScalar(t.Elem())
}
