package binding

import (
	"reflect"

	"github.com/kbukum/httpbind/deserialization"
	"github.com/kbukum/httpbind/serialization"
)

// suppressesImplicit reports whether a serialization hint takes over the
// whole model, so implicitly classified fields do not reach the URL or the
// headers. Explicitly tagged fields are unaffected.
func suppressesImplicit(client, model any) bool {
	if isNilModel(model) {
		return false
	}
	return serialization.HintOf(model) != nil ||
		deserialization.HintOf(model) != nil ||
		serialization.HintOf(client) != nil
}

// isNilModel reports whether model is nil or a nil pointer.
func isNilModel(model any) bool {
	if model == nil {
		return true
	}
	v := reflect.ValueOf(model)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
