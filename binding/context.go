package binding

import (
	"reflect"

	"github.com/kbukum/httpbind/credentials"
	"github.com/kbukum/httpbind/header"
	"github.com/kbukum/httpbind/property"
	"github.com/kbukum/httpbind/serialization"
)

// Endpoint describes the remote endpoint a call is bound against.
type Endpoint struct {
	Name    string
	BaseURL string
}

// Context is the per-call state of one binding pass. The binder fills the
// resolved fields stage by stage; a field is only set once its stage has
// succeeded.
type Context struct {
	Client   any
	Model    any
	Endpoint *Endpoint
	// BaseURL is the URL template, e.g. "https://h/users/{id}".
	BaseURL string
	// Method overrides method inference when set.
	Method string

	InputType  reflect.Type
	OutputType reflect.Type

	// Resolved by RequestBinder.Bind.
	TransformedModel any
	Descriptor       *property.Model
	RequestURL       string
	Headers          *header.Set
	Credentials      credentials.Credential
	Strategy         serialization.Strategy
}

// NewContext creates a binding context for one call.
func NewContext(client, model any, baseURL string) *Context {
	bc := &Context{
		Client:  client,
		Model:   model,
		BaseURL: baseURL,
	}
	if model != nil {
		bc.InputType = reflect.TypeOf(model)
	}
	return bc
}

// reset clears the values resolved by a previous Bind.
func (bc *Context) reset() {
	bc.TransformedModel = nil
	bc.Descriptor = nil
	bc.RequestURL = ""
	bc.Headers = nil
	bc.Credentials = nil
	bc.Strategy = serialization.Strategy{}
}

// CurrentModel returns the transformed model once the transform stage has
// run, and the original model before that.
func (bc *Context) CurrentModel() any {
	if bc.TransformedModel != nil {
		return bc.TransformedModel
	}
	return bc.Model
}
