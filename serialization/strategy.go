package serialization

import (
	"io"
	"reflect"
	"sync"

	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/property"
)

// Kind identifies where a serialization strategy came from.
type Kind int

// Strategy kinds in precedence order.
const (
	None Kind = iota
	Property
	ModelType
	ClientType
)

func (k Kind) String() string {
	switch k {
	case Property:
		return "property"
	case ModelType:
		return "model"
	case ClientType:
		return "client"
	default:
		return "none"
	}
}

// Strategy is the resolved request-body plan of a binding pass.
type Strategy struct {
	Kind       Kind
	Serializer Serializer
	// Field is the body field of a property strategy. Nil for form bodies.
	Field *property.Field
	// Form marks property strategies assembled from form fields.
	Form bool

	desc *property.Model
}

// IsNone reports whether the request has no body.
func (s Strategy) IsNone() bool { return s.Kind == None || s.Serializer == nil }

// Value extracts the value to serialize from model.
func (s Strategy) Value(model any) (any, error) {
	switch s.Kind {
	case ModelType, ClientType:
		return model, nil
	case Property:
		if model == nil {
			return nil, nil
		}
		if s.Field != nil {
			v, ok := s.Field.Value(reflect.ValueOf(model))
			if !ok {
				return nil, nil
			}
			return v.Interface(), nil
		}
		if s.Form {
			return formValue(s.desc, model, s.Serializer.Name() == NameMultipart)
		}
	}
	return nil, nil
}

type plan struct {
	body       *property.Field
	form       bool
	serializer string
}

var plans sync.Map // reflect.Type -> plan

func planFor(desc *property.Model) (plan, error) {
	if v, ok := plans.Load(desc.Type); ok {
		return v.(plan), nil
	}
	var p plan
	for i := range desc.Fields {
		f := &desc.Fields[i]
		u := f.Usage
		switch {
		case u.IsBody():
			if p.body != nil {
				return plan{}, errors.InvalidArgument("body", "model "+desc.Type.String()+" declares more than one body field")
			}
			p.body = f
		case u.IsForm():
			p.form = true
			if u.Serializer != "" {
				p.serializer = u.Serializer
			}
			if isFileType(f.Type) && p.serializer == "" {
				p.serializer = NameMultipart
			}
		}
	}
	if p.form && p.serializer == "" {
		p.serializer = NameForm
	}
	plans.Store(desc.Type, p)
	return p, nil
}

// Resolve picks the request-body strategy. The first match wins: a body or
// form field of the model, a hint on the model, a hint on the client, none.
func Resolve(client, model any, desc *property.Model, opts Options) (Strategy, error) {
	if desc != nil {
		p, err := planFor(desc)
		if err != nil {
			return Strategy{}, err
		}
		if p.body != nil {
			ser, err := bodySerializer(client, model, p.body, opts)
			if err != nil {
				return Strategy{}, err
			}
			return Strategy{Kind: Property, Serializer: ser, Field: p.body, desc: desc}, nil
		}
		if p.form {
			ser, err := Lookup(p.serializer, opts)
			if err != nil {
				return Strategy{}, err
			}
			return Strategy{Kind: Property, Serializer: ser, Form: true, desc: desc}, nil
		}
	}
	if ser := HintOf(model); ser != nil {
		return Strategy{Kind: ModelType, Serializer: ser, desc: desc}, nil
	}
	if ser := HintOf(client); ser != nil {
		return Strategy{Kind: ClientType, Serializer: ser, desc: desc}, nil
	}
	return Strategy{Kind: None}, nil
}

// bodySerializer picks the serializer of a body field: its own serialize
// option, then the model or client hint, then raw for byte and reader
// fields, then JSON.
func bodySerializer(client, model any, f *property.Field, opts Options) (Serializer, error) {
	if name := f.Usage.Serializer; name != "" {
		return Lookup(name, opts)
	}
	if ser := HintOf(model); ser != nil {
		return ser, nil
	}
	if ser := HintOf(client); ser != nil {
		return ser, nil
	}
	if isRawType(f.Type) {
		return &Raw{Options: opts}, nil
	}
	return &JSON{Options: opts}, nil
}

var (
	readerType    = reflect.TypeOf((*io.Reader)(nil)).Elem()
	fileFieldType = reflect.TypeOf(FileField{})
)

func isRawType(t reflect.Type) bool {
	if t.Implements(readerType) {
		return true
	}
	switch t.Kind() {
	case reflect.String:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	}
	return false
}

func isFileType(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return t == fileFieldType
}

func formValue(desc *property.Model, model any, multipart bool) (any, error) {
	rv := reflect.ValueOf(model)
	var body MultipartBody
	for i := range desc.Fields {
		f := &desc.Fields[i]
		if !f.Usage.IsForm() {
			continue
		}
		fv, ok := f.Value(rv)
		if !ok {
			continue
		}
		if isFileType(f.Type) {
			body.Files = appendFiles(body.Files, fv, f.WireName())
			continue
		}
		if property.IsMap(fv) {
			pairs, err := property.Pairs(fv, f.Usage.Format)
			if err != nil {
				return nil, errors.Client("render form field "+f.Name, err)
			}
			body.Fields = append(body.Fields, pairs...)
			continue
		}
		vals, err := property.Values(fv, f.Usage.Format)
		if err != nil {
			return nil, errors.Client("render form field "+f.Name, err)
		}
		for _, s := range vals {
			body.Fields.Add(f.WireName(), s)
		}
	}
	if multipart {
		return &body, nil
	}
	return body.Fields, nil
}

func appendFiles(files []FileField, v reflect.Value, name string) []FileField {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return files
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			files = appendFiles(files, v.Index(i), name)
		}
		return files
	}
	ff := v.Interface().(FileField)
	if ff.FieldName == "" {
		ff.FieldName = name
	}
	return append(files, ff)
}
