package serialization

import (
	"context"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/property"
)

// FormFields is an ordered list of form key/value pairs.
type FormFields []property.Pair

// Add appends a pair.
func (f *FormFields) Add(key, value string) {
	*f = append(*f, property.Pair{Key: key, Value: value})
}

// Encode returns the application/x-www-form-urlencoded form of f, keeping
// pair order.
func (f FormFields) Encode() string {
	var b strings.Builder
	for i, p := range f {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Form writes application/x-www-form-urlencoded bodies.
type Form struct {
	Options
}

func (*Form) Name() string        { return NameForm }
func (*Form) ContentType() string { return "application/x-www-form-urlencoded" }

// Serialize accepts FormFields, url.Values, map[string]string or a struct
// whose participating fields become pairs in declaration order.
func (s *Form) Serialize(ctx context.Context, value any, req *http.Request) error {
	fields, err := ToFormFields(value)
	if err != nil {
		return err
	}
	return writeBody(ctx, req, []byte(fields.Encode()), s.ContentType(), s.Charset != "", s.Options)
}

// ToFormFields converts a form value to ordered pairs.
func ToFormFields(value any) (FormFields, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case FormFields:
		return v, nil
	case *FormFields:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case url.Values:
		return pairsOf(reflect.ValueOf(v))
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(FormFields, 0, len(keys))
		for _, k := range keys {
			out.Add(k, v[k])
		}
		return out, nil
	}

	rv := reflect.ValueOf(value)
	if property.IsMap(rv) {
		return pairsOf(rv)
	}
	desc, err := property.Describe(rv.Type())
	if err != nil {
		return nil, err
	}
	var out FormFields
	for i := range desc.Fields {
		f := &desc.Fields[i]
		u := f.Usage
		if !u.IsForm() && !u.IsImplicit() || isFileType(f.Type) {
			continue
		}
		fv, ok := f.Value(rv)
		if !ok {
			continue
		}
		if property.IsMap(fv) {
			pairs, err := property.Pairs(fv, u.Format)
			if err != nil {
				return nil, errors.Client("render form field "+f.Name, err)
			}
			out = append(out, pairs...)
			continue
		}
		vals, err := property.Values(fv, u.Format)
		if err != nil {
			return nil, errors.Client("render form field "+f.Name, err)
		}
		for _, s := range vals {
			out.Add(f.WireName(), s)
		}
	}
	return out, nil
}

func pairsOf(v reflect.Value) (FormFields, error) {
	pairs, err := property.Pairs(v, "")
	if err != nil {
		return nil, errors.Client("render form fields", err)
	}
	return FormFields(pairs), nil
}
