package binding

import (
	"fmt"
	"net/http"
	"reflect"
	"sort"

	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/header"
	"github.com/kbukum/httpbind/property"
)

// MapHeaders projects the header fields of model into a header set.
//
// Scalar and list fields add one value per element under the override name
// or the field name. Header collections and maps are flattened: each inner
// key becomes Outer.Inner, or just Inner when the override name is set to
// the empty string. A nil model yields an empty set.
func MapHeaders(client, model any) (set *header.Set, err error) {
	if client == nil {
		return nil, errors.ArgumentNull("client")
	}
	set = header.New()
	if isNilModel(model) {
		return set, nil
	}

	desc, err := property.DescribeValue(model)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			set, err = nil, errors.Client("map headers", fmt.Errorf("panic reading model: %v", r))
		}
	}()

	implicit := !suppressesImplicit(client, model)
	root := reflect.ValueOf(model)
	for i := range desc.Fields {
		f := &desc.Fields[i]
		if !f.Usage.IsHeader() || (!f.Usage.Explicit && !implicit) {
			continue
		}
		fv, ok := f.Value(root)
		if !ok {
			continue
		}
		if err := mapHeaderField(set, f, fv); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func mapHeaderField(set *header.Set, f *property.Field, fv reflect.Value) error {
	if f.Collection || property.IsMap(fv) {
		return flattenHeaders(set, f, fv)
	}
	vals, err := property.Values(fv, f.Usage.Format)
	if err != nil {
		return readError(f, err)
	}
	if len(vals) == 0 {
		return nil
	}
	name := f.Usage.Name
	if name == "" {
		name = f.Name
	}
	return set.AddValues(name, vals...)
}

func flattenHeaders(set *header.Set, f *property.Field, fv reflect.Value) error {
	prefix := ""
	if !f.Usage.HasName || f.Usage.Name != "" {
		prefix = f.WireName() + "."
	}

	add := func(name string, values []string) error {
		if f.Usage.Format != "" {
			formatted := make([]string, 0, len(values))
			for _, v := range values {
				s, err := property.Format(v, f.Usage.Format)
				if err != nil {
					return readError(f, err)
				}
				formatted = append(formatted, s)
			}
			values = formatted
		}
		return set.AddValues(prefix+name, values...)
	}

	for fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface {
		if fv.IsNil() {
			return nil
		}
		if c, ok := fv.Interface().(header.Collection); ok {
			return rangeCollection(c, add)
		}
		fv = fv.Elem()
	}

	switch v := fv.Interface().(type) {
	case http.Header:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := add(name, v[name]); err != nil {
				return err
			}
		}
		return nil
	case header.Collection:
		return rangeCollection(v, add)
	}

	if fv.CanAddr() {
		if c, ok := fv.Addr().Interface().(header.Collection); ok {
			return rangeCollection(c, add)
		}
	}

	pairs, err := property.Pairs(fv, "")
	if err != nil {
		return readError(f, err)
	}
	for _, p := range pairs {
		if err := add(p.Key, []string{p.Value}); err != nil {
			return err
		}
	}
	return nil
}

func rangeCollection(c header.Collection, add func(string, []string) error) error {
	var err error
	c.Range(func(name string, values []string) bool {
		err = add(name, values)
		return err == nil
	})
	return err
}
