package binding

import (
	"net/url"
	"reflect"

	"github.com/kbukum/httpbind/credentials"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/property"
)

// MapCredentials reduces the credential fields of model to a single
// credential.
//
// No non-nil credential yields nil. Exactly one is returned as is. Two or
// more are collected into a *credentials.Cache keyed by field name and
// scoped to uri's authority. A *credentials.Cache among two or more values
// is rejected because the merge would be ambiguous.
func MapCredentials(model any, uri *url.URL) (credentials.Credential, error) {
	if isNilModel(model) {
		return nil, nil
	}
	desc, err := property.DescribeValue(model)
	if err != nil {
		return nil, err
	}

	type named struct {
		name string
		cred credentials.Credential
	}
	var found []named
	root := reflect.ValueOf(model)
	for i := range desc.Fields {
		f := &desc.Fields[i]
		if !f.Usage.IsCredentials() {
			continue
		}
		fv, ok := f.Value(root)
		if !ok {
			continue
		}
		if cred := credentialOf(fv); cred != nil {
			found = append(found, named{name: f.WireName(), cred: cred})
		}
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0].cred, nil
	}

	for _, n := range found {
		if _, ok := n.cred.(*credentials.Cache); ok {
			return nil, errors.InvalidArgument("credential",
				"field "+n.name+" holds a credential cache and cannot be combined with other credentials")
		}
	}
	if uri == nil {
		return nil, errors.ArgumentNull("uri")
	}
	cache := credentials.NewCache()
	for _, n := range found {
		if err := cache.Add(uri, n.name, n.cred); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func credentialOf(v reflect.Value) credentials.Credential {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		if v.IsNil() {
			return nil
		}
	}
	if cred, ok := v.Interface().(credentials.Credential); ok {
		return cred
	}
	if v.CanAddr() {
		if cred, ok := v.Addr().Interface().(credentials.Credential); ok {
			return cred
		}
	}
	return nil
}
