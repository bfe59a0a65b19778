package deserialization

import (
	"bytes"
	"context"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/httpbind/charset"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/response"
)

var yamlTypes = []string{"application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml"}

// YAML decodes YAML responses into structured types. It is not part of the
// default registry.
type YAML struct {
	// Charset overrides the response charset.
	Charset string
}

func (*YAML) Name() string { return "yaml" }

func (*YAML) CanDeserialize(s *response.Stream, t reflect.Type) bool {
	return s != nil && t != nil && isStructured(t) && mediaMatches(s, yamlTypes, "+yaml")
}

func (p *YAML) Deserialize(ctx context.Context, s *response.Stream, t reflect.Type) (any, error) {
	data, err := readText(ctx, s, p.Charset, charset.UTF8)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return zero(t), nil
	}
	ptr := reflect.New(t)
	if err := yaml.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, errors.Client("deserialize yaml response", err)
	}
	return ptr.Elem().Interface(), nil
}
