package deserialization

import (
	"context"
	"reflect"

	json "github.com/goccy/go-json"

	"github.com/kbukum/httpbind/charset"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/response"
)

var jsonTypes = []string{"application/json"}

// JSON decodes application/json and +json responses into structured types.
type JSON struct {
	// Charset overrides the response charset.
	Charset string
}

func (*JSON) Name() string { return "json" }

func (*JSON) CanDeserialize(s *response.Stream, t reflect.Type) bool {
	return s != nil && t != nil && isStructured(t) && mediaMatches(s, jsonTypes, "+json")
}

func (p *JSON) Deserialize(ctx context.Context, s *response.Stream, t reflect.Type) (any, error) {
	data, err := readText(ctx, s, p.Charset, charset.UTF8)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return zero(t), nil
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, errors.Client("deserialize json response", err)
	}
	return ptr.Elem().Interface(), nil
}
