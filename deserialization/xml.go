package deserialization

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"reflect"

	"github.com/kbukum/httpbind/charset"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/response"
)

var xmlTypes = []string{"application/xml", "text/xml"}

// XML decodes application/xml, text/xml and +xml responses into structured
// types.
type XML struct {
	// Charset overrides the response charset.
	Charset string
}

func (*XML) Name() string { return "xml" }

func (*XML) CanDeserialize(s *response.Stream, t reflect.Type) bool {
	return s != nil && t != nil && isStructured(t) && mediaMatches(s, xmlTypes, "+xml")
}

func (p *XML) Deserialize(ctx context.Context, s *response.Stream, t reflect.Type) (any, error) {
	data, err := readText(ctx, s, p.Charset, charset.UTF8)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return zero(t), nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	// The body is already UTF-8; a declared encoding is informational.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	ptr := reflect.New(t)
	if err := dec.Decode(ptr.Interface()); err != nil {
		return nil, errors.Client("deserialize xml response", err)
	}
	return ptr.Elem().Interface(), nil
}
