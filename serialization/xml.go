package serialization

import (
	"context"
	"encoding/xml"
	"net/http"

	"github.com/kbukum/httpbind/errors"
)

// XML writes application/xml bodies.
type XML struct {
	Options
	// Declaration prepends an <?xml ...?> declaration naming the charset.
	Declaration bool
}

func (*XML) Name() string        { return NameXML }
func (*XML) ContentType() string { return "application/xml" }

// Serialize encodes value as XML.
func (s *XML) Serialize(ctx context.Context, value any, req *http.Request) error {
	data, err := xml.Marshal(value)
	if err != nil {
		return errors.Client("serialize xml body", err)
	}
	if s.Declaration {
		cs := s.Charset
		if cs == "" {
			cs = "UTF-8"
		}
		data = append([]byte(`<?xml version="1.0" encoding="`+cs+`"?>`+"\n"), data...)
	}
	return writeBody(ctx, req, data, s.ContentType(), true, s.Options)
}
