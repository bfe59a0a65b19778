package serialization

import (
	"context"
	"io"
	"net/http"

	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/property"
)

// Text writes text/plain bodies from scalars, Stringers and TextMarshalers.
type Text struct {
	Options
}

func (*Text) Name() string        { return NameText }
func (*Text) ContentType() string { return "text/plain" }

// Serialize renders value as text.
func (s *Text) Serialize(ctx context.Context, value any, req *http.Request) error {
	var data []byte
	switch v := value.(type) {
	case io.Reader:
		b, err := io.ReadAll(v)
		if err != nil {
			return errors.Client("read text body", err)
		}
		data = b
	default:
		str, err := property.Text(value)
		if err != nil {
			return errors.Client("serialize text body", err)
		}
		data = []byte(str)
	}
	return writeBody(ctx, req, data, s.ContentType(), true, s.Options)
}

// Raw streams []byte, string or io.Reader values unchanged as
// application/octet-stream. Readers are not buffered.
type Raw struct {
	Options
	// Type overrides the Content-Type.
	Type string
}

func (*Raw) Name() string { return NameRaw }

func (s *Raw) ContentType() string {
	if s.Type != "" {
		return s.Type
	}
	return "application/octet-stream"
}

// Serialize writes value as the request body.
func (s *Raw) Serialize(ctx context.Context, value any, req *http.Request) error {
	if req == nil {
		return errors.ArgumentNull("request")
	}
	switch v := value.(type) {
	case nil:
		return writeBody(ctx, req, nil, s.ContentType(), false, s.Options)
	case []byte:
		return writeBody(ctx, req, v, s.ContentType(), false, s.Options)
	case string:
		return writeBody(ctx, req, []byte(v), s.ContentType(), false, s.Options)
	case io.Reader:
		if s.ContentEncoding != "" {
			b, err := io.ReadAll(v)
			if err != nil {
				return errors.Client("read raw body", err)
			}
			return writeBody(ctx, req, b, s.ContentType(), false, s.Options)
		}
		if err := errors.CheckContext(ctx); err != nil {
			return err
		}
		rc, ok := v.(io.ReadCloser)
		if !ok {
			rc = io.NopCloser(v)
		}
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		req.Body = rc
		req.ContentLength = -1
		req.GetBody = nil
		req.Header.Set("Content-Type", s.ContentType())
		return nil
	}
	return errors.InvalidArgument("value", "raw body must be []byte, string or io.Reader")
}

// IsRawBody reports whether v can be written by Raw.
func IsRawBody(v any) bool {
	switch v.(type) {
	case []byte, string, io.Reader:
		return true
	}
	return false
}
