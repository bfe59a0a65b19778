package serialization

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/kbukum/httpbind/errors"
)

// JSON writes application/json bodies.
type JSON struct {
	Options
}

func (*JSON) Name() string        { return NameJSON }
func (*JSON) ContentType() string { return "application/json" }

// Serialize encodes value as JSON.
func (s *JSON) Serialize(ctx context.Context, value any, req *http.Request) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Client("serialize json body", err)
	}
	return writeBody(ctx, req, data, s.ContentType(), true, s.Options)
}
