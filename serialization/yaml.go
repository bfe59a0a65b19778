package serialization

import (
	"context"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/httpbind/errors"
)

// YAML writes application/yaml bodies.
type YAML struct {
	Options
}

func (*YAML) Name() string        { return NameYAML }
func (*YAML) ContentType() string { return "application/yaml" }

// Serialize encodes value as YAML.
func (s *YAML) Serialize(ctx context.Context, value any, req *http.Request) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return errors.Client("serialize yaml body", err)
	}
	return writeBody(ctx, req, data, s.ContentType(), true, s.Options)
}
