package credentials

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/kbukum/httpbind/errors"
)

// Credential authenticates an outbound request.
type Credential interface {
	Apply(req *http.Request) error
}

// Basic uses HTTP Basic authentication.
type Basic struct {
	Username string
	Password string
}

// Apply sets the Authorization header.
func (b *Basic) Apply(req *http.Request) error {
	if req == nil {
		return errors.ArgumentNull("request")
	}
	token := base64.StdEncoding.EncodeToString([]byte(b.Username + ":" + b.Password))
	req.Header.Set("Authorization", "Basic "+token)
	return nil
}

// Bearer uses a static bearer token.
type Bearer struct {
	Token string
}

// Apply sets the Authorization header.
func (b *Bearer) Apply(req *http.Request) error {
	if req == nil {
		return errors.ArgumentNull("request")
	}
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// API key placements.
const (
	InHeader = "header"
	InQuery  = "query"
)

const defaultAPIKeyName = "X-API-Key"

// APIKey sends a key in a header (default) or a query parameter.
type APIKey struct {
	Key string
	// Name is the header or query parameter name. Defaults to "X-API-Key".
	Name string
	// In is InHeader (default) or InQuery.
	In string
}

// Apply places the key on the request.
func (a *APIKey) Apply(req *http.Request) error {
	if req == nil {
		return errors.ArgumentNull("request")
	}
	name := a.Name
	if name == "" {
		name = defaultAPIKeyName
	}
	switch strings.ToLower(a.In) {
	case InQuery:
		q := req.URL.Query()
		q.Set(name, a.Key)
		req.URL.RawQuery = q.Encode()
	case "", InHeader:
		req.Header.Set(name, a.Key)
	default:
		return errors.InvalidArgument("in", "api key placement must be header or query")
	}
	return nil
}

// Func adapts a function to the Credential interface.
type Func func(req *http.Request) error

// Apply calls f.
func (f Func) Apply(req *http.Request) error {
	if req == nil {
		return errors.ArgumentNull("request")
	}
	return f(req)
}
