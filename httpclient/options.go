package httpclient

import (
	"net/http"
	"reflect"

	"github.com/kbukum/httpbind/binding"
	"github.com/kbukum/httpbind/contentencoding"
	"github.com/kbukum/httpbind/credentials"
	"github.com/kbukum/httpbind/deserialization"
	"github.com/kbukum/httpbind/logger"
	"github.com/kbukum/httpbind/observability"
)

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the transport built from Config.TLS.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithProviders sets the deserialization registry. The default is
// deserialization.Default().
func WithProviders(r *deserialization.Registry) Option {
	return func(c *Client) { c.providers = r }
}

// WithDecoders sets the content decoder registry used for responses and
// Accept-Encoding. The default is contentencoding.Default().
func WithDecoders(r *contentencoding.Registry) Option {
	return func(c *Client) { c.decoders = r }
}

// WithBinder binds models of type t with b instead of the default binder.
func WithBinder(t reflect.Type, b binding.Binder) Option {
	return func(c *Client) { c.custom = append(c.custom, customBinder{t, b}) }
}

// WithCredential sets the default credential, replacing Config.Auth.
func WithCredential(cred credentials.Credential) Option {
	return func(c *Client) { c.credential = cred }
}

// WithTransform substitutes models before they are bound.
func WithTransform(fn binding.TransformFunc) Option {
	return func(c *Client) { c.transform = fn }
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records calls and binding passes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

type customBinder struct {
	t reflect.Type
	b binding.Binder
}

// CallOption configures one call.
type CallOption func(*call)

type call struct {
	method     string
	path       string
	resultType reflect.Type
	headers    map[string]string
}

// WithMethod sets the HTTP method instead of inferring it.
func WithMethod(method string) CallOption {
	return func(c *call) { c.method = method }
}

// WithPath appends path to the base URL. An absolute URL replaces it.
func WithPath(path string) CallOption {
	return func(c *call) { c.path = path }
}

// WithResult sets the result type of Send. The default is
// binding.NoContent.
func WithResult(t reflect.Type) CallOption {
	return func(c *call) { c.resultType = t }
}

// WithHeader adds a header to this call unless the model sets it.
func WithHeader(name, value string) CallOption {
	return func(c *call) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[name] = value
	}
}
