package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/httpbind/binding"
	"github.com/kbukum/httpbind/contentencoding"
	"github.com/kbukum/httpbind/credentials"
	"github.com/kbukum/httpbind/deserialization"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/header"
	"github.com/kbukum/httpbind/logger"
	"github.com/kbukum/httpbind/observability"
	"github.com/kbukum/httpbind/response"
	"github.com/kbukum/httpbind/serialization"
)

const (
	headerUserAgent = "User-Agent"
	headerRequestID = "X-Request-ID"
	// maxErrorBody bounds the body kept on a status error.
	maxErrorBody = 4 << 10
)

var (
	noContentType = reflect.TypeOf(binding.NoContent{})
	streamType    = reflect.TypeOf((*response.Stream)(nil))
)

// Client sends models bound by the binding package and converts the
// responses into typed results.
type Client struct {
	config       Config
	httpClient   *http.Client
	streamClient *http.Client
	transport    http.RoundTripper

	binders    *binding.Registry
	responses  *binding.ResponseBinder
	providers  *deserialization.Registry
	decoders   *contentencoding.Registry
	serializer serialization.Serializer
	provider   deserialization.Provider
	credential credentials.Credential
	transform  binding.TransformFunc
	custom     []customBinder

	logger  *logger.Logger
	metrics *observability.Metrics
}

// compile-time assertions
var (
	_ serialization.Hinter   = (*Client)(nil)
	_ deserialization.Hinter = (*Client)(nil)
)

// New creates a client for the endpoint described by cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
		c.transport = transport
	}
	c.httpClient = &http.Client{Transport: c.transport, Timeout: cfg.Timeout}
	// Streams outlive the call; their context bounds them.
	c.streamClient = &http.Client{Transport: c.transport}

	var err error
	if c.serializer, err = cfg.requestSerializer(); err != nil {
		return nil, err
	}
	if c.provider, err = cfg.responseProvider(); err != nil {
		return nil, err
	}
	if c.credential == nil {
		c.credential = cfg.Auth.Credential()
	}
	if c.providers == nil {
		c.providers = deserialization.Default()
	}
	if c.decoders == nil {
		c.decoders = contentencoding.Default()
	}
	if c.logger == nil && cfg.Logging.Level != "" {
		c.logger = logger.New(&cfg.Logging, serviceName(cfg.Name))
	}

	bopts := []binding.Option{
		binding.WithSerializationOptions(cfg.serializationOptions()),
		binding.WithProviders(c.providers),
		binding.WithMetrics(c.metrics),
	}
	if c.logger != nil {
		bopts = append(bopts, binding.WithLogger(c.logger))
	}
	if c.transform != nil {
		bopts = append(bopts, binding.WithTransform(c.transform))
	}
	c.binders = binding.NewRegistry(binding.NewRequestBinder(bopts...))
	c.responses = binding.NewResponseBinder(bopts...)
	for _, cb := range c.custom {
		if err := c.binders.Register(cb.t, cb.b); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func serviceName(name string) string {
	if name == "" {
		return "httpbind"
	}
	return name
}

// Config returns the configuration with defaults applied.
func (c *Client) Config() Config { return c.config }

// Binders returns the per-type binder registry.
func (c *Client) Binders() *binding.Registry { return c.binders }

// Providers returns the deserialization registry.
func (c *Client) Providers() *deserialization.Registry { return c.providers }

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client { return c.httpClient }

// RequestSerializer returns the serializer named by Config.Serialization.
func (c *Client) RequestSerializer() serialization.Serializer { return c.serializer }

// ResponseDeserializer returns the provider named by Config.Deserialization.
func (c *Client) ResponseDeserializer() deserialization.Provider { return c.provider }

// NewContext creates the binding context of one call against model.
func (c *Client) NewContext(model any, opts ...CallOption) *binding.Context {
	return c.newContext(model, newCall(opts))
}

func (c *Client) newContext(model any, cl call) *binding.Context {
	bc := binding.NewContext(c, model, c.resolveURL(cl.path))
	bc.Method = cl.method
	bc.Endpoint = &binding.Endpoint{Name: c.config.Name, BaseURL: c.config.BaseURL}
	return bc
}

func newCall(opts []CallOption) call {
	var cl call
	for _, opt := range opts {
		opt(&cl)
	}
	return cl
}

// resolveURL appends path to the base URL ahead of its query and fragment.
func (c *Client) resolveURL(path string) string {
	base := c.config.BaseURL
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	rest := ""
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base, rest = base[:i], base[i:]
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/") + rest
}

// Execute sends the call described by bc and reads the response as
// resultType. The response stream is closed before Execute returns unless
// the result is the stream itself.
func (c *Client) Execute(ctx context.Context, bc *binding.Context, resultType reflect.Type) (any, error) {
	return c.execute(ctx, bc, resultType, call{})
}

// Send binds model and reads the response as the WithResult type,
// binding.NoContent by default.
func (c *Client) Send(ctx context.Context, model any, opts ...CallOption) (any, error) {
	cl := newCall(opts)
	resultType := cl.resultType
	if resultType == nil {
		resultType = noContentType
	}
	return c.execute(ctx, c.newContext(model, cl), resultType, cl)
}

// Do binds model, sends it and reads the response as T. When T is
// *response.Stream or an io interface the stream implements, the caller
// owns the returned stream and must close it.
func Do[T any](ctx context.Context, c *Client, model any, opts ...CallOption) (T, error) {
	var zero T
	if c == nil {
		return zero, errors.ArgumentNull("client")
	}
	cl := newCall(opts)
	resultType := reflect.TypeFor[T]()
	result, err := c.execute(ctx, c.newContext(model, cl), resultType, cl)
	if err != nil || result == nil {
		return zero, err
	}
	out, ok := result.(T)
	if !ok {
		return zero, errors.Client("convert response", fmt.Errorf("provider returned %T, want %s", result, resultType))
	}
	return out, nil
}

// Stream binds model, sends it and returns the response stream without
// reading it. The caller must close the stream. Config.Timeout does not
// apply; ctx bounds the call.
func Stream(ctx context.Context, c *Client, model any, opts ...CallOption) (s *response.Stream, err error) {
	if c == nil {
		return nil, errors.ArgumentNull("client")
	}
	cl := newCall(opts)
	bc := c.newContext(model, cl)
	ctx, pass := c.startCall(ctx, bc)
	defer func() { c.endCall(ctx, pass, bc, err) }()
	return c.open(ctx, bc, cl, c.streamClient)
}

func (c *Client) execute(ctx context.Context, bc *binding.Context, resultType reflect.Type, cl call) (result any, err error) {
	if bc == nil {
		return nil, errors.ArgumentNull("context")
	}
	if resultType == nil {
		return nil, errors.ArgumentNull("resultType")
	}
	ctx, pass := c.startCall(ctx, bc)
	defer func() { c.endCall(ctx, pass, bc, err) }()

	hc := c.httpClient
	if isStreamResult(resultType) {
		hc = c.streamClient
	}
	s, err := c.open(ctx, bc, cl, hc)
	if err != nil {
		return nil, err
	}
	handed := false
	defer func() {
		if !handed {
			_ = s.Close()
		}
	}()

	result, err = c.responses.Read(ctx, bc, s, resultType)
	if err != nil {
		if errors.IsCanceled(err) {
			return nil, err
		}
		return nil, NewContentError(s.StatusCode(), err)
	}
	if rs, ok := result.(*response.Stream); ok && rs == s {
		handed = true
	}
	return result, nil
}

// open binds and builds the request, sends it and classifies the status.
// A returned stream is open; on error nothing is left open.
func (c *Client) open(ctx context.Context, bc *binding.Context, cl call, hc *http.Client) (*response.Stream, error) {
	binder := c.binders.Resolve(bc.InputType)
	bound, err := binder.Bind(ctx, bc)
	if err != nil {
		return nil, err
	}
	if bound == nil {
		return nil, errors.Client("binder returned no request", nil)
	}
	if err := c.applyDefaults(ctx, bc, bound, cl); err != nil {
		return nil, err
	}
	req, err := binder.Build(ctx, bc, bound)
	if err != nil {
		return nil, err
	}
	if c.config.AcceptEncoding && req.Header.Get("Accept-Encoding") == "" {
		if err := c.decoders.AddAcceptEncodings(req); err != nil {
			return nil, err
		}
	}
	observability.SetSpanAttribute(ctx, observability.AttrMethod, req.Method)
	observability.SetSpanAttribute(ctx, observability.AttrURL, req.URL.Redacted())

	s, err := response.Open(ctx, hc, req, response.WithRegistry(c.decoders))
	if err != nil {
		if errors.IsCanceled(err) || errors.IsArgumentNull(err) {
			return nil, err
		}
		return nil, classifyTransport(err)
	}
	observability.SetSpanAttribute(ctx, observability.AttrStatusCode, s.StatusCode())
	if statusErr := ClassifyStatusCode(s.StatusCode(), nil); statusErr != nil {
		statusErr.Body, _ = io.ReadAll(io.LimitReader(s, maxErrorBody))
		_ = s.Close()
		return nil, statusErr
	}
	return s, nil
}

// applyDefaults adds call headers, configured headers, the User-Agent, the
// request id and the default credential where the model left them unset.
func (c *Client) applyDefaults(ctx context.Context, bc *binding.Context, bound *binding.Request, cl call) error {
	if bound.Header == nil {
		bound.Header = header.New()
	}
	h := bound.Header
	add := func(name, value string) error {
		if h.Has(name) {
			return nil
		}
		return h.Add(name, value)
	}
	for name, value := range cl.headers {
		if err := add(name, value); err != nil {
			return err
		}
	}
	for name, value := range c.config.Headers {
		if err := add(name, value); err != nil {
			return err
		}
	}
	if err := add(headerUserAgent, c.config.UserAgent); err != nil {
		return err
	}
	if id, ok := logger.RequestIDFromContext(ctx); ok {
		if err := add(headerRequestID, id); err != nil {
			return err
		}
	}
	if bound.Credentials == nil && c.credential != nil {
		bound.Credentials = c.credential
		bc.Credentials = c.credential
	}
	return nil
}

func (c *Client) startCall(ctx context.Context, bc *binding.Context) (context.Context, *observability.Pass) {
	if _, ok := logger.RequestIDFromContext(ctx); !ok {
		ctx = logger.ContextWithRequestID(ctx, logger.NewRequestID())
	}
	return observability.StartPass(ctx, "call", observability.SpanSend, c.metrics,
		attribute.String(observability.AttrModelType, typeName(bc.InputType)))
}

// endCall closes the pass and logs the outcome. Call errors are logged
// here and nowhere else.
func (c *Client) endCall(ctx context.Context, pass *observability.Pass, bc *binding.Context, err error) {
	pass.End(ctx, err)
	fields := logger.Fields(
		logger.FieldURL, bc.RequestURL,
		logger.FieldModelType, typeName(bc.InputType),
		logger.FieldDuration, pass.Duration().Milliseconds(),
	)
	if bc.Endpoint != nil && bc.Endpoint.Name != "" {
		fields["endpoint"] = bc.Endpoint.Name
	}
	if err != nil {
		if code := StatusCode(err); code > 0 {
			fields[logger.FieldStatus] = code
		}
		c.log(ctx).WithError(err).Error("http call failed", fields)
		return
	}
	c.log(ctx).Debug("http call completed", fields)
}

func (c *Client) log(ctx context.Context) *logger.Logger {
	l := c.logger
	if l == nil {
		return logger.Get("httpclient").WithContext(ctx)
	}
	return l.WithComponent("httpclient").WithContext(ctx)
}

// isStreamResult reports whether the response binder hands the stream
// itself to the caller for t.
func isStreamResult(t reflect.Type) bool {
	if t == streamType {
		return true
	}
	return t.Kind() == reflect.Interface && t.NumMethod() > 0 && streamType.Implements(t)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
