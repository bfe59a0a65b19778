package binding

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/httpbind/credentials"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/header"
	"github.com/kbukum/httpbind/logger"
	"github.com/kbukum/httpbind/observability"
	"github.com/kbukum/httpbind/property"
	"github.com/kbukum/httpbind/serialization"
)

// Request is the resolved outbound request of a binding pass.
type Request struct {
	Method      string
	URL         string
	Header      *header.Set
	Credentials credentials.Credential
	Strategy    serialization.Strategy
}

// HasBody reports whether Write will produce a body.
func (r *Request) HasBody() bool { return !r.Strategy.IsNone() }

// RequestBinder turns a binding context into a request.
type RequestBinder struct {
	opts options
}

// NewRequestBinder creates a RequestBinder.
func NewRequestBinder(opts ...Option) *RequestBinder {
	return &RequestBinder{opts: newOptions("binding", opts)}
}

// TransformModel returns the model to bind. The default is the model
// itself.
func (b *RequestBinder) TransformModel(ctx context.Context, bc *Context) (any, error) {
	if bc == nil {
		return nil, errors.ArgumentNull("context")
	}
	if b.opts.transform == nil {
		return bc.Model, nil
	}
	return b.opts.transform(ctx, bc.Model)
}

// Bind runs transform, classification, URL composition, header and
// credential mapping and strategy resolution, then infers the method.
// Values resolved by an earlier pass are cleared first; each resolved value
// is stored on bc as soon as its stage succeeds.
func (b *RequestBinder) Bind(ctx context.Context, bc *Context) (req *Request, err error) {
	if bc == nil {
		return nil, errors.ArgumentNull("context")
	}
	bc.reset()
	ctx, pass := observability.StartPass(ctx, "request", observability.SpanBindRequest, b.opts.metrics,
		attribute.String(observability.AttrModelType, typeName(bc.InputType)))
	defer func() { pass.End(ctx, err) }()

	model, err := b.TransformModel(ctx, bc)
	if err != nil {
		return nil, err
	}
	bc.TransformedModel = model

	desc, err := property.DescribeValue(model)
	if err != nil {
		return nil, err
	}
	bc.Descriptor = desc

	rawURL, err := ComposeURL(bc.Client, model, bc.BaseURL)
	if err != nil {
		return nil, err
	}
	bc.RequestURL = rawURL

	headers, err := MapHeaders(bc.Client, model)
	if err != nil {
		return nil, err
	}
	bc.Headers = headers

	uri, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.InvalidFormat("baseUrl", err.Error()).WithCause(err)
	}
	cred, err := MapCredentials(model, uri)
	if err != nil {
		return nil, err
	}
	bc.Credentials = cred

	strategy, err := serialization.Resolve(bc.Client, model, desc, b.opts.serialization)
	if err != nil {
		return nil, err
	}
	bc.Strategy = strategy

	method := inferMethod(bc.Method, strategy, desc)
	pass.SetAttributes(
		attribute.String(observability.AttrMethod, method),
		attribute.String(observability.AttrStrategy, strategy.Kind.String()),
	)

	req = &Request{
		Method:      method,
		URL:         rawURL,
		Header:      headers,
		Credentials: cred,
		Strategy:    strategy,
	}

	fields := logger.Fields(
		logger.FieldMethod, method,
		logger.FieldModelType, typeName(bc.InputType),
		logger.FieldStrategy, strategy.Kind.String(),
		"headers", headers.Len(),
		"credentials", cred != nil,
	)
	if !strategy.IsNone() {
		fields[logger.FieldSerializer] = strategy.Serializer.Name()
	}
	b.opts.log(ctx).Debug("request bound", fields)
	return req, nil
}

// Write serializes the body of the bound request into req. It does nothing
// when the pass resolved no body. The context is checked right before the
// body is written.
func (b *RequestBinder) Write(ctx context.Context, bc *Context, req *http.Request) error {
	if bc == nil {
		return errors.ArgumentNull("context")
	}
	if req == nil {
		return errors.ArgumentNull("request")
	}
	if bc.Strategy.IsNone() {
		return nil
	}
	value, err := bc.Strategy.Value(bc.CurrentModel())
	if err != nil {
		return err
	}
	if err := errors.CheckContext(ctx); err != nil {
		return err
	}
	return bc.Strategy.Serializer.Serialize(ctx, value, req)
}

// NewRequest binds bc and builds the *http.Request: headers set,
// credentials applied and body written.
func (b *RequestBinder) NewRequest(ctx context.Context, bc *Context) (*http.Request, error) {
	bound, err := b.Bind(ctx, bc)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, bc, bound)
}

// Build turns a bound request into an *http.Request.
func (b *RequestBinder) Build(ctx context.Context, bc *Context, bound *Request) (*http.Request, error) {
	if bound == nil {
		return nil, errors.ArgumentNull("request")
	}
	req, err := http.NewRequestWithContext(ctx, bound.Method, bound.URL, http.NoBody)
	if err != nil {
		return nil, errors.InvalidFormat("url", err.Error()).WithCause(err)
	}
	bound.Header.Apply(req.Header)
	if err := b.Write(ctx, bc, req); err != nil {
		return nil, err
	}
	if bound.Credentials != nil {
		if err := bound.Credentials.Apply(req); err != nil {
			return nil, errors.Client("apply credentials", err)
		}
	}
	return req, nil
}

// inferMethod returns the explicit method when set, POST when the request
// has a body, and GET otherwise.
func inferMethod(explicit string, strategy serialization.Strategy, desc *property.Model) string {
	if explicit != "" {
		return strings.ToUpper(explicit)
	}
	if !strategy.IsNone() {
		return http.MethodPost
	}
	if desc != nil && desc.HasKind(property.Body|property.Form) {
		return http.MethodPost
	}
	return http.MethodGet
}
