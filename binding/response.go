package binding

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/httpbind/deserialization"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/logger"
	"github.com/kbukum/httpbind/observability"
	"github.com/kbukum/httpbind/response"
)

// NoContent is the result type of calls whose response body is ignored.
type NoContent struct{}

var (
	noContentType = reflect.TypeOf(NoContent{})
	streamType    = reflect.TypeOf((*response.Stream)(nil))
)

// Dispatch sources recorded in metrics and logs.
const (
	sourceHint      = "hint"
	sourceChain     = "chain"
	sourceStream    = "stream"
	sourceNoContent = "no_content"
	sourceEmpty     = "empty"
)

// ResponseBinder turns a response stream into a typed result.
type ResponseBinder struct {
	opts options
}

// NewResponseBinder creates a ResponseBinder. Without WithProviders it
// uses deserialization.Default().
func NewResponseBinder(opts ...Option) *ResponseBinder {
	return &ResponseBinder{opts: newOptions("deserialization", opts)}
}

// Providers returns the provider registry in use.
func (b *ResponseBinder) Providers() *deserialization.Registry { return b.opts.providers }

// Read converts s into a value of resultType. The first match wins:
//
//  1. a provider hinted by the result type, the model or the client
//  2. the first registered provider that accepts the response
//  3. the live stream itself for *response.Stream and io interfaces it
//     implements
//  4. NoContent{} for the NoContent result type
//  5. the zero value of resultType when the response has no body
//
// Otherwise an UNSUPPORTED_CONTENT error wrapped in a CLIENT_ERROR is
// returned. Read does not close s.
func (b *ResponseBinder) Read(ctx context.Context, bc *Context, s *response.Stream, resultType reflect.Type) (result any, err error) {
	if bc == nil {
		return nil, errors.ArgumentNull("context")
	}
	if resultType == nil {
		return nil, errors.ArgumentNull("resultType")
	}
	if s == nil {
		return nil, errors.ArgumentNull("stream")
	}
	bc.OutputType = resultType

	ctx, pass := observability.StartPass(ctx, "response", observability.SpanBindResponse, b.opts.metrics,
		attribute.String(observability.AttrResultType, resultType.String()),
		attribute.String(observability.AttrContentType, s.MediaType()),
		attribute.Int(observability.AttrStatusCode, s.StatusCode()),
	)
	defer func() { pass.End(ctx, err) }()

	name, source := "", ""
	defer func() {
		if err != nil || source == "" {
			return
		}
		pass.SetAttributes(attribute.String(observability.AttrProvider, name))
		if b.opts.metrics != nil {
			b.opts.metrics.RecordDispatch(ctx, name, source)
		}
		b.opts.log(ctx).Debug("response bound", logger.Fields(
			logger.FieldProvider, name,
			"source", source,
			logger.FieldResultType, resultType.String(),
			logger.FieldContentType, s.MediaType(),
		))
	}()

	if p := b.hinted(bc, resultType); p != nil {
		name, source = p.Name(), sourceHint
		return p.Deserialize(ctx, s, resultType)
	}
	if p := b.opts.providers.Find(s, resultType); p != nil {
		name, source = p.Name(), sourceChain
		return p.Deserialize(ctx, s, resultType)
	}
	if isStreamResult(resultType) {
		name, source = "stream", sourceStream
		return s, nil
	}
	if resultType == noContentType {
		name, source = "none", sourceNoContent
		return NoContent{}, nil
	}
	if s.Empty() {
		name, source = "none", sourceEmpty
		return reflect.Zero(resultType).Interface(), nil
	}
	return nil, errors.Client("no deserialization provider accepts the response",
		errors.UnsupportedContent(s.ContentType(), resultType.String()))
}

func (b *ResponseBinder) hinted(bc *Context, resultType reflect.Type) deserialization.Provider {
	if p := deserialization.HintOfType(resultType); p != nil {
		return p
	}
	if p := deserialization.HintOf(bc.CurrentModel()); p != nil {
		return p
	}
	return deserialization.HintOf(bc.Client)
}

// isStreamResult reports whether the live stream can be handed out as
// resultType.
func isStreamResult(t reflect.Type) bool {
	if t == streamType {
		return true
	}
	return t.Kind() == reflect.Interface && t.NumMethod() > 0 && streamType.Implements(t)
}

// ReadAs is Read with the result type taken from T.
func ReadAs[T any](ctx context.Context, b *ResponseBinder, bc *Context, s *response.Stream) (T, error) {
	var zero T
	v, err := b.Read(ctx, bc, s, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil || v == nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.Client("convert response",
			fmt.Errorf("provider returned %T, want %s", v, reflect.TypeOf((*T)(nil)).Elem()))
	}
	return out, nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
