package binding

import (
	"context"

	"github.com/kbukum/httpbind/deserialization"
	"github.com/kbukum/httpbind/logger"
	"github.com/kbukum/httpbind/observability"
	"github.com/kbukum/httpbind/serialization"
)

// TransformFunc substitutes the model before composition.
type TransformFunc func(ctx context.Context, model any) (any, error)

type options struct {
	component     string
	logger        *logger.Logger
	metrics       *observability.Metrics
	providers     *deserialization.Registry
	serialization serialization.Options
	transform     TransformFunc
}

// Option configures a RequestBinder or a ResponseBinder.
type Option func(*options)

// WithLogger sets the logger. Binders log at debug level.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records binding passes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithProviders sets the deserialization registry used by a ResponseBinder.
func WithProviders(r *deserialization.Registry) Option {
	return func(o *options) { o.providers = r }
}

// WithSerializationOptions sets the charset and content encoding used for
// serializers picked by field tags.
func WithSerializationOptions(opts serialization.Options) Option {
	return func(o *options) { o.serialization = opts }
}

// WithTransform replaces the identity model transform.
func WithTransform(fn TransformFunc) Option {
	return func(o *options) { o.transform = fn }
}

func newOptions(component string, opts []Option) options {
	o := options{component: component}
	for _, opt := range opts {
		opt(&o)
	}
	if o.providers == nil {
		o.providers = deserialization.Default()
	}
	return o
}

// log returns the configured logger, or the component logger of the
// current global logger.
func (o *options) log(ctx context.Context) *logger.Logger {
	l := o.logger
	if l == nil {
		l = logger.Get(o.component)
	}
	return l.WithContext(ctx)
}
