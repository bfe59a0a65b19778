package httpclient

import (
	"time"

	"github.com/kbukum/httpbind/charset"
	"github.com/kbukum/httpbind/deserialization"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/header"
	"github.com/kbukum/httpbind/logger"
	"github.com/kbukum/httpbind/serialization"
	"github.com/kbukum/httpbind/validation"
	"github.com/kbukum/httpbind/version"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the client of one endpoint.
type Config struct {
	// Name identifies the endpoint in logs and spans.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the URL template requests are composed from. It may carry
	// {token} placeholders, a query string and a fragment.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout bounds a whole call, body read included. Defaults to 30s.
	// Stream calls are bounded by their context only.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Headers are added to every request unless the model sets the same name.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent defaults to version.UserAgent().
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Serialization names the serializer every request body uses unless the
	// model hints its own. It also moves implicit model properties into
	// the body.
	Serialization string `yaml:"serialization" mapstructure:"serialization" validate:"omitempty,oneof=json xml form multipart text yaml"`

	// Deserialization names the provider every response is read with
	// unless the result type or the model hints its own.
	Deserialization string `yaml:"deserialization" mapstructure:"deserialization" validate:"omitempty,oneof=json xml text yaml"`

	// Charset request bodies are encoded in. Defaults to UTF-8.
	Charset string `yaml:"charset" mapstructure:"charset"`

	// ContentEncoding compresses request bodies.
	ContentEncoding string `yaml:"content_encoding" mapstructure:"content_encoding" validate:"omitempty,oneof=gzip x-gzip deflate"`

	// AcceptEncoding advertises every registered content decoder.
	AcceptEncoding bool `yaml:"accept_encoding" mapstructure:"accept_encoding"`

	// Auth configures the default credential.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`

	// TLS configures the transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Logging, when its level is set, gives the client its own logger
	// instead of the global one.
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
	if c.Logging.Level != "" {
		c.Logging.ApplyDefaults()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	names := header.New()
	for name, value := range c.Headers {
		v.Check("headers", names.Add(name, value))
	}
	if c.Charset != "" {
		_, err := charset.Lookup(c.Charset)
		v.Check("charset", err)
	}
	if c.Logging.Level != "" {
		v.Check("logging", c.Logging.Validate())
	}
	v.Check("auth", c.Auth.Validate())
	v.Check("tls", c.TLS.Validate())
	return v.Err()
}

func (c *Config) serializationOptions() serialization.Options {
	return serialization.Options{Charset: c.Charset, ContentEncoding: c.ContentEncoding}
}

// requestSerializer resolves Config.Serialization, nil when unset.
func (c *Config) requestSerializer() (serialization.Serializer, error) {
	if c.Serialization == "" {
		return nil, nil
	}
	return serialization.Lookup(c.Serialization, c.serializationOptions())
}

// responseProvider resolves Config.Deserialization, nil when unset.
func (c *Config) responseProvider() (deserialization.Provider, error) {
	switch c.Deserialization {
	case "":
		return nil, nil
	case serialization.NameJSON:
		return &deserialization.JSON{}, nil
	case serialization.NameXML:
		return &deserialization.XML{}, nil
	case serialization.NameText:
		return &deserialization.PlainText{}, nil
	case serialization.NameYAML:
		return &deserialization.YAML{}, nil
	default:
		return nil, errors.InvalidArgument("deserialization", "unknown provider "+c.Deserialization)
	}
}
