package httpclient

import (
	"time"

	"github.com/kbukum/httpbind/credentials"
	"github.com/kbukum/httpbind/validation"
)

// Authentication methods accepted by AuthConfig.Type.
const (
	AuthBearer = "bearer"
	AuthBasic  = "basic"
	AuthAPIKey = "api_key"
	AuthJWT    = "jwt"
)

// AuthConfig configures the default credential of a client. Credentials
// declared on a model take precedence over it.
type AuthConfig struct {
	// Type is the authentication method.
	Type string `yaml:"type" mapstructure:"type" validate:"required,oneof=bearer basic api_key jwt"`
	// Token is the bearer token (AuthBearer).
	Token string `yaml:"token" mapstructure:"token"`
	// Username is the basic auth username (AuthBasic).
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the basic auth password (AuthBasic).
	Password string `yaml:"password" mapstructure:"password"`
	// Key is the API key value (AuthAPIKey).
	Key string `yaml:"key" mapstructure:"key"`
	// In places the API key in the "header" (default) or the "query".
	In string `yaml:"in" mapstructure:"in" validate:"omitempty,oneof=header query"`
	// Name is the header or query parameter name. Defaults to "X-API-Key".
	Name string `yaml:"name" mapstructure:"name"`
	// Secret is the HMAC key a JWT is signed with (AuthJWT).
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Issuer and Subject populate the JWT registered claims.
	Issuer  string `yaml:"issuer" mapstructure:"issuer"`
	Subject string `yaml:"subject" mapstructure:"subject"`
	// Audience populates the JWT aud claim.
	Audience []string `yaml:"audience" mapstructure:"audience"`
	// TTL is the JWT lifetime. Defaults to five minutes.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: credentials.InHeader}
}

// APIKeyAuthQuery creates an API key auth config sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: credentials.InQuery, Name: paramName}
}

// JWTAuth creates a config signing HS256 tokens with secret.
func JWTAuth(secret, issuer string) *AuthConfig {
	return &AuthConfig{Type: AuthJWT, Secret: secret, Issuer: issuer}
}

// Validate checks that the fields required by Type are set.
func (a *AuthConfig) Validate() error {
	if a == nil {
		return nil
	}
	if err := validation.Validate(a); err != nil {
		return err
	}
	v := validation.New()
	switch a.Type {
	case AuthBearer:
		v.Required("token", a.Token)
	case AuthBasic:
		v.Required("username", a.Username)
	case AuthAPIKey:
		v.Required("key", a.Key)
	case AuthJWT:
		v.Required("secret", a.Secret)
		v.Custom(a.TTL >= 0, "ttl", "must not be negative")
	}
	return v.Err()
}

// Credential builds the credential described by the config. A nil config
// has no credential.
func (a *AuthConfig) Credential() credentials.Credential {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		return &credentials.Bearer{Token: a.Token}
	case AuthBasic:
		return &credentials.Basic{Username: a.Username, Password: a.Password}
	case AuthAPIKey:
		return &credentials.APIKey{Key: a.Key, Name: a.Name, In: a.In}
	case AuthJWT:
		return &credentials.JWT{
			Key:      []byte(a.Secret),
			Issuer:   a.Issuer,
			Subject:  a.Subject,
			Audience: a.Audience,
			TTL:      a.TTL,
		}
	default:
		return nil
	}
}
