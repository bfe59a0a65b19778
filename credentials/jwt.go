package credentials

import (
	"net/http"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/httpbind/errors"
)

// JWT signs a fresh bearer token for every request it authenticates.
type JWT struct {
	// Method is the signing method. Defaults to HS256.
	Method gojwt.SigningMethod
	// Key is the signing key ([]byte for HMAC, a private key otherwise).
	Key any
	// Issuer, Subject and Audience populate the registered claims.
	Issuer   string
	Subject  string
	Audience []string
	// TTL is the token lifetime. Defaults to five minutes.
	TTL time.Duration

	now func() time.Time
}

const defaultJWTTTL = 5 * time.Minute

// Token returns a signed token using the configured claims.
func (j *JWT) Token() (string, error) {
	method := j.Method
	if method == nil {
		method = gojwt.SigningMethodHS256
	}
	if j.Key == nil {
		return "", errors.ArgumentNull("key")
	}
	ttl := j.TTL
	if ttl <= 0 {
		ttl = defaultJWTTTL
	}
	now := time.Now
	if j.now != nil {
		now = j.now
	}
	issued := now()
	claims := gojwt.RegisteredClaims{
		Issuer:    j.Issuer,
		Subject:   j.Subject,
		Audience:  j.Audience,
		IssuedAt:  gojwt.NewNumericDate(issued),
		ExpiresAt: gojwt.NewNumericDate(issued.Add(ttl)),
	}
	signed, err := gojwt.NewWithClaims(method, claims).SignedString(j.Key)
	if err != nil {
		return "", errors.Client("sign jwt credential", err)
	}
	return signed, nil
}

// Apply sets the Authorization header to a freshly signed bearer token.
func (j *JWT) Apply(req *http.Request) error {
	if req == nil {
		return errors.ArgumentNull("request")
	}
	token, err := j.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
