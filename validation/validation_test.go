package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/httpbind/errors"
)

func TestValidatorRequired(t *testing.T) {
	assert.False(t, New().Required("name", "John").HasErrors())
	assert.True(t, New().Required("name", "").HasErrors(), "empty value")
	assert.True(t, New().Required("name", "   ").HasErrors(), "whitespace-only value")
}

func TestValidatorOneOf(t *testing.T) {
	assert.False(t, New().OneOf("type", "Bearer", []string{"bearer", "basic"}).HasErrors(), "match is case-insensitive")

	v := New().OneOf("type", "digest", []string{"bearer", "basic"})
	require.True(t, v.HasErrors())
	assert.Equal(t, "must be one of: bearer, basic", v.Errors()[0].Message)

	assert.False(t, New().OneOf("type", "", []string{"bearer"}).HasErrors(), "empty value is skipped")
}

func TestValidatorCustomAndCheck(t *testing.T) {
	assert.False(t, New().Custom(true, "field", "should pass").Check("other", nil).HasErrors())

	v := New().Custom(false, "field", "custom error").Check("other", errors.ArgumentNull("x"))
	require.Len(t, v.Errors(), 2)
	assert.Equal(t, "custom error", v.Errors()[0].Message)
	assert.Equal(t, "other", v.Errors()[1].Field)
}

func TestValidatorValidate(t *testing.T) {
	v := New().Required("name", "John")
	assert.Nil(t, v.Validate())
	assert.NoError(t, v.Err())

	appErr := New().Required("name", "").Required("email", "").Validate()
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCodeInvalidArgument, appErr.Code)
	assert.Contains(t, appErr.Details, "fields")
	assert.Contains(t, appErr.Message, "name")
	assert.Contains(t, appErr.Message, "email")
}

type authSection struct {
	Type string `mapstructure:"type" validate:"required,oneof=bearer basic"`
}

type clientSection struct {
	BaseURL  string       `mapstructure:"base_url" validate:"required,url"`
	Encoding string       `yaml:"content_encoding" validate:"omitempty,oneof=gzip deflate"`
	Retries  int          `json:"retries" validate:"gte=0"`
	Auth     *authSection `mapstructure:"auth" validate:"omitempty"`
}

func TestStructValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     clientSection
		wantErr string
	}{
		{"valid", clientSection{BaseURL: "https://api.example.com"}, ""},
		{"missing url", clientSection{}, "base_url: is required"},
		{"bad url", clientSection{BaseURL: "not a url"}, "base_url: must be a valid URL"},
		{"yaml tag name", clientSection{BaseURL: "http://h", Encoding: "br"}, "content_encoding: must be one of: gzip deflate"},
		{"json tag name", clientSection{BaseURL: "http://h", Retries: -1}, "retries: must be greater than or equal to 0"},
		{"nested", clientSection{BaseURL: "http://h", Auth: &authSection{Type: "digest"}}, "auth.type: must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.cfg)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "accept_encoding", toSnakeCase("AcceptEncoding"))
}
