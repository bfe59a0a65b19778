package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/httpclient"
)

const sampleConfig = `
name: billing
environment: staging
logging:
  level: warn
client:
  base_url: https://api.example.com/v1
  timeout: 10s
  serialization: json
  headers:
    X-Tenant: acme
  auth:
    type: bearer
    token: secret
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", sampleConfig)

	var cfg Config
	err := Load("billing", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(t.TempDir(), "none")))
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.Name)
	assert.Equal(t, EnvStaging, cfg.Environment)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	c := cfg.Client
	assert.Equal(t, "billing", c.Name, "client name defaults to the app name")
	assert.Equal(t, "https://api.example.com/v1", c.BaseURL)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, "json", c.Serialization)
	assert.Equal(t, "acme", c.Headers["x-tenant"])
	require.NotNil(t, c.Auth)
	assert.Equal(t, "bearer", c.Auth.Type)
	assert.Equal(t, "secret", c.Auth.Token)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", sampleConfig)
	t.Setenv("HTTPBIND_CLIENT_BASE_URL", "https://staging.example.com")
	t.Setenv("HTTPBIND_CLIENT_TIMEOUT", "5s")
	t.Setenv("HTTPBIND_ENVIRONMENT", "production")

	var cfg Config
	require.NoError(t, Load("billing", &cfg, WithConfigFile(path)))
	assert.Equal(t, "https://staging.example.com", cfg.Client.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, EnvProduction, cfg.Environment)
}

func TestLoad_CustomPrefix(t *testing.T) {
	t.Setenv("BILLING_NAME", "billing")
	t.Setenv("BILLING_CLIENT_BASE_URL", "http://localhost:8080")

	var cfg Config
	err := Load("billing", &cfg,
		WithEnvPrefix("billing"),
		WithFileSystem(mockFileSystem{}),
	)
	require.NoError(t, err)
	assert.Equal(t, "billing", cfg.Name)
	assert.Equal(t, "http://localhost:8080", cfg.Client.BaseURL)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "HTTPBIND_NAME=from-env\nHTTPBIND_CLIENT_BASE_URL=http://env.local\n")
	t.Cleanup(func() {
		os.Unsetenv("HTTPBIND_NAME")
		os.Unsetenv("HTTPBIND_CLIENT_BASE_URL")
	})

	var cfg Config
	err := Load("billing", &cfg, WithEnvFile(envPath), WithConfigFile(filepath.Join(dir, "missing.yml")))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Name)
	assert.Equal(t, "http://env.local", cfg.Client.BaseURL)
}

func TestLoad_Errors(t *testing.T) {
	assert.True(t, errors.IsArgumentNull(Load("billing", nil)))

	dir := t.TempDir()
	noEnv := WithEnvFile(filepath.Join(dir, "none"))

	path := writeFile(t, dir, "config.yml", "name: billing\nclient:\n  timeout: 5s\n")
	var cfg Config
	err := Load("billing", &cfg, WithConfigFile(path), noEnv)
	assert.ErrorContains(t, err, "client.base_url")

	path = writeFile(t, dir, "bad.yml", "name: billing\nclient:\n  timeout: soon\n  base_url: http://h\n")
	cfg = Config{}
	err = Load("billing", &cfg, WithConfigFile(path), noEnv)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat), "got %v", err)
}

type mockFileSystem struct {
	files map[string]bool
}

func (m mockFileSystem) Exists(path string) bool { return m.files[path] }

func (m mockFileSystem) LoadEnv(string) error { return nil }

func TestResolver_ResolveFiles(t *testing.T) {
	fs := mockFileSystem{files: map[string]bool{
		"./config/billing.yml": true,
		"./config/config.yml":  true,
		"./.env":               true,
		"../.env.billing":      true,
	}}
	r := &Resolver{FileSystem: fs}

	got := r.ResolveFiles("billing", LoaderConfig{})
	assert.Equal(t, "./config/billing.yml", got.ConfigFile, "named config comes first")
	assert.Equal(t, "../.env.billing", got.EnvFile, "named env file comes first")

	got = r.ResolveFiles("billing", LoaderConfig{ConfigFile: "/etc/billing.yml", EnvFile: "/etc/.env"})
	assert.Equal(t, ResolvedFiles{ConfigFile: "/etc/billing.yml", EnvFile: "/etc/.env"}, got)

	got = (&Resolver{FileSystem: mockFileSystem{}}).ResolveFiles("billing", LoaderConfig{})
	assert.Equal(t, ResolvedFiles{}, got)
}

func TestEnvKeyVariants(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"NAME", []string{"name"}},
		{"CLIENT_TIMEOUT", []string{"client_timeout", "client.timeout"}},
		{"CLIENT_BASE_URL", []string{"client_base_url", "client.base.url", "client.base_url", "client_base.url"}},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			assert.ElementsMatch(t, tc.want, envKeyVariants(tc.key))
		})
	}
}

func TestBindEnvVars(t *testing.T) {
	v := viper.New()
	bindEnvVars(v, "APP", []string{
		"APP_CLIENT_USER_AGENT=svc/1",
		"OTHER_NAME=ignored",
		"APP_NAME=svc",
		"malformed",
	})
	assert.Equal(t, "svc/1", v.GetString("client.user_agent"))
	assert.Equal(t, "svc", v.GetString("name"))
	assert.False(t, v.IsSet("other_name"), "variables without the prefix are ignored")
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Name: "svc"}
	cfg.ApplyDefaults()
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "svc", cfg.Client.Name)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)

	cfg = Config{Name: "svc", Environment: EnvProduction, Client: httpclient.Config{Name: "billing-api"}}
	cfg.ApplyDefaults()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "billing-api", cfg.Client.Name, "explicit client name is kept")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Name: "svc"}
		cfg.Client.BaseURL = "https://api.example.com"
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing name", func(c *Config) { c.Name = "" }, "name: is required"},
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "environment"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging"},
		{"bad serialization", func(c *Config) { c.Client.Serialization = "protobuf" }, "client.serialization"},
		{"bad charset", func(c *Config) { c.Client.Charset = "klingon" }, "charset"},
		{"bad auth", func(c *Config) { c.Client.Auth = &httpclient.AuthConfig{Type: httpclient.AuthBearer} }, "token"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
