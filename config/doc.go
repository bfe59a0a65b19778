// Package config loads httpbind configuration from a YAML file, a .env file
// and the process environment.
//
// Load searches the usual locations for config.yml and .env, binds every
// environment variable carrying the prefix (HTTPBIND by default) to the
// nested keys it may address, unmarshals through mapstructure tags, then
// calls ApplyDefaults and Validate when the target defines them:
//
//	var cfg config.Config
//	err := config.Load("orders", &cfg)
//
// HTTPBIND_CLIENT_BASE_URL=https://staging.example.com overrides
// client.base_url.
package config
