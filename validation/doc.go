// Package validation validates configuration structs.
//
// Struct tag validation uses the go-playground validator with field names
// taken from the mapstructure, yaml or json tags, so messages name the keys
// a user writes in a config file:
//
//	type Config struct {
//	    BaseURL string `mapstructure:"base_url" validate:"required,url"`
//	}
//	err := validation.Validate(cfg) // "base_url: is required"
//
// Checks that do not fit a tag are collected programmatically:
//
//	v := validation.New()
//	v.Required("token", a.Token)
//	err := v.Err()
package validation
