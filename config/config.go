package config

import (
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/httpclient"
	"github.com/kbukum/httpbind/logger"
	"github.com/kbukum/httpbind/validation"
)

// Environments accepted by Config.Environment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is the configuration file of an application calling one HTTP
// endpoint through httpclient.
//
// Applications with more settings embed it:
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Region string `yaml:"region" mapstructure:"region"`
//	}
type Config struct {
	Name        string            `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string            `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging     logger.Config     `yaml:"logging" mapstructure:"logging"`
	Client      httpclient.Config `yaml:"client" mapstructure:"client"`
}

// ApplyDefaults fills in the environment, logging and client defaults. The
// client name defaults to the application name.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Logging.Level == "" && c.Environment == EnvDevelopment {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	if c.Client.Name == "" {
		c.Client.Name = c.Name
	}
	c.Client.ApplyDefaults()
}

// Validate checks the struct tags, including those of the client section,
// then the logging section and the client's own checks.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Validation("logging: " + err.Error()).WithCause(err)
	}
	return c.Client.Validate()
}
