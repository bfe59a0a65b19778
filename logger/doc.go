// Package logger provides structured logging for httpbind using zerolog.
//
// Binders and clients log at debug level under a component name
// ("binding", "deserialization", "httpclient"). The global logger is
// silent until Init or SetGlobalLogger installs one.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("binding")
//	log.Debug("request bound", logger.Fields("method", "GET"))
package logger
