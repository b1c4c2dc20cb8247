// Package logger provides structured logging for gofetch using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Logs go to stderr by
// default so they never interleave with response bodies on stdout.
//
// # Configuration
//
//	log:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("xhr").WithContext(ctx)
//	log.Debug("xhr load", logger.Fields(logger.FieldStatus, 200))
package logger
