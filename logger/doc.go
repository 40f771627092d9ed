// Package logger provides structured logging for scribe using zerolog.
//
// It supports JSON and console output formats, log level configuration,
// and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logger:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.GetGlobalLogger().WithComponent("relay")
//	log.Info("transcription started", logger.Fields("format", "wav"))
package logger
