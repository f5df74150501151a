// Package logger provides the structured logging interface used across twharvest.
//
// It wraps zerolog with a small API:
//   - Leveled methods (Debug, Info, Warn, Error)
//   - Structured fields via WithField/WithFields and the *WithFields methods
//   - Console output with colors, or JSON lines for log shippers
//   - Nop and capturing loggers for tests
//
// Components receive a Logger explicitly:
//
//	log, err := logger.New(&cfg.Logging)
//	job := harvest.New(cfg, harvest.Options{Logger: log})
//
// The package level GetLogger is only meant for the command line entry point.
package logger
