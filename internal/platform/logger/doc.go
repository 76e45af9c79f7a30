// Package logger provides structured logging functionality for the application.
//
// It builds on the standard library log/slog package. Production output is
// JSON; local development can switch to a human readable console format.
// Request scoped loggers are carried in a context.Context.
package logger
