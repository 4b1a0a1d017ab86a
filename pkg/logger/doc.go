// Package logger builds the slog loggers used across mailroom.
//
// Loggers write JSON (or text) to stdout and optionally forward warnings and errors
// to Sentry. Every logger built here decorates its handler so that attributes attached
// to a context with WithAttrs, plus any ContextExtractor output, land on each record:
//
//	log := logger.NewWithConfig(logger.Config{Level: "debug", Format: "text"})
//
//	ctx = logger.WithAttrs(ctx, slog.String("transport", "smtp"))
//	log.InfoContext(ctx, "message sent") // ... transport=smtp
//
// Libraries default to NewNope so nothing is printed unless the host passes a logger.
//
// If SENTRY_DSN is empty the Sentry handler is skipped, so the same code path works in
// development and production.
package logger
