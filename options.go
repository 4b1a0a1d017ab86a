package mailroom

import (
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// Option configures the Mailer.
type Option func(*Mailer)

// WithLogger sets the mailer logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTransport registers a custom transport next to the built-in ones.
// Registration failures are logged by the registry and do not fail New.
func WithTransport(f mailer.Factory) Option {
	return func(m *Mailer) {
		m.factories = append(m.factories, f)
	}
}

// WithSchemaValidator replaces the default schema validator.
// The validator must know the "maildata" schema.
func WithSchemaValidator(v SchemaValidator) Option {
	return func(m *Mailer) {
		if v != nil {
			m.schemas = v
		}
	}
}

// WithHTMLPolicy sanitizes Message.HTML with p before dispatch.
//
// Example:
//
//	mailroom.WithHTMLPolicy(bluemonday.UGCPolicy())
func WithHTMLPolicy(p *bluemonday.Policy) Option {
	return func(m *Mailer) {
		m.htmlPolicy = p
	}
}

// WithErrorHandler sets the error handler used by Routes.
// Defaults to DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Mailer) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// SendOption configures a single Send call.
type SendOption func(*sendOptions)

type sendOptions struct {
	transport string
	strict    bool
}

// Strict makes Send fail with ErrNotEnabled instead of silently skipping
// when mail is disabled.
func Strict() SendOption {
	return func(o *sendOptions) {
		o.strict = true
	}
}

// UseTransport routes the message to the named transport instead of the default.
func UseTransport(name string) SendOption {
	return func(o *sendOptions) {
		if name != "" {
			o.transport = name
		}
	}
}
