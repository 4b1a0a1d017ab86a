package mailroom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/mailer/filesystem"
	"github.com/dmitrymomot/mailroom/pkg/mailer/resend"
	"github.com/dmitrymomot/mailroom/pkg/mailer/s3"
	"github.com/dmitrymomot/mailroom/pkg/mailer/smtp"
	"github.com/dmitrymomot/mailroom/pkg/validator"
)

// Schema names known to the default validator.
const (
	MessageSchema = "maildata"
	ConfigSchema  = "config"
)

// SchemaValidator validates a value against a named schema.
type SchemaValidator interface {
	Validate(schema string, v any) error
}

// Mailer dispatches messages to registered transports.
// It is safe for concurrent use once New returns.
type Mailer struct {
	logger       *slog.Logger
	registry     *mailer.Registry
	schemas      SchemaValidator
	htmlPolicy   *bluemonday.Policy
	errorHandler ErrorHandler
	factories    []mailer.Factory
	cfg          Config
}

// New validates cfg and registers the configured built-in transports
// followed by any WithTransport factories.
func New(cfg Config, opts ...Option) (*Mailer, error) {
	cfg.applyDefaults()

	schemas, err := defaultSchemas()
	if err != nil {
		return nil, err
	}

	m := &Mailer{
		logger:       logger.NewNope(),
		schemas:      schemas,
		errorHandler: DefaultErrorHandler,
		cfg:          cfg,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := schemas.Validate(ConfigSchema, &cfg); err != nil {
		return nil, fmt.Errorf("mailroom: invalid config: %w", err)
	}

	if u := cfg.ConnectionURL; u != "" && !strings.HasPrefix(u, "resend://") && !validator.IsSMTPConnectionURL(u) {
		m.logger.Warn("connection url is not an smtp url with credentials")
	}

	m.registry = mailer.NewRegistry(
		mailer.WithRegistryLogger(m.logger),
		mailer.WithInitConcurrency(cfg.InitConcurrency),
	)

	for _, name := range cfg.Transports {
		f, ok := builtin(name, cfg, m.logger)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a built-in transport", mailer.ErrUnknownTransport, name)
		}
		_ = m.registry.Register(f)
	}
	for _, f := range m.factories {
		_ = m.registry.Register(f)
	}

	if !m.registry.Has(cfg.DefaultTransport) {
		m.logger.Warn("default transport is not registered", slog.String("transport", cfg.DefaultTransport))
	}

	return m, nil
}

// Start initializes and verifies every registered transport.
// Failures are logged and recorded in Status; Start itself never fails.
func (m *Mailer) Start(ctx context.Context) {
	if !m.cfg.Enabled {
		m.logger.InfoContext(ctx, "mail is disabled, transports not started")
		return
	}
	m.registry.InitAll(ctx)
	m.logger.InfoContext(ctx, "mail transports started", slog.Any("status", m.registry.Statuses()))
}

// Send validates msg and dispatches it through exactly one transport.
//
// When mail is disabled it returns (nil, nil) unless Strict is given.
// msg is not modified; defaults and sanitizing apply to a copy.
func (m *Mailer) Send(ctx context.Context, msg *mailer.Message, opts ...SendOption) (*mailer.Result, error) {
	o := sendOptions{transport: m.cfg.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	if !m.cfg.Enabled {
		if o.strict {
			return nil, ErrNotEnabled
		}
		var to []string
		if msg != nil {
			to = msg.To
		}
		m.logger.WarnContext(ctx, "mail is disabled, message not sent", slog.Any("to", to))
		return nil, nil
	}

	if msg == nil {
		return nil, fmt.Errorf("%w: message is nil", ErrInvalidParams)
	}

	out := *msg
	out.To = append([]string(nil), msg.To...)
	if out.From == "" {
		out.From = m.cfg.DefaultSender
	}
	for _, to := range out.To {
		if !validator.IsEmail(to) {
			return nil, fmt.Errorf("%w: invalid recipient %q", ErrInvalidParams, to)
		}
	}
	if err := m.schemas.Validate(MessageSchema, &out); err != nil {
		return nil, errors.Join(ErrInvalidParams, err)
	}
	if m.htmlPolicy != nil && out.HTML != "" {
		out.HTML = m.htmlPolicy.Sanitize(out.HTML)
	}

	ctx = logger.WithAttrs(ctx, slog.String("transport", o.transport))

	if m.cfg.VerifyBeforeFirstSend {
		if err := m.ensureVerified(ctx, o.transport); err != nil {
			if errors.Is(err, ErrUnknownTransport) {
				return nil, err
			}
			return nil, m.sendFailed(ctx, o.transport, out.To, err)
		}
	}

	res, err := m.registry.Dispatch(ctx, o.transport, &out)
	if err != nil {
		if errors.Is(err, ErrUnknownTransport) {
			m.logger.ErrorContext(ctx, "unknown mail transport", slog.Any("error", err))
			return nil, err
		}
		return nil, m.sendFailed(ctx, o.transport, out.To, err)
	}

	m.logger.InfoContext(ctx, "mail sent",
		slog.String("message_id", res.MessageID),
		slog.Int("accepted", len(res.Accepted)),
		slog.Int("rejected", len(res.Rejected)),
	)
	return res, nil
}

// SendTest sends a connectivity test message to email in strict mode.
func (m *Mailer) SendTest(ctx context.Context, email string, opts ...SendOption) (*mailer.Result, error) {
	msg := &mailer.Message{
		To:      []string{strings.TrimSpace(email)},
		Subject: m.cfg.TestSubject,
		Text:    "This is a test email to verify the mail connection.",
	}
	return m.Send(ctx, msg, append(opts, Strict())...)
}

// Status returns the verification state of every registered transport.
func (m *Mailer) Status() map[string]mailer.VerificationState {
	return m.registry.Statuses()
}

// Registry exposes the underlying transport registry.
func (m *Mailer) Registry() *mailer.Registry {
	return m.registry
}

func (m *Mailer) ensureVerified(ctx context.Context, name string) error {
	state, ok := m.registry.State(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTransport, name)
	}
	if state == mailer.StateVerified {
		return nil
	}
	verified, err := m.registry.Verify(ctx, name)
	if err != nil {
		return err
	}
	if !verified {
		return ErrVerificationFailed
	}
	return nil
}

func (m *Mailer) sendFailed(ctx context.Context, transport string, to []string, err error) error {
	m.logger.ErrorContext(ctx, "mail send failed",
		slog.Any("to", to),
		slog.Any("error", err),
	)
	return &SendFailedError{Err: err, Transport: transport, To: to}
}

func defaultSchemas() (*validator.Schemas, error) {
	s := validator.NewSchemas()
	if err := s.Register(MessageSchema, mailer.Message{}); err != nil {
		return nil, err
	}
	if err := s.Register(ConfigSchema, Config{}); err != nil {
		return nil, err
	}
	return s, nil
}

var builtinNames = []string{smtp.Name, resend.Name, filesystem.Name, s3.Name}

func isBuiltin(name string) bool {
	return slices.Contains(builtinNames, name)
}

// builtin returns the factory for a built-in transport name.
// ConnectionURL feeds SMTP and Resend unless their own sections set an endpoint.
func builtin(name string, cfg Config, log *slog.Logger) (mailer.Factory, bool) {
	switch name {
	case smtp.Name:
		c := cfg.SMTP
		if c.URL == "" && c.Host == "" {
			c.URL = cfg.ConnectionURL
		}
		return smtp.Factory(c, smtp.WithLogger(log)), true
	case resend.Name:
		c := cfg.Resend
		if c.APIKey == "" && strings.HasPrefix(cfg.ConnectionURL, "resend://") {
			c.APIKey = cfg.ConnectionURL
		}
		return resend.Factory(c, resend.WithLogger(log)), true
	case filesystem.Name:
		return filesystem.Factory(cfg.Filesystem, filesystem.WithLogger(log)), true
	case s3.Name:
		return s3.Factory(cfg.S3, s3.WithLogger(log)), true
	default:
		return nil, false
	}
}
