package mailroom

import (
	"github.com/dmitrymomot/mailroom/pkg/mailer/filesystem"
	"github.com/dmitrymomot/mailroom/pkg/mailer/resend"
	"github.com/dmitrymomot/mailroom/pkg/mailer/s3"
	"github.com/dmitrymomot/mailroom/pkg/mailer/smtp"
)

const (
	// DefaultTransport is used when Config.DefaultTransport is empty.
	DefaultTransport = smtp.Name

	// DefaultTestSubject is the subject of SendTest messages.
	DefaultTestSubject = "Test email"
)

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// ConnectionURL is the SMTP URL ("smtp[s]://user:pass@host:port") or a
	// Resend connection string ("resend://re_..."). Transport sections may override it.
	ConnectionURL string `env:"MAILER_CONNECTION_URL" yaml:"connection_url"`

	// DefaultSender fills Message.From when it is empty.
	DefaultSender string `env:"MAILER_DEFAULT_SENDER" yaml:"default_sender" validate:"required_if=Enabled true,omitempty,mailaddr"`

	// DefaultTransport defaults to "smtp".
	DefaultTransport string `env:"MAILER_DEFAULT_TRANSPORT" yaml:"default_transport"`

	// Transports lists built-in transports to register. Defaults to DefaultTransport.
	Transports []string `env:"MAILER_TRANSPORTS" envSeparator:"," yaml:"transports"`

	TestSubject string `env:"MAILER_TEST_SUBJECT" yaml:"test_subject"`

	SMTP       smtp.Config       `yaml:"smtp"`
	Resend     resend.Config     `yaml:"resend"`
	Filesystem filesystem.Config `yaml:"filesystem"`
	S3         s3.Config         `yaml:"s3"`

	// InitConcurrency bounds parallel transport startup. Defaults to 4.
	InitConcurrency int `env:"MAILER_INIT_CONCURRENCY" yaml:"init_concurrency" validate:"gte=0"`

	Enabled bool `env:"MAILER_ENABLED" yaml:"enabled"`

	// VerifyBeforeFirstSend runs the transport's connectivity check before a send
	// whenever the transport is not yet verified.
	VerifyBeforeFirstSend bool `env:"MAILER_VERIFY_BEFORE_FIRST_SEND" yaml:"verify_before_first_send"`
}

func (c *Config) applyDefaults() {
	if c.DefaultTransport == "" {
		c.DefaultTransport = DefaultTransport
	}
	if c.TestSubject == "" {
		c.TestSubject = DefaultTestSubject
	}
	if len(c.Transports) == 0 && isBuiltin(c.DefaultTransport) {
		c.Transports = []string{c.DefaultTransport}
	}
}
