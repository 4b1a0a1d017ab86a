package resend

import "time"

// Config holds Resend transport configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// APIKey accepts a bare key ("re_...") or a connection string ("resend://re_...").
	APIKey  string `env:"RESEND_API_KEY" yaml:"api_key"`
	// BaseURL overrides the API endpoint, mostly for tests and proxies.
	BaseURL string `env:"RESEND_BASE_URL" yaml:"base_url"`

	// PollInterval defaults to 1s and PollTimeout to 10s.
	PollInterval time.Duration `env:"RESEND_POLL_INTERVAL" yaml:"poll_interval"`
	PollTimeout  time.Duration `env:"RESEND_POLL_TIMEOUT" yaml:"poll_timeout"`
}

const (
	defaultPollInterval = time.Second
	defaultPollTimeout  = 10 * time.Second
)

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = defaultPollTimeout
	}
}
