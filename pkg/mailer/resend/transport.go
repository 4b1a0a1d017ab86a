// Package resend implements a mailer.Transport on top of the Resend email API.
//
// Resend accepts a message asynchronously. Send submits it and then polls the
// message status every PollInterval until it reaches a terminal event or
// PollTimeout elapses:
//
//   - sent, delivered, opened, clicked, complained: success
//   - bounced, failed, canceled: ErrDeliveryFailed
//   - anything else when the budget runs out: mailer.ErrPollTimeout
//
// Resend has no cheap connectivity check, so Test only logs that it was skipped.
package resend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// Name is the registry key of this transport.
const Name = "resend"

const connectionPrefix = "resend://"

var (
	// ErrMissingAPIKey indicates the API key is empty.
	ErrMissingAPIKey = errors.New("resend: api key is required")

	// ErrInvalidBaseURL indicates BaseURL could not be parsed.
	ErrInvalidBaseURL = errors.New("resend: invalid base url")

	// ErrNotInitialized indicates Send was called before Init.
	ErrNotInitialized = errors.New("resend: transport not initialized")

	// ErrNoMessageID indicates the API accepted a request without returning an id.
	ErrNoMessageID = errors.New("resend: response has no message id")

	// ErrDeliveryFailed indicates Resend reported a terminal failure event.
	ErrDeliveryFailed = errors.New("resend: delivery failed")
)

// Transport sends mail through Resend.
type Transport struct {
	httpClient *http.Client
	client     *resend.Client
	logger     *slog.Logger
	cfg        Config
	mu         sync.RWMutex
}

// Option configures the transport.
type Option func(*Transport)

// WithLogger sets the transport logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.httpClient = c
		}
	}
}

// New creates a Resend transport. Configuration is checked by Init.
func New(cfg Config, opts ...Option) *Transport {
	cfg.applyDefaults()
	t := &Transport{cfg: cfg, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Factory adapts New for mailer.Registry.Register.
func Factory(cfg Config, opts ...Option) mailer.Factory {
	return func() (mailer.Transport, error) {
		return New(cfg, opts...), nil
	}
}

// Name implements mailer.Transport.
func (t *Transport) Name() string { return Name }

// Init implements mailer.Transport by building the API client.
func (t *Transport) Init(_ context.Context) error {
	key := strings.TrimSpace(strings.TrimPrefix(t.cfg.APIKey, connectionPrefix))
	if key == "" {
		return mailer.InitError(ErrMissingAPIKey)
	}

	client := resend.NewCustomClient(t.httpClient, key)
	if t.cfg.BaseURL != "" {
		base := t.cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return mailer.InitError(fmt.Errorf("%w: %q", ErrInvalidBaseURL, t.cfg.BaseURL))
		}
		client.BaseURL = u
	}

	t.mu.Lock()
	t.client = client
	t.mu.Unlock()
	return nil
}

// Send implements mailer.Transport: submit, then poll until a terminal event.
func (t *Transport) Send(ctx context.Context, msg *mailer.Message) (*mailer.Result, error) {
	t.mu.RLock()
	client := t.client
	t.mu.RUnlock()
	if client == nil {
		return nil, mailer.SendError(ErrNotInitialized)
	}

	resp, err := client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return nil, mailer.SendError(fmt.Errorf("resend: submit: %w", err))
	}
	if resp == nil || resp.Id == "" {
		return nil, mailer.SendError(ErrNoMessageID)
	}

	event, err := t.poll(ctx, client, resp.Id)
	if err != nil {
		return nil, err
	}

	t.logger.DebugContext(ctx, "resend message completed",
		slog.String("id", resp.Id),
		slog.String("event", event),
	)

	return &mailer.Result{
		Transport: Name,
		MessageID: resp.Id,
		Response:  event,
		Accepted:  append([]string(nil), msg.To...),
	}, nil
}

// Test implements mailer.Transport. Resend offers no cheap check.
func (t *Transport) Test(ctx context.Context) bool {
	t.logger.InfoContext(ctx, "resend verification skipped", slog.String("reason", "no connectivity check available"))
	return true
}

func (t *Transport) poll(ctx context.Context, client *resend.Client, id string) (string, error) {
	pollCtx, cancel := context.WithTimeout(ctx, t.cfg.PollTimeout)
	defer cancel()

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		email, err := client.Emails.GetWithContext(pollCtx, id)
		switch {
		case err != nil && ctx.Err() == nil && pollCtx.Err() != nil:
			return "", t.timeout(id)
		case err != nil:
			return "", mailer.SendError(fmt.Errorf("resend: poll %s: %w", id, err))
		}

		event := strings.ToLower(email.LastEvent)
		switch status(event) {
		case statusDone:
			return event, nil
		case statusFailed:
			return "", mailer.SendError(fmt.Errorf("%w: message %s %s", ErrDeliveryFailed, id, event))
		}

		select {
		case <-ctx.Done():
			return "", mailer.SendError(ctx.Err())
		case <-pollCtx.Done():
			return "", t.timeout(id)
		case <-ticker.C:
		}
	}
}

func (t *Transport) timeout(id string) error {
	return mailer.SendError(fmt.Errorf("%w: message %s after %s", mailer.ErrPollTimeout, id, t.cfg.PollTimeout))
}

type pollStatus int

const (
	statusPending pollStatus = iota
	statusDone
	statusFailed
)

func status(event string) pollStatus {
	switch event {
	case "sent", "delivered", "opened", "clicked", "complained":
		return statusDone
	case "bounced", "failed", "canceled":
		return statusFailed
	default:
		return statusPending
	}
}
