package mailer

import "context"

// Transport is the contract every mail backend implements.
//
// The registry calls Init exactly once before the first Test or Send.
// Send and Test must be safe for concurrent use after Init returns.
type Transport interface {
	// Name is the unique registry key, e.g. "smtp".
	Name() string

	// Init performs one-time setup from the transport's own configuration.
	// Missing or malformed configuration is reported as an error wrapping ErrTransportInit.
	Init(ctx context.Context) error

	// Send delivers msg. Failures wrap ErrTransportSend and the underlying cause.
	Send(ctx context.Context, msg *Message) (*Result, error)

	// Test runs a cheap connectivity check without sending mail.
	// It never fails loudly: problems are logged and reported as false.
	Test(ctx context.Context) bool
}

// Factory builds a transport instance for registration.
type Factory func() (Transport, error)
