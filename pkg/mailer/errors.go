package mailer

import (
	"errors"
	"strings"
)

var (
	// ErrNotEnabled indicates a strict send while mail is disabled.
	ErrNotEnabled = errors.New("mailer: not enabled")

	// ErrInvalidParams indicates a malformed recipient or message shape.
	ErrInvalidParams = errors.New("mailer: invalid parameters")

	// ErrTransportInit indicates a transport failed to initialize.
	ErrTransportInit = errors.New("mailer: transport init failed")

	// ErrTransportSend indicates the backend failed to deliver a message.
	ErrTransportSend = errors.New("mailer: transport send failed")

	// ErrUnknownTransport indicates no transport is registered under the requested name.
	ErrUnknownTransport = errors.New("mailer: unknown transport")

	// ErrSendFailed is matched by every *SendFailedError.
	ErrSendFailed = errors.New("mailer: send failed")

	// ErrInvalidTransport indicates a factory returned an error, nil, or an unnamed transport.
	ErrInvalidTransport = errors.New("mailer: invalid transport")

	// ErrDuplicateTransport indicates a transport name is already registered.
	ErrDuplicateTransport = errors.New("mailer: duplicate transport")

	// ErrPollTimeout indicates an asynchronous send did not complete within its budget.
	ErrPollTimeout = errors.New("mailer: polling timed out")

	// ErrVerificationFailed indicates the transport did not pass its connectivity check.
	ErrVerificationFailed = errors.New("mailer: transport verification failed")
)

// SendFailedError wraps a transport failure with the recipients it was meant for.
type SendFailedError struct {
	Err       error
	Transport string
	To        []string
}

func (e *SendFailedError) Error() string {
	msg := "mailer: send to " + strings.Join(e.To, ", ")
	if e.Transport != "" {
		msg += " via " + e.Transport
	}
	if e.Err != nil {
		msg += " failed: " + e.Err.Error()
	} else {
		msg += " failed"
	}
	return msg
}

func (e *SendFailedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSendFailed) true for any SendFailedError.
func (e *SendFailedError) Is(target error) bool {
	return target == ErrSendFailed
}

// InitError wraps err with ErrTransportInit unless it already carries it.
func InitError(err error) error {
	if err == nil || errors.Is(err, ErrTransportInit) {
		return err
	}
	return errors.Join(ErrTransportInit, err)
}

// SendError wraps err with ErrTransportSend unless it already carries it.
func SendError(err error) error {
	if err == nil || errors.Is(err, ErrTransportSend) {
		return err
	}
	return errors.Join(ErrTransportSend, err)
}
