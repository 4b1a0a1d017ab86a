package mailer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

func TestSendFailedError(t *testing.T) {
	t.Parallel()

	cause := errors.New("451 try again later")
	err := error(&mailer.SendFailedError{Err: cause, Transport: "smtp", To: []string{"a@example.com", "b@example.com"}})

	assert.ErrorIs(t, err, mailer.ErrSendFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "mailer: send to a@example.com, b@example.com via smtp failed: 451 try again later", err.Error())

	var sfe *mailer.SendFailedError
	assert.True(t, errors.As(err, &sfe))
	assert.Equal(t, "smtp", sfe.Transport)
}

func TestWrapHelpers(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	initErr := mailer.InitError(cause)
	assert.ErrorIs(t, initErr, mailer.ErrTransportInit)
	assert.ErrorIs(t, initErr, cause)
	assert.Same(t, initErr, mailer.InitError(initErr))

	sendErr := mailer.SendError(cause)
	assert.ErrorIs(t, sendErr, mailer.ErrTransportSend)
	assert.ErrorIs(t, sendErr, cause)
	assert.Equal(t, sendErr, mailer.SendError(sendErr))

	assert.NoError(t, mailer.InitError(nil))
	assert.NoError(t, mailer.SendError(nil))
}

func TestRecipients(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, mailer.Recipients(" a@example.com, ,b@example.com "))
	assert.Empty(t, mailer.Recipients(""))
}

func TestVerificationState_MarshalText(t *testing.T) {
	t.Parallel()

	b, err := mailer.StateVerified.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "verified", string(b))
	assert.Equal(t, "unverified", mailer.StateUnverified.String())
	assert.Equal(t, "failed", mailer.StateFailed.String())
}
