package mailer

import "fmt"

// VerificationState is the outcome of the most recent connectivity check for a transport.
type VerificationState int32

const (
	StateUnverified VerificationState = iota
	StateVerified
	StateFailed
)

func (s VerificationState) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateVerified:
		return "verified"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("VerificationState(%d)", int32(s))
	}
}

// MarshalText renders the state by name so JSON maps read naturally.
func (s VerificationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
