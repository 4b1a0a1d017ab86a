package validator

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Unicode ranges accepted in addresses besides ASCII (surrogates and non-characters excluded).
const ucs = `\x{00A0}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFEF}`

var (
	emailRegex = regexp.MustCompile(`(?i)^(?:` +
		// dot-atom local part
		`[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~\-` + ucs + `]+` +
		`(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~\-` + ucs + `]+)*` +
		// or quoted local part
		`|"(?:[ \t\x21\x23-\x5b\x5d-\x7e` + ucs + `]|\\[\x01-\x09\x0b\x0c\x0d-\x7f` + ucs + `])*"` +
		`)@` +
		`(?:(?:[a-z0-9` + ucs + `]|[a-z0-9` + ucs + `][a-z0-9\-._~` + ucs + `]*[a-z0-9` + ucs + `])\.)+` +
		`(?:[a-z` + ucs + `]|[a-z` + ucs + `][a-z0-9\-._~` + ucs + `]*[a-z` + ucs + `])\.?$`)

	smtpConnectionURLRegex = regexp.MustCompile(`^smtps?://[^:]+:[^@]+@[^:@]+`)
)

// IsEmail reports whether value is a syntactically valid email address.
// Matching is case-insensitive; any ".." sequence is rejected.
func IsEmail(value string) bool {
	if value == "" || strings.Contains(value, "..") {
		return false
	}
	return emailRegex.MatchString(strings.ToLower(value))
}

// IsSMTPConnectionURL reports whether value is an smtp:// or smtps:// URL
// carrying user:pass credentials before the host.
func IsSMTPConnectionURL(value string) bool {
	return value != "" && smtpConnectionURLRegex.MatchString(value)
}

// IsSMTPURL reports whether value is an smtp:// or smtps:// URL with a host.
// Credentials are optional, but a present user must have a non-empty name.
func IsSMTPURL(value string) bool {
	if value == "" {
		return false
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	if u.Scheme != "smtp" && u.Scheme != "smtps" {
		return false
	}
	if u.Hostname() == "" {
		return false
	}
	if p := u.Port(); p != "" && !IsPort(p) {
		return false
	}
	if u.User != nil && u.User.Username() == "" {
		return false
	}
	return true
}

// IsPort reports whether value is an integral number in [0, 65535].
// Integers, unsigned integers, integral floats and numeric strings are accepted.
func IsPort(value any) bool {
	switch v := value.(type) {
	case int:
		return inPortRange(int64(v))
	case int8:
		return inPortRange(int64(v))
	case int16:
		return inPortRange(int64(v))
	case int32:
		return inPortRange(int64(v))
	case int64:
		return inPortRange(v)
	case uint:
		return uint64(v) <= math.MaxUint16
	case uint8:
		return true
	case uint16:
		return true
	case uint32:
		return v <= math.MaxUint16
	case uint64:
		return v <= math.MaxUint16
	case float32:
		return isPortFloat(float64(v))
	case float64:
		return isPortFloat(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return inPortRange(n)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		return isPortFloat(f)
	default:
		return false
	}
}

func inPortRange(n int64) bool {
	return n >= 0 && n <= math.MaxUint16
}

func isPortFloat(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	return f >= 0 && f <= math.MaxUint16
}
