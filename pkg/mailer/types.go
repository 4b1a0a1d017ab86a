package mailer

import "strings"

// Recipients splits a comma-separated address list, dropping blanks.
func Recipients(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Message is a single email handed to a transport.
// It is built per call and not retained after dispatch.
type Message struct {
	From    string   `json:"from" validate:"required,mailaddr"`
	Subject string   `json:"subject" validate:"required"`
	Text    string   `json:"text,omitempty" validate:"required_without=HTML"`
	HTML    string   `json:"html,omitempty"`
	To      []string `json:"to" validate:"required,min=1,dive,required"`
}

// Result describes what a transport did with a message.
type Result struct {
	Transport string   `json:"transport"`
	MessageID string   `json:"message_id,omitempty"` // Provider id, file name or object key
	Response  string   `json:"response,omitempty"`   // Last provider status line, if any
	Accepted  []string `json:"accepted"`
	Rejected  []string `json:"rejected,omitempty"`
}
