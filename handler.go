package mailroom

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// testRequest is the body of POST /test.
type testRequest struct {
	Email string `json:"email"`
}

// Routes mounts the mailer HTTP endpoints on r:
//
//	POST /test        send a test message, 204 on success
//	GET  /transports  verification state per transport
//
// Authentication is left to the host router.
func (m *Mailer) Routes(r chi.Router) {
	r.Post("/test", m.handleTest)
	r.Get("/transports", m.handleTransports)
}

func (m *Mailer) handleTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		m.errorHandler(w, r, fmt.Errorf("%w: malformed request body: %w", ErrInvalidParams, err))
		return
	}

	if _, err := m.SendTest(r.Context(), req.Email); err != nil {
		m.errorHandler(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *Mailer) handleTransports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.Status())
}
