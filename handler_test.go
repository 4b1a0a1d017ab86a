package mailroom_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom"
	"github.com/dmitrymomot/mailroom/pkg/mailer/filesystem"
)

func newRouter(t *testing.T, enabled bool, opts ...mailroom.Option) (http.Handler, *mailroom.Mailer) {
	t.Helper()
	m, err := mailroom.New(mailroom.Config{
		Enabled:          enabled,
		DefaultSender:    "noreply@example.com",
		DefaultTransport: filesystem.Name,
		Filesystem:       filesystem.Config{Dir: t.TempDir()},
	}, opts...)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/mail", m.Routes)
	return r, m
}

func postTest(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/mail/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Test(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		enabled  bool
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "ok", enabled: true, body: `{"email":"test@mail.com"}`, wantCode: http.StatusNoContent},
		{name: "invalid email", enabled: true, body: `{"email":"nope"}`, wantCode: http.StatusBadRequest, wantErr: "invalid_params"},
		{name: "malformed body", enabled: true, body: `{`, wantCode: http.StatusBadRequest, wantErr: "invalid_params"},
		{name: "disabled", enabled: false, body: `{"email":"test@mail.com"}`, wantCode: http.StatusServiceUnavailable, wantErr: "not_enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, _ := newRouter(t, tt.enabled)
			rec := postTest(h, tt.body)
			require.Equal(t, tt.wantCode, rec.Code)

			if tt.wantErr == "" {
				assert.Empty(t, rec.Body.String())
				return
			}
			var resp mailroom.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRoutes_CustomErrorHandler(t *testing.T) {
	t.Parallel()

	var got error
	h, _ := newRouter(t, false, mailroom.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := postTest(h, `{"email":"test@mail.com"}`)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, got, mailroom.ErrNotEnabled)
}

func TestRoutes_Transports(t *testing.T) {
	t.Parallel()

	h, m := newRouter(t, true)
	m.Start(t.Context())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mail/transports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filesystem":"verified"}`, rec.Body.String())
}
