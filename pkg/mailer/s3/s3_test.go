package s3_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/mailer/s3"
)

type object struct {
	key         string
	contentType string
	body        []byte
}

// fakeS3 is a path-style S3 endpoint holding a single bucket.
type fakeS3 struct {
	bucket  string
	deny    bool
	mu      sync.Mutex
	objects []object
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if f.deny {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		return
	}
	if parts[0] != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case r.Method == http.MethodHead && len(parts) == 1:
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && len(parts) == 2:
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.objects = append(f.objects, object{key: parts[1], contentType: r.Header.Get("Content-Type"), body: body})
		f.mu.Unlock()
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) stored() []object {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]object(nil), f.objects...)
}

func newTransport(t *testing.T, fake *fakeS3, bucket, prefix string) *s3.Transport {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	tr := s3.New(s3.Config{
		Bucket:    bucket,
		Prefix:    prefix,
		Endpoint:  srv.URL,
		AccessKey: "test-access-key",
		SecretKey: "test-secret-key",
		PathStyle: true,
	})
	require.NoError(t, tr.Init(context.Background()))
	return tr
}

func testMessage() *mailer.Message {
	return &mailer.Message{
		From:    "noreply@example.com",
		To:      []string{"test@mail.com"},
		Subject: "Hello",
		Text:    "world",
	}
}

func TestTransport_Send(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{bucket: "mail"}
	tr := newTransport(t, fake, "mail", "/outbox/")

	res, err := tr.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, s3.Name, res.Transport)
	assert.Equal(t, "etag-1", res.Response)
	assert.Equal(t, []string{"test@mail.com"}, res.Accepted)
	assert.True(t, strings.HasPrefix(res.MessageID, "outbox/"))
	assert.True(t, strings.HasSuffix(res.MessageID, ".json"))

	objects := fake.stored()
	require.Len(t, objects, 1)
	assert.Equal(t, res.MessageID, objects[0].key)
	assert.Equal(t, "application/json", objects[0].contentType)

	var got mailer.Message
	require.NoError(t, json.Unmarshal(objects[0].body, &got))
	assert.Equal(t, *testMessage(), got)
}

func TestTransport_Send_AccessDenied(t *testing.T) {
	t.Parallel()

	tr := newTransport(t, &fakeS3{bucket: "mail", deny: true}, "mail", "")

	_, err := tr.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, mailer.ErrTransportSend)
	assert.ErrorIs(t, err, s3.ErrAccessDenied)
}

func TestTransport_Send_NotInitialized(t *testing.T) {
	t.Parallel()

	tr := s3.New(s3.Config{Bucket: "mail"})
	_, err := tr.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, s3.ErrNotInitialized)
	assert.False(t, tr.Test(context.Background()))
}

func TestTransport_Test(t *testing.T) {
	t.Parallel()

	t.Run("bucket exists", func(t *testing.T) {
		t.Parallel()
		tr := newTransport(t, &fakeS3{bucket: "mail"}, "mail", "")
		assert.True(t, tr.Test(context.Background()))
	})

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		tr := newTransport(t, &fakeS3{bucket: "mail"}, "other", "")
		assert.False(t, tr.Test(context.Background()))
	})
}

func TestTransport_Init(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     s3.Config
		wantErr bool
	}{
		{name: "valid", cfg: s3.Config{Bucket: "b", AccessKey: "a", SecretKey: "s"}},
		{name: "custom endpoint", cfg: s3.Config{Bucket: "b", AccessKey: "a", SecretKey: "s", Endpoint: "http://localhost:9000", PathStyle: true}},
		{name: "missing bucket", cfg: s3.Config{AccessKey: "a", SecretKey: "s"}, wantErr: true},
		{name: "missing credentials", cfg: s3.Config{Bucket: "b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := s3.New(tt.cfg).Init(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, s3.ErrInvalidConfig)
				assert.ErrorIs(t, err, mailer.ErrTransportInit)
				return
			}
			assert.NoError(t, err)
		})
	}
}
