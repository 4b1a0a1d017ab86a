// Package s3 implements a mailer.Transport that stores each message as a JSON object
// in an S3-compatible bucket. It serializes messages exactly like the filesystem sink.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// Name is the registry key of this transport.
const Name = "s3"

const contentType = "application/json"

// Transport writes messages to an S3 bucket.
type Transport struct {
	client *s3.Client
	logger *slog.Logger
	cfg    Config
	mu     sync.RWMutex
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

// New creates an S3 sink. Configuration is checked by Init.
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

// Init implements mailer.Transport by building the S3 client.
func (t *Transport) Init(_ context.Context) error {
	if err := t.cfg.validate(); err != nil {
		return mailer.InitError(err)
	}

	cfg := t.cfg
	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	t.mu.Lock()
	t.client = client
	t.mu.Unlock()
	return nil
}

// Send implements mailer.Transport.
func (t *Transport) Send(ctx context.Context, msg *mailer.Message) (*mailer.Result, error) {
	client := t.getClient()
	if client == nil {
		return nil, mailer.SendError(ErrNotInitialized)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, mailer.SendError(fmt.Errorf("s3: generate id: %w", err))
	}

	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return nil, mailer.SendError(fmt.Errorf("s3: encode message: %w", err))
	}

	key := t.objectKey(id.String() + ".json")
	out, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, mailer.SendError(wrapError(err, ErrUploadFailed))
	}

	t.logger.DebugContext(ctx, "message stored",
		slog.String("bucket", t.cfg.Bucket),
		slog.String("key", key),
	)

	return &mailer.Result{
		Transport: Name,
		MessageID: key,
		Response:  strings.Trim(aws.ToString(out.ETag), `"`),
		Accepted:  append([]string(nil), msg.To...),
	}, nil
}

// Test implements mailer.Transport with a HeadBucket call.
func (t *Transport) Test(ctx context.Context) bool {
	client := t.getClient()
	if client == nil {
		t.logger.WarnContext(ctx, "s3 sink not initialized")
		return false
	}

	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(t.cfg.Bucket)})
	if err != nil {
		t.logger.WarnContext(ctx, "s3 bucket unavailable",
			slog.String("bucket", t.cfg.Bucket),
			slog.Any("error", wrapError(err, ErrBucketNotFound)),
		)
		return false
	}
	return true
}

func (t *Transport) getClient() *s3.Client {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.client
}

func (t *Transport) objectKey(name string) string {
	prefix := strings.Trim(t.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
