// Package filesystem implements a mailer.Transport that writes each message to disk
// as a JSON file instead of delivering it. Useful for development and tests.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// Name is the registry key of this transport.
const Name = "filesystem"

const (
	defaultFileMode fs.FileMode = 0o644
	dirMode         fs.FileMode = 0o755
)

// ErrInvalidDir indicates the sink directory is unusable.
var ErrInvalidDir = errors.New("filesystem: invalid directory")

// Config holds filesystem sink configuration.
type Config struct {
	// Dir receives one <uuid-v7>.json file per message. Defaults to <os.TempDir()>/mailer.
	Dir      string      `env:"MAILER_FS_DIR" yaml:"dir"`
	FileMode fs.FileMode `env:"MAILER_FS_FILE_MODE" yaml:"file_mode"`
}

// DefaultDir is used when Config.Dir is empty.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "mailer")
}

// Transport writes messages to a directory.
type Transport struct {
	logger *slog.Logger
	cfg    Config
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

// New creates a filesystem sink.
func New(cfg Config, opts ...Option) *Transport {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir()
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = defaultFileMode
	}
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

// Dir returns the directory messages are written to.
func (t *Transport) Dir() string { return t.cfg.Dir }

// Init implements mailer.Transport by creating the sink directory.
func (t *Transport) Init(_ context.Context) error {
	if err := t.ensureDir(); err != nil {
		return mailer.InitError(err)
	}
	return nil
}

// Send implements mailer.Transport.
func (t *Transport) Send(ctx context.Context, msg *mailer.Message) (*mailer.Result, error) {
	if err := t.ensureDir(); err != nil {
		return nil, mailer.SendError(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, mailer.SendError(fmt.Errorf("filesystem: generate id: %w", err))
	}

	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return nil, mailer.SendError(fmt.Errorf("filesystem: encode message: %w", err))
	}

	name := id.String() + ".json"
	path := filepath.Join(t.cfg.Dir, name)
	if err := writeFile(path, data, t.cfg.FileMode); err != nil {
		return nil, mailer.SendError(err)
	}

	t.logger.DebugContext(ctx, "message written", slog.String("path", path))

	return &mailer.Result{
		Transport: Name,
		MessageID: name,
		Response:  path,
		Accepted:  append([]string(nil), msg.To...),
	}, nil
}

// Test implements mailer.Transport by checking the directory can be created.
func (t *Transport) Test(ctx context.Context) bool {
	if err := t.ensureDir(); err != nil {
		t.logger.WarnContext(ctx, "filesystem sink unavailable",
			slog.String("dir", t.cfg.Dir),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

func (t *Transport) ensureDir() error {
	if err := os.MkdirAll(t.cfg.Dir, dirMode); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDir, t.cfg.Dir, err)
	}
	return nil
}

// writeFile writes data next to path and renames it into place,
// so readers never observe a partial file.
func writeFile(path string, data []byte, mode fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("filesystem: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("filesystem: write: %w", err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("filesystem: chmod: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("filesystem: close: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("filesystem: rename: %w", err)
	}
	return nil
}
