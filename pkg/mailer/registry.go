package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

const defaultInitConcurrency = 4

// Registry owns the named transports and routes messages to them.
// Transports are registered at startup; lookups and dispatch are safe for concurrent use.
type Registry struct {
	logger      *slog.Logger
	entries     map[string]*entry
	names       []string
	concurrency int
	mu          sync.RWMutex
}

type entry struct {
	transport Transport
	initErr   error
	once      sync.Once
	state     atomic.Int32
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for lifecycle events.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithInitConcurrency bounds how many transports InitAll prepares at once.
// Defaults to 4.
func WithInitConcurrency(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:      logger.NewNope(),
		entries:     make(map[string]*entry),
		concurrency: defaultInitConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register instantiates a transport and stores it under its name.
// Malformed transports and duplicate names are logged and rejected;
// on duplicates the first registration stays in place.
func (r *Registry) Register(factory Factory) error {
	if factory == nil {
		r.logger.Error("transport rejected", slog.String("reason", "nil factory"))
		return fmt.Errorf("%w: nil factory", ErrInvalidTransport)
	}

	t, err := factory()
	if err != nil {
		r.logger.Error("transport rejected", slog.String("reason", "factory failed"), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrInvalidTransport, err)
	}
	if isNil(t) {
		r.logger.Error("transport rejected", slog.String("reason", "factory returned nil"))
		return fmt.Errorf("%w: factory returned nil", ErrInvalidTransport)
	}

	name := t.Name()
	if name == "" {
		r.logger.Error("transport rejected", slog.String("reason", "empty name"), slog.String("type", fmt.Sprintf("%T", t)))
		return fmt.Errorf("%w: %T has no name", ErrInvalidTransport, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		r.logger.Warn("transport rejected", slog.String("reason", "duplicate name"), slog.String("transport", name))
		return fmt.Errorf("%w: %q", ErrDuplicateTransport, name)
	}

	r.entries[name] = &entry{transport: t}
	r.names = append(r.names, name)
	r.logger.Debug("transport registered", slog.String("transport", name))
	return nil
}

// InitAll initializes and self-tests every registered transport concurrently.
// A failing transport is logged and marked failed; it never stops the others.
func (r *Registry) InitAll(ctx context.Context) {
	r.mu.RLock()
	names := append([]string(nil), r.names...)
	entries := make([]*entry, len(names))
	for i, name := range names {
		entries[i] = r.entries[name]
	}
	r.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, e := range entries {
		name := names[i]
		g.Go(func() error {
			if err := e.init(ctx); err != nil {
				r.logger.ErrorContext(ctx, "transport init failed",
					slog.String("transport", name),
					slog.Any("error", err),
				)
				return nil
			}
			r.verify(ctx, name, e)
			return nil
		})
	}

	// Workers never return errors; failures are isolated above.
	_ = g.Wait()
}

// Verify runs the transport's connectivity check and records the outcome.
func (r *Registry) Verify(ctx context.Context, name string) (bool, error) {
	e, ok := r.lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownTransport, name)
	}
	if err := e.init(ctx); err != nil {
		return false, err
	}
	return r.verify(ctx, name, e), nil
}

// Dispatch sends msg through the named transport.
// The transport is initialized on first use if InitAll has not run.
func (r *Registry) Dispatch(ctx context.Context, name string, msg *Message) (*Result, error) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, name)
	}
	if err := e.init(ctx); err != nil {
		return nil, err
	}

	ctx = logger.WithAttrs(ctx, slog.String("transport", name))
	res, err := e.transport.Send(ctx, msg)
	if err != nil {
		return nil, SendError(err)
	}
	if res == nil {
		res = &Result{}
	}
	if res.Transport == "" {
		res.Transport = name
	}
	return res, nil
}

// State reports the verification state of the named transport.
func (r *Registry) State(name string) (VerificationState, bool) {
	e, ok := r.lookup(name)
	if !ok {
		return StateUnverified, false
	}
	return VerificationState(e.state.Load()), true
}

// Statuses returns a snapshot of every transport's verification state.
func (r *Registry) Statuses() map[string]VerificationState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]VerificationState, len(r.entries))
	for name, e := range r.entries {
		out[name] = VerificationState(e.state.Load())
	}
	return out
}

// Names lists registered transports in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// Has reports whether a transport is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

func (r *Registry) lookup(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

func (r *Registry) verify(ctx context.Context, name string, e *entry) bool {
	if e.transport.Test(ctx) {
		e.state.Store(int32(StateVerified))
		r.logger.InfoContext(ctx, "transport verified", slog.String("transport", name))
		return true
	}
	e.state.Store(int32(StateFailed))
	r.logger.WarnContext(ctx, "transport verification failed", slog.String("transport", name))
	return false
}

// init runs Init once per process. The caller's cancellation is dropped
// so a cancelled request cannot leave the transport failed for good.
func (e *entry) init(ctx context.Context) error {
	e.once.Do(func() {
		if err := e.transport.Init(context.WithoutCancel(ctx)); err != nil {
			e.initErr = InitError(err)
			e.state.Store(int32(StateFailed))
		}
	})
	return e.initErr
}

// isNil catches typed nil pointers hidden behind the interface.
func isNil(t Transport) bool {
	if t == nil {
		return true
	}
	v := reflect.ValueOf(t)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
