package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// FallbackTransport prefers a push transport and degrades to a secondary one
// when the primary's frame stream ends while the viewer is still watching,
// which happens when the reconnect budget runs out.  The secondary is
// typically the polling transport, so the seat map keeps moving (more
// slowly) even when the push gateway is unreachable.
type FallbackTransport struct {
	primary   Transport
	secondary Transport
	log       *zap.SugaredLogger

	mu     sync.Mutex
	active Transport
	closed bool

	events chan Frame
}

// NewFallbackTransport chains primary and secondary.  The secondary is only
// connected after the primary gives up.
func NewFallbackTransport(primary, secondary Transport, log *zap.SugaredLogger) *FallbackTransport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	t := &FallbackTransport{
		primary:   primary,
		secondary: secondary,
		log:       log.Named("fallback"),
		events:    make(chan Frame, 16),
	}
	t.active = primary
	return t
}

func (t *FallbackTransport) Connect(ctx context.Context) error {
	if err := t.primary.Connect(ctx); err != nil {
		return err
	}
	go t.run(ctx)
	return nil
}

func (t *FallbackTransport) Events() <-chan Frame { return t.events }

// Emit signals through whichever transport is currently active.  After the
// switch that is the secondary, which may not support outbound signals.
func (t *FallbackTransport) Emit(event string, data any) error {
	t.mu.Lock()
	active := t.active
	t.mu.Unlock()
	return active.Emit(event, data)
}

// Close tears down both legs.  Idempotent.
func (t *FallbackTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()
	err := t.primary.Close()
	if err2 := t.secondary.Close(); err == nil {
		err = err2
	}
	return err
}

// run relays primary frames until that stream ends; if the transport is
// still open at that point, it switches to the secondary and relays that
// instead.
func (t *FallbackTransport) run(ctx context.Context) {
	defer close(t.events)

	for frame := range t.primary.Events() {
		t.forward(frame)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.active = t.secondary
	t.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	t.log.Warnf("push transport gave up, switching to the fallback feed")
	if err := t.secondary.Connect(ctx); err != nil {
		return
	}
	for frame := range t.secondary.Events() {
		t.forward(frame)
	}
}

func (t *FallbackTransport) forward(frame Frame) {
	select {
	case t.events <- frame:
	default:
		t.log.Debugf("event buffer full, dropping %s", frame.Event)
	}
}
