package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-client/internal/model"
)

const defaultPollInterval = 2 * time.Second

// SnapshotFetcher is the one-shot REST fetch of a showtime's seat map.  The
// catalog service satisfies it.
type SnapshotFetcher interface {
	Seats(ctx context.Context, showtimeID string) (*model.SeatSnapshot, error)
}

// PollingTransport is the fallback when no push transport can connect: it
// re-fetches the snapshot over REST on an interval and synthesizes seatUpdate
// frames.  It is receive-only; outbound signals return ErrEmitUnsupported
// and are dropped by the channel.
type PollingTransport struct {
	showtimeID string
	fetch      SnapshotFetcher
	interval   time.Duration
	log        *zap.SugaredLogger

	events    chan Frame
	closeOnce sync.Once
	done      chan struct{}
}

// NewPollingTransport polls fetch for showtimeID.  interval <= 0 selects the
// default.
func NewPollingTransport(showtimeID string, fetch SnapshotFetcher, interval time.Duration, log *zap.SugaredLogger) *PollingTransport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &PollingTransport{
		showtimeID: showtimeID,
		fetch:      fetch,
		interval:   interval,
		log:        log.Named("poll"),
		events:     make(chan Frame, 16),
		done:       make(chan struct{}),
	}
}

func (t *PollingTransport) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	go t.run(ctx)
	return nil
}

func (t *PollingTransport) Events() <-chan Frame {
	return t.events
}

func (t *PollingTransport) Emit(string, any) error {
	return ErrEmitUnsupported
}

func (t *PollingTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

func (t *PollingTransport) run(ctx context.Context) {
	defer close(t.events)

	select {
	case <-t.done:
		return
	case <-ctx.Done():
		return
	default:
	}
	connected := t.poll(ctx, false)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			connected = t.poll(ctx, connected)
		}
	}
}

// poll fetches once and reports whether the backend is reachable.  The
// synthetic connect frame is only sent after a fetch has succeeded, so the
// Connected flag upstream tracks actual reachability; a later failure flips
// it back via a disconnect frame.
func (t *PollingTransport) poll(ctx context.Context, connected bool) bool {
	snap, err := t.fetch.Seats(ctx, t.showtimeID)
	if err != nil {
		t.log.Debugf("poll failed: %v", err)
		if connected {
			t.send(Frame{Event: EventDisconnect})
		}
		return false
	}
	if !connected {
		t.send(Frame{Event: EventConnect})
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return true
	}
	t.send(Frame{Event: EventSeatUpdate, Data: raw})
	return true
}

func (t *PollingTransport) send(frame Frame) {
	select {
	case t.events <- frame:
	default:
		t.log.Debugf("event buffer full, dropping %s", frame.Event)
	}
}
