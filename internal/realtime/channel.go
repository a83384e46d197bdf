package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-client/internal/model"
)

// debounceWindow bounds outbound selectSeats chatter: repeated picks inside
// one window collapse into a single signal carrying the latest seat list.
const debounceWindow = 100 * time.Millisecond

// Channel keeps a local seat snapshot for one showtime as fresh as possible
// while a seat view is open.
//
// Two sources race to populate the snapshot: a one-shot REST fetch and the
// push transport.  Push events are authoritative and replace the snapshot
// wholesale; the REST result is only accepted while no push event has
// arrived.  Local seat picks are merged into the locked set immediately so
// the view reflects them with zero latency, then reconciled by the next
// push event.
type Channel struct {
	showtimeID string
	userID     string
	transport  Transport
	fetch      SnapshotFetcher
	log        *zap.SugaredLogger

	mu          sync.Mutex
	snapshot    *model.SeatSnapshot
	pushVersion uint64 // number of push commits; 0 means REST may still win
	connected   bool
	closed      bool
	pending     []string    // single-slot debounced intent, last writer wins
	timer       *time.Timer // scheduled flush for pending
	onUpdate    func(*model.SeatSnapshot)
}

// NewChannel builds a channel for one showtime.  userID should come from the
// session (a minted guest id is fine).  fetch may be nil to skip the initial
// REST fetch.
func NewChannel(showtimeID, userID string, transport Transport, fetch SnapshotFetcher, log *zap.SugaredLogger) *Channel {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Channel{
		showtimeID: showtimeID,
		userID:     userID,
		transport:  transport,
		fetch:      fetch,
		log:        log.Named("seats"),
	}
}

// OnUpdate registers a callback invoked after every snapshot commit.  Must be
// called before Open.  The callback runs with channel state locked and must
// not call back into the channel.
func (c *Channel) OnUpdate(fn func(*model.SeatSnapshot)) {
	c.onUpdate = fn
}

// Open starts the transport, then the initial REST fetch and the event loop.
// Transports connect asynchronously, so the only error here is a dead
// context; dial failures surface as connect_error frames and keep the
// Connected flag false.  Nothing is started when Connect fails, so an
// abandoned channel leaves no goroutine behind.
func (c *Channel) Open(ctx context.Context) error {
	if err := c.transport.Connect(ctx); err != nil {
		return err
	}
	if c.fetch != nil {
		go c.fetchInitial(ctx)
	}
	go c.eventLoop()
	return nil
}

// Snapshot returns a copy of the current snapshot, nil before any source has
// delivered one.
func (c *Channel) Snapshot() *model.SeatSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Clone()
}

// Connected reports whether the push transport currently has a live
// connection.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SelectSeats merges seats into the locked set immediately and schedules the
// outbound signal.  Calls landing inside an already-open window only
// overwrite the pending seat list; exactly one signal goes out per window,
// carrying the seats of the last call.
func (c *Channel) SelectSeats(seats []string) {
	if len(seats) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if c.snapshot == nil {
		c.snapshot = &model.SeatSnapshot{ShowtimeID: c.showtimeID}
	}
	c.snapshot.MergeLocked(seats)
	c.notifyLocked()

	c.pending = append([]string(nil), seats...)
	if c.timer == nil {
		c.timer = time.AfterFunc(debounceWindow, c.flushPending)
	}
}

// NotifyBookingCreated tells other viewers of this showtime to refresh.
// Fire and forget.
func (c *Channel) NotifyBookingCreated() {
	c.emit(EventBookingCreated, bookingCreatedPayload{ShowtimeID: c.showtimeID})
}

// Close cancels any pending debounce, announces the leave and tears the
// transport down.  Safe to call from every exit path; only the first call
// does anything.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
	c.mu.Unlock()

	// Leave before disconnect so the server can drop the room membership.
	if err := c.transport.Emit(EventLeaveShowtime, leavePayload{ShowtimeID: c.showtimeID}); err != nil && !errors.Is(err, ErrEmitUnsupported) {
		c.log.Debugf("leave signal failed: %v", err)
	}
	return c.transport.Close()
}

// fetchInitial populates the snapshot from REST unless a push event beat it.
// Errors are absorbed: the channel is the fallback source of truth here, not
// the other way round.
func (c *Channel) fetchInitial(ctx context.Context) {
	snap, err := c.fetch.Seats(ctx, c.showtimeID)
	if err != nil {
		c.log.Debugf("initial seat fetch failed: %v", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.pushVersion > 0 {
		return
	}
	c.snapshot = snap
	c.notifyLocked()
}

// eventLoop consumes transport frames until the transport gives up or Close
// runs.
func (c *Channel) eventLoop() {
	for frame := range c.transport.Events() {
		switch frame.Event {
		case EventConnect:
			c.mu.Lock()
			c.connected = true
			c.mu.Unlock()
			c.emit(EventJoinShowtime, joinPayload{ShowtimeID: c.showtimeID, UserID: c.userID})
		case EventDisconnect, EventConnectError:
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
		case EventSeatUpdate:
			c.applyUpdate(frame.Data)
		}
	}
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

// applyUpdate replaces the snapshot wholesale with the pushed one.  Any
// optimistic overlay not reflected by the server is discarded here.
func (c *Channel) applyUpdate(data json.RawMessage) {
	var snap model.SeatSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log.Warnf("malformed seat update: %v", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.snapshot = &snap
	c.pushVersion++
	c.notifyLocked()
}

// flushPending emits the latest selected seat list once per debounce window.
func (c *Channel) flushPending() {
	c.mu.Lock()
	seats := c.pending
	c.pending = nil
	c.timer = nil
	userID := c.userID
	closed := c.closed
	c.mu.Unlock()
	if closed || len(seats) == 0 {
		return
	}
	c.emit(EventSelectSeats, selectPayload{ShowtimeID: c.showtimeID, Seats: seats, UserID: userID})
}

// emit sends a signal, logging failures instead of surfacing them: the push
// channel degrades silently by contract.
func (c *Channel) emit(event string, data any) {
	if err := c.transport.Emit(event, data); err != nil && !errors.Is(err, ErrEmitUnsupported) {
		c.log.Debugf("emit %s failed: %v", event, err)
	}
}

// notifyLocked invokes the update callback with a copy.  Caller holds mu.
func (c *Channel) notifyLocked() {
	if c.onUpdate != nil {
		c.onUpdate(c.snapshot.Clone())
	}
}
