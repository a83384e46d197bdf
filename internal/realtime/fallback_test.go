package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/cinema-booking-client/internal/model"
)

func TestFallbackSwitchesToPollingWhenPushGivesUp(t *testing.T) {
	// Nothing listens on the push side; every dial fails fast.
	ws := NewWebSocketTransport("http://127.0.0.1:1", "/showtimes", nil)
	ws.backoffInitial = time.Millisecond
	ws.backoffMax = 2 * time.Millisecond
	ws.maxAttempts = 2

	fetch := fetcherFunc(func(ctx context.Context, id string) (*model.SeatSnapshot, error) {
		return &model.SeatSnapshot{ShowtimeID: id, TotalSeats: 30, AvailableSeats: 12}, nil
	})
	tr := NewFallbackTransport(ws, NewPollingTransport("show123", fetch, 5*time.Millisecond, nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := tr.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	expectFrame(t, tr.Events(), EventConnectError)

	// The polling leg takes over and keeps the seat map moving.
	expectFrame(t, tr.Events(), EventConnect)
	frame := expectFrame(t, tr.Events(), EventSeatUpdate)
	var snap model.SeatSnapshot
	if err := json.Unmarshal(frame.Data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.TotalSeats != 30 || snap.AvailableSeats != 12 {
		t.Fatalf("snapshot = %+v", snap)
	}

	if err := tr.Emit(EventSelectSeats, nil); !errors.Is(err, ErrEmitUnsupported) {
		t.Fatalf("err = %v, the receive-only leg must be active after the switch", err)
	}
}

func TestFallbackStaysOnPrimaryWhileItLives(t *testing.T) {
	primary := newFakeTransport()
	fetch := fetcherFunc(func(ctx context.Context, id string) (*model.SeatSnapshot, error) {
		t.Error("secondary must not be polled while the primary lives")
		return nil, errors.New("unreachable")
	})
	tr := NewFallbackTransport(primary, NewPollingTransport("show123", fetch, time.Millisecond, nil), nil)
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	expectFrame(t, tr.Events(), EventConnect)
	if err := tr.Emit(EventJoinShowtime, joinPayload{ShowtimeID: "show123", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	if len(primary.framesNamed(EventJoinShowtime)) != 1 {
		t.Fatal("signal must go through the push transport")
	}

	// Closing must end the stream without ever starting the secondary.
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	for range tr.Events() {
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}
