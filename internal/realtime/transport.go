// Package realtime keeps a live seat snapshot for one showtime while a
// seat-selection view is open, and reports local seat picks to the server
// with minimal chatter.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
)

// Events on the /showtimes channel.  The first three are synthetic
// transport-state frames; the rest travel over the wire.
const (
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventConnectError = "connect_error"

	EventJoinShowtime   = "joinShowtime"
	EventLeaveShowtime  = "leaveShowtime"
	EventSelectSeats    = "selectSeats"
	EventBookingCreated = "bookingCreated"
	EventSeatUpdate     = "seatUpdate"
)

// ErrEmitUnsupported is returned by transports that can only receive, such
// as the request-polling fallback.
var ErrEmitUnsupported = errors.New("transport cannot emit")

// Frame is one message on the push channel.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Transport is one live push-channel connection.  Connect starts the
// connection state machine and returns promptly; connection progress is
// reported through Events as connect / disconnect / connect_error frames.
// The events channel is closed when the transport gives up for good.
type Transport interface {
	Connect(ctx context.Context) error
	Emit(event string, data any) error
	Events() <-chan Frame
	Close() error
}

// joinPayload, leavePayload and selectPayload are the outbound signal bodies.
// Field names follow the backend's camelCase wire contract.
type joinPayload struct {
	ShowtimeID string `json:"showtimeId"`
	UserID     string `json:"userId"`
}

type leavePayload struct {
	ShowtimeID string `json:"showtimeId"`
}

type selectPayload struct {
	ShowtimeID string   `json:"showtimeId"`
	Seats      []string `json:"seats"`
	UserID     string   `json:"userId"`
}

type bookingCreatedPayload struct {
	ShowtimeID string `json:"showtimeId"`
}

// marshalFrame builds a Frame with an encoded payload.
func marshalFrame(event string, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: raw}, nil
}
