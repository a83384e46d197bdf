package realtime

// Broker-backed seat feed for deployments that sit next to the backend
// (box-office kiosks, ops dashboards) and can consume the seat-update stream
// straight from RabbitMQ instead of going through the public push gateway.
// Signals are published to a shared queue; updates arrive on a per-showtime
// queue fed by the backend.

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const signalQueueName = "seat.signals"

// signalEnvelope wraps an outbound signal so consumers can route on the
// event name without decoding the payload.
type signalEnvelope struct {
	Event      string          `json:"event"`
	ShowtimeID string          `json:"showtimeId"`
	Data       json.RawMessage `json:"data"`
}

// AMQPTransport implements Transport over a RabbitMQ connection.
type AMQPTransport struct {
	url        string
	showtimeID string
	log        *zap.SugaredLogger

	// reconnect policy, overridable before Connect
	backoffInitial time.Duration
	backoffMax     time.Duration
	maxAttempts    int

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool

	events chan Frame
}

// NewAMQPTransport builds a transport that consumes seat updates for
// showtimeID from url.
func NewAMQPTransport(url, showtimeID string, log *zap.SugaredLogger) *AMQPTransport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AMQPTransport{
		url:            url,
		showtimeID:     showtimeID,
		log:            log.Named("amqp"),
		backoffInitial: reconnectInitial,
		backoffMax:     reconnectMax,
		maxAttempts:    reconnectLimit,
		events:         make(chan Frame, 16),
	}
}

func (t *AMQPTransport) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	go t.run(ctx)
	return nil
}

func (t *AMQPTransport) Events() <-chan Frame {
	return t.events
}

// Emit publishes a signal envelope to the shared signal queue.  Messages are
// persistent so a broker restart does not drop booking notifications.
func (t *AMQPTransport) Emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	body, err := json.Marshal(signalEnvelope{Event: event, ShowtimeID: t.showtimeID, Data: raw})
	if err != nil {
		return err
	}

	t.mu.Lock()
	ch := t.ch
	t.mu.Unlock()
	if ch == nil {
		return errors.New("not connected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(ctx,
		"",              // default exchange
		signalQueueName, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.conn = nil
	t.ch = nil
	t.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// run dials the broker and consumes until failure, reconnecting with the
// same bounded backoff as the websocket transport.
func (t *AMQPTransport) run(ctx context.Context) {
	defer close(t.events)

	backoff := t.backoffInitial
	attempts := 0
	for {
		if t.isClosed() || ctx.Err() != nil {
			return
		}
		err := t.consumeOnce(ctx)
		if t.isClosed() || ctx.Err() != nil {
			return
		}
		if err != nil {
			attempts++
			t.log.Debugf("broker attempt %d failed: %v", attempts, err)
			t.push(Frame{Event: EventConnectError})
			if attempts >= t.maxAttempts {
				t.log.Warnf("giving up after %d attempts", attempts)
				return
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < t.backoffMax {
				backoff *= 2
				if backoff > t.backoffMax {
					backoff = t.backoffMax
				}
			}
			continue
		}
		backoff = t.backoffInitial
		attempts = 0
		t.push(Frame{Event: EventDisconnect})
	}
}

// consumeOnce holds one broker session: declare queues, announce connect,
// and convert deliveries into seatUpdate frames until the session drops.
func (t *AMQPTransport) consumeOnce(ctx context.Context) error {
	conn, err := amqp.Dial(t.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	// Signal queue is durable and shared; the update queue is private to
	// this viewer and vanishes with it.
	if _, err := ch.QueueDeclare(signalQueueName, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return err
	}
	updateQueue := "showtime." + t.showtimeID + ".seats"
	if _, err := ch.QueueDeclare(updateQueue, false, true, false, false, nil); err != nil {
		_ = conn.Close()
		return err
	}
	msgs, err := ch.Consume(updateQueue, "", true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	t.conn = conn
	t.ch = ch
	t.mu.Unlock()

	t.push(Frame{Event: EventConnect})

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			return nil
		case d, ok := <-msgs:
			if !ok {
				t.mu.Lock()
				if t.conn == conn {
					t.conn = nil
					t.ch = nil
				}
				t.mu.Unlock()
				return nil
			}
			t.push(Frame{Event: EventSeatUpdate, Data: json.RawMessage(d.Body)})
		}
	}
}

func (t *AMQPTransport) push(frame Frame) {
	select {
	case t.events <- frame:
	default:
		t.log.Debugf("event buffer full, dropping %s", frame.Event)
	}
}

func (t *AMQPTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
