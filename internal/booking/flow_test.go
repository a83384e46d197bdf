package booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-client/internal/api"
	"github.com/iliyamo/cinema-booking-client/internal/config"
	"github.com/iliyamo/cinema-booking-client/internal/session"
	"github.com/iliyamo/cinema-booking-client/internal/store"
)

type recordNavigator struct {
	urls []string
}

func (n *recordNavigator) Open(url string) error {
	n.urls = append(n.urls, url)
	return nil
}

type recordNotifier struct {
	successes []string
	errors    []string
}

func (n *recordNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

func newFlow(t *testing.T, baseURL string) (*Flow, *recordNavigator, *recordNotifier) {
	t.Helper()
	sess := session.New(store.NewMemoryStore())
	cfg := config.Config{APIBaseURL: baseURL, HTTPTimeout: 5 * time.Second}
	client := api.New(cfg, sess, nil, nil)
	nav := &recordNavigator{}
	notifier := &recordNotifier{}
	return NewFlow(client, nav, notifier, nil), nav, notifier
}

func TestHoldPayConfirmSequence(t *testing.T) {
	e := echo.New()
	e.POST("/bookings", func(c echo.Context) error {
		var req map[string]any
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
		}
		if req["showtimeId"] != "show123" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown showtime"})
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"id": "bk1", "showtimeId": "show123", "seats": []string{"A1", "A2"}, "amount": 150000, "status": "PENDING",
		})
	})
	e.POST("/payments/momo", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, echo.Map{
			"id": "pay1", "bookingId": "bk1", "method": "momo", "paymentUrl": "https://pay.example/x",
		})
	})
	e.POST("/bookings/bk1/confirm", func(c echo.Context) error {
		var req map[string]string
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
		}
		if req["paymentMethod"] != "momo" || req["transactionId"] != "txn1" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "payment mismatch"})
		}
		return c.JSON(http.StatusOK, echo.Map{"id": "bk1", "status": "CONFIRMED"})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	flow, nav, notifier := newFlow(t, srv.URL)
	ctx := context.Background()

	b, err := flow.HoldSeats(ctx, "show123", []string{"A1", "A2"})
	if err != nil {
		t.Fatal(err)
	}
	if b.ID != "bk1" || b.Amount != 150000 {
		t.Fatalf("booking = %+v", b)
	}
	if len(notifier.successes) != 1 || notifier.successes[0] != "seats held, pay within 5 minutes" {
		t.Fatalf("notices = %v", notifier.successes)
	}

	p, err := flow.CreatePayment(ctx, b.ID, b.Amount, "momo")
	if err != nil {
		t.Fatal(err)
	}
	if p.PaymentURL != "https://pay.example/x" {
		t.Fatalf("payment = %+v", p)
	}
	if len(nav.urls) != 1 || nav.urls[0] != "https://pay.example/x" {
		t.Fatalf("expected navigation to the provider page, got %v", nav.urls)
	}

	confirmed, err := flow.ConfirmBooking(ctx, "bk1", "txn1", "momo")
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.Status != "CONFIRMED" {
		t.Fatalf("booking = %+v", confirmed)
	}
	if len(notifier.successes) != 2 || notifier.successes[1] != "booking succeeded" {
		t.Fatalf("notices = %v", notifier.successes)
	}
	if flow.Loading() {
		t.Fatal("loading flag must be reset after each call")
	}
}

func TestCreatePaymentWithoutLinkNeverNavigates(t *testing.T) {
	e := echo.New()
	e.POST("/payments/vnpay", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, echo.Map{"id": "pay1", "bookingId": "bk1"})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	flow, nav, notifier := newFlow(t, srv.URL)

	_, err := flow.CreatePayment(context.Background(), "bk1", 1000, "")
	if err == nil || err.Error() != "no payment link received" {
		t.Fatalf("err = %v", err)
	}
	if len(nav.urls) != 0 {
		t.Fatalf("must not navigate without a payment link, got %v", nav.urls)
	}
	if len(notifier.errors) != 1 || notifier.errors[0] != "no payment link received" {
		t.Fatalf("notices = %v", notifier.errors)
	}
}

func TestHoldSeatsSurfacesBackendMessage(t *testing.T) {
	e := echo.New()
	e.POST("/bookings", func(c echo.Context) error {
		return c.JSON(http.StatusConflict, echo.Map{"message": "some seats are unavailable"})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	flow, _, notifier := newFlow(t, srv.URL)

	_, err := flow.HoldSeats(context.Background(), "show123", []string{"A1"})
	if err == nil || err.Error() != "some seats are unavailable" {
		t.Fatalf("err = %v", err)
	}
	if len(notifier.errors) != 1 || notifier.errors[0] != "some seats are unavailable" {
		t.Fatalf("notices = %v", notifier.errors)
	}
}

func TestHoldSeatsValidatesBeforeSending(t *testing.T) {
	flow, _, notifier := newFlow(t, "http://127.0.0.1:1") // must never be reached

	if _, err := flow.HoldSeats(context.Background(), "show123", nil); err == nil {
		t.Fatal("expected validation error for empty seat list")
	}
	if len(notifier.errors) != 1 {
		t.Fatalf("notices = %v", notifier.errors)
	}
}

func TestCreatePaymentRejectsUnknownMethod(t *testing.T) {
	flow, nav, _ := newFlow(t, "http://127.0.0.1:1")

	_, err := flow.CreatePayment(context.Background(), "bk1", 1000, "paypal")
	if err == nil || !strings.Contains(err.Error(), "unsupported payment method") {
		t.Fatalf("err = %v", err)
	}
	if len(nav.urls) != 0 {
		t.Fatal("must not navigate")
	}
}
