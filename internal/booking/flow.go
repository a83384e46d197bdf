// Package booking sequences the hold -> pay -> confirm flow against the
// backend.  Each step is independently invokable; no step is idempotent, so
// retries are the caller's responsibility.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-client/internal/api"
	"github.com/iliyamo/cinema-booking-client/internal/model"
)

// Payment methods accepted by the platform.
const (
	MethodVNPay = "vnpay"
	MethodMomo  = "momo"
)

// User-visible notices.  The hold expiry matches the backend's five-minute
// seat hold.
const (
	noticeHeld      = "seats held, pay within 5 minutes"
	noticeConfirmed = "booking succeeded"

	fallbackHold    = "could not hold seats"
	fallbackPayment = "could not create payment"
	fallbackConfirm = "could not confirm booking"

	errNoPaymentLink = "no payment link received"
)

// Notifier receives the user-facing outcome of each step.  The UI shows
// these as transient notices.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier routes notices to the log, for headless use.
type LogNotifier struct {
	Log *zap.SugaredLogger
}

func (n LogNotifier) Success(msg string) { n.Log.Infof("%s", msg) }
func (n LogNotifier) Error(msg string)   { n.Log.Warnf("%s", msg) }

// Flow orchestrates the three booking steps.  The loading flag covers the
// duration of each individual call, not the sequence.
type Flow struct {
	api      *api.Client
	nav      api.Navigator
	notifier Notifier
	validate *validator.Validate
	log      *zap.SugaredLogger
	loading  atomic.Bool
}

// NewFlow builds a Flow.  nav is used for the hand-off to the payment
// provider's hosted page.
func NewFlow(client *api.Client, nav api.Navigator, notifier Notifier, log *zap.SugaredLogger) *Flow {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if notifier == nil {
		notifier = LogNotifier{Log: log}
	}
	return &Flow{
		api:      client,
		nav:      nav,
		notifier: notifier,
		validate: validator.New(),
		log:      log.Named("booking"),
	}
}

// Loading reports whether a step call is currently in flight.
func (f *Flow) Loading() bool {
	return f.loading.Load()
}

type holdRequest struct {
	ShowtimeID string   `json:"showtimeId" validate:"required"`
	Seats      []string `json:"seats" validate:"required,min=1,dive,required"`
}

// HoldSeats creates a booking that holds the given seats.  On success the
// user is told to pay within the hold window; on failure the normalized
// message is shown and returned so the caller can halt the sequence.
func (f *Flow) HoldSeats(ctx context.Context, showtimeID string, seats []string) (*model.Booking, error) {
	f.loading.Store(true)
	defer f.loading.Store(false)

	req := holdRequest{ShowtimeID: showtimeID, Seats: seats}
	if err := f.validate.Struct(req); err != nil {
		return nil, f.fail(fallbackHold, err)
	}
	raw, err := f.api.Post(ctx, "/bookings", req)
	if err != nil {
		return nil, f.fail(fallbackHold, err)
	}
	var b model.Booking
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, f.fail(fallbackHold, fmt.Errorf("decode booking: %w", err))
	}
	f.notifier.Success(noticeHeld)
	return &b, nil
}

type paymentRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
}

// CreatePayment creates a payment for the booking and navigates to the
// provider's hosted page.  method defaults to vnpay.  A result without a
// payment URL fails without navigating.
func (f *Flow) CreatePayment(ctx context.Context, bookingID string, amount int64, method string) (*model.Payment, error) {
	f.loading.Store(true)
	defer f.loading.Store(false)

	if method == "" {
		method = MethodVNPay
	}
	if method != MethodVNPay && method != MethodMomo {
		return nil, f.fail(fallbackPayment, fmt.Errorf("unsupported payment method %q", method))
	}
	req := paymentRequest{BookingID: bookingID, Amount: amount}
	if err := f.validate.Struct(req); err != nil {
		return nil, f.fail(fallbackPayment, err)
	}
	raw, err := f.api.Post(ctx, "/payments/"+method, req)
	if err != nil {
		return nil, f.fail(fallbackPayment, err)
	}
	var p model.Payment
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, f.fail(fallbackPayment, fmt.Errorf("decode payment: %w", err))
	}
	if p.PaymentURL == "" {
		return nil, f.fail(fallbackPayment, errors.New(errNoPaymentLink))
	}
	// The provider page is outside this system's control from here on.
	if f.nav != nil {
		if err := f.nav.Open(p.PaymentURL); err != nil {
			f.log.Warnf("open payment page failed: %v", err)
		}
	}
	return &p, nil
}

type confirmRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	TransactionID string `json:"transactionId" validate:"required"`
}

// ConfirmBooking reports the settled payment back to the booking service.
func (f *Flow) ConfirmBooking(ctx context.Context, bookingID, paymentID, method string) (*model.Booking, error) {
	f.loading.Store(true)
	defer f.loading.Store(false)

	req := confirmRequest{PaymentMethod: method, TransactionID: paymentID}
	if err := f.validate.Struct(req); err != nil {
		return nil, f.fail(fallbackConfirm, err)
	}
	raw, err := f.api.Post(ctx, "/bookings/"+bookingID+"/confirm", req)
	if err != nil {
		return nil, f.fail(fallbackConfirm, err)
	}
	var b model.Booking
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, f.fail(fallbackConfirm, fmt.Errorf("decode booking: %w", err))
	}
	f.notifier.Success(noticeConfirmed)
	return &b, nil
}

// fail normalizes err to a human-readable message, shows it, and returns an
// error carrying the same message so callers can both display feedback and
// branch on rejection.
func (f *Flow) fail(fallback string, err error) error {
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	f.notifier.Error(msg)
	return errors.New(msg)
}
