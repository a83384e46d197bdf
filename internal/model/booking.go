package model

import "time"

// Booking is the backend's booking record as returned by the booking
// endpoints.  Only the fields the client flow needs are mapped.
//
// Fields:
//  ID         – booking identifier, input to payment creation and confirmation.
//  ShowtimeID – showtime the booking belongs to.
//  Seats      – seat codes held by this booking.
//  Amount     – total price in the platform's minor currency unit.
//  Status     – backend status string (e.g. PENDING, CONFIRMED).
//  ExpiresAt  – when the underlying seat hold lapses.
type Booking struct {
	ID         string    `json:"id"`
	ShowtimeID string    `json:"showtimeId"`
	Seats      []string  `json:"seats"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Payment is the result of payment creation.  PaymentURL points at the
// provider's hosted page; the client must navigate there and has no further
// control over the settlement.
type Payment struct {
	ID            string `json:"id"`
	BookingID     string `json:"bookingId"`
	Method        string `json:"method"`
	PaymentURL    string `json:"paymentUrl"`
	TransactionID string `json:"transactionId"`
}
