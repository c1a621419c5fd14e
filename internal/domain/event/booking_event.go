package event

import "time"

// NATS subjects for booking lifecycle events. The worker subscribes to
// SubjectBookingAll; the API publishes only after the owning transaction commits.
const (
	SubjectBookingCreated   = "booking.created"
	SubjectBookingConfirmed = "booking.confirmed"
	SubjectBookingCancelled = "booking.cancelled"
	SubjectBookingAll       = "booking.*"
)

// BookingEvent is the wire schema shared by the API publisher and the
// notification worker.
type BookingEvent struct {
	BookingID    string    `json:"booking_id"`
	ListingID    string    `json:"listing_id"`
	ListingTitle string    `json:"listing_title"`
	GuestID      string    `json:"guest_id"`
	GuestEmail   string    `json:"guest_email"`
	GuestName    string    `json:"guest_name"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	Guests       int       `json:"guests"`
	TotalPrice   float64   `json:"total_price"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}
