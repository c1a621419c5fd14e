package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askhat-dev/travel-marketplace/internal/domain/event"
)

func sampleEvent() event.BookingEvent {
	return event.BookingEvent{
		BookingID:    "65f1c0ffee0000000000aaaa",
		ListingTitle: "Cozy Apartment in Paris",
		GuestEmail:   "guest@example.com",
		GuestName:    "Alice Johnson",
		CheckIn:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:     time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		Guests:       2,
		TotalPrice:   450,
		Status:       "pending",
	}
}

func TestComposeEmail_Created(t *testing.T) {
	evt := sampleEvent()

	subject, body := composeEmail(event.SubjectBookingCreated, evt)
	assert.Equal(t, "Your booking request is received", subject)
	assert.Contains(t, body, "Dear Alice Johnson")
	assert.Contains(t, body, "Thank you for your booking!")
	assert.Contains(t, body, evt.ListingTitle)
	assert.Contains(t, body, evt.BookingID)
	assert.Contains(t, body, "2026-10-01")
	assert.Contains(t, body, "2026-10-04")
	assert.Contains(t, body, "450.00")
}

func TestComposeEmail_Confirmed(t *testing.T) {
	subject, body := composeEmail(event.SubjectBookingConfirmed, sampleEvent())
	assert.Equal(t, "Your booking is confirmed", subject)
	assert.Contains(t, body, "confirmed by the host")
}

func TestComposeEmail_Cancelled(t *testing.T) {
	subject, body := composeEmail(event.SubjectBookingCancelled, sampleEvent())
	assert.Equal(t, "Your booking is cancelled", subject)
	assert.Contains(t, body, "cancelled")
}

func TestComposeEmail_UnknownSubjectIsSilent(t *testing.T) {
	subject, body := composeEmail("booking.rescheduled", sampleEvent())
	assert.Empty(t, subject)
	assert.Empty(t, body)
}

func TestComposeEmail_FallbackGreeting(t *testing.T) {
	evt := sampleEvent()
	evt.GuestName = ""

	_, body := composeEmail(event.SubjectBookingCreated, evt)
	assert.Contains(t, body, "Dear traveller")
}
