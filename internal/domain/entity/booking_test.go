package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
)

func testListing(t *testing.T) *Listing {
	t.Helper()
	listing, err := NewListing(primitive.NewObjectID(), ListingParams{
		Title:         "Cozy Apartment in Paris",
		PropertyType:  PropertyApartment,
		PricePerNight: 100,
		MaxGuests:     4,
		IsAvailable:   true,
	})
	require.NoError(t, err)
	return listing
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewBooking_QuotesTotalPrice(t *testing.T) {
	listing := testListing(t)
	guestID := primitive.NewObjectID()

	booking, err := NewBooking(listing, guestID, date(2026, 9, 10), date(2026, 9, 13), 2, "")
	require.NoError(t, err)

	assert.Equal(t, BookingPending, booking.Status)
	assert.Equal(t, 3, booking.Nights())
	assert.Equal(t, 300.0, booking.TotalPrice)
	assert.Equal(t, int64(1), booking.Version)
}

func TestNewBooking_Validation(t *testing.T) {
	listing := testListing(t)
	guestID := primitive.NewObjectID()

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		guests   int
	}{
		{"check_out before check_in", date(2026, 9, 13), date(2026, 9, 10), 2},
		{"check_out equals check_in", date(2026, 9, 10), date(2026, 9, 10), 2},
		{"zero guests", date(2026, 9, 10), date(2026, 9, 12), 0},
		{"over capacity", date(2026, 9, 10), date(2026, 9, 12), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBooking(listing, guestID, tt.checkIn, tt.checkOut, tt.guests, "")
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBooking_StatusTransitions(t *testing.T) {
	listing := testListing(t)
	after := date(2026, 9, 20)

	newPending := func(t *testing.T) *Booking {
		b, err := NewBooking(listing, primitive.NewObjectID(), date(2026, 9, 10), date(2026, 9, 12), 2, "")
		require.NoError(t, err)
		return b
	}

	t.Run("pending to confirmed", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.Confirm(listing.PricePerNight))
		assert.Equal(t, BookingConfirmed, b.Status)
	})

	t.Run("pending to cancelled", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.Cancel())
		assert.Equal(t, BookingCancelled, b.Status)
	})

	t.Run("pending to completed is illegal", func(t *testing.T) {
		b := newPending(t)
		assert.ErrorIs(t, b.Complete(after), domain.ErrInvalidTransition)
	})

	t.Run("confirmed to completed", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.Confirm(listing.PricePerNight))
		require.NoError(t, b.Complete(after))
		assert.Equal(t, BookingCompleted, b.Status)
	})

	t.Run("confirmed to cancelled", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.Confirm(listing.PricePerNight))
		require.NoError(t, b.Cancel())
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.Cancel())
		assert.ErrorIs(t, b.Confirm(listing.PricePerNight), domain.ErrInvalidTransition)
		assert.ErrorIs(t, b.Complete(after), domain.ErrInvalidTransition)
		assert.ErrorIs(t, b.Cancel(), domain.ErrInvalidTransition)
		assert.True(t, b.Status.IsTerminal())
	})

	t.Run("completed is terminal", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.Confirm(listing.PricePerNight))
		require.NoError(t, b.Complete(after))
		assert.ErrorIs(t, b.Cancel(), domain.ErrInvalidTransition)
		assert.True(t, b.Status.IsTerminal())
	})
}

func TestBooking_CompleteBeforeCheckOut(t *testing.T) {
	listing := testListing(t)
	b, err := NewBooking(listing, primitive.NewObjectID(), date(2026, 9, 10), date(2026, 9, 12), 2, "")
	require.NoError(t, err)
	require.NoError(t, b.Confirm(listing.PricePerNight))

	err = b.Complete(date(2026, 9, 11))
	assert.ErrorIs(t, err, domain.ErrPrematureCompletion)
	assert.Equal(t, BookingConfirmed, b.Status)

	assert.NoError(t, b.Complete(date(2026, 9, 12)))
}

func TestBooking_ConfirmLocksPrice(t *testing.T) {
	listing := testListing(t)
	b, err := NewBooking(listing, primitive.NewObjectID(), date(2026, 9, 10), date(2026, 9, 12), 2, "")
	require.NoError(t, err)
	assert.Equal(t, 200.0, b.TotalPrice)

	// Host raised the price between creation and confirmation.
	require.NoError(t, b.Confirm(150))
	assert.Equal(t, 300.0, b.TotalPrice)
}

func TestBooking_Overlaps(t *testing.T) {
	listing := testListing(t)
	b, err := NewBooking(listing, primitive.NewObjectID(), date(2026, 9, 10), date(2026, 9, 12), 2, "")
	require.NoError(t, err)

	// Half-open range: a stay starting on the check-out day does not collide.
	assert.True(t, b.Overlaps(date(2026, 9, 11), date(2026, 9, 13)))
	assert.True(t, b.Overlaps(date(2026, 9, 9), date(2026, 9, 11)))
	assert.False(t, b.Overlaps(date(2026, 9, 12), date(2026, 9, 14)))
	assert.False(t, b.Overlaps(date(2026, 9, 8), date(2026, 9, 10)))

	require.NoError(t, b.Cancel())
	assert.False(t, b.Overlaps(date(2026, 9, 11), date(2026, 9, 13)))
}

func TestBooking_Reschedule(t *testing.T) {
	listing := testListing(t)
	b, err := NewBooking(listing, primitive.NewObjectID(), date(2026, 9, 10), date(2026, 9, 12), 2, "")
	require.NoError(t, err)
	v := b.Version

	require.NoError(t, b.Reschedule(listing, date(2026, 9, 15), date(2026, 9, 19), 3, "late check-in"))
	assert.Equal(t, 400.0, b.TotalPrice)
	assert.Equal(t, v+1, b.Version)

	require.NoError(t, b.Confirm(listing.PricePerNight))
	err = b.Reschedule(listing, date(2026, 9, 16), date(2026, 9, 18), 3, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
