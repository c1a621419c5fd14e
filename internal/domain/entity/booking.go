package entity

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are legal from s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
	BookingCancelled: {},
	BookingCompleted: {},
}

// Booking reserves a listing for a half-open date range [CheckIn, CheckOut).
type Booking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ListingID       primitive.ObjectID `bson:"listing_id"`
	GuestID         primitive.ObjectID `bson:"guest_id"`
	CheckIn         time.Time          `bson:"check_in"`
	CheckOut        time.Time          `bson:"check_out"`
	NumberOfGuests  int                `bson:"number_of_guests"`
	TotalPrice      float64            `bson:"total_price"`
	Status          BookingStatus      `bson:"status"`
	SpecialRequests string             `bson:"special_requests,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
	Version         int64              `bson:"version"`
}

// NewBooking creates a pending booking against the given listing. The total price
// is a quote at creation time; it is locked in again on confirmation.
func NewBooking(listing *Listing, guestID primitive.ObjectID, checkIn, checkOut time.Time, guests int, specialRequests string) (*Booking, error) {
	if listing == nil {
		return nil, fmt.Errorf("%w: listing is required", domain.ErrInvalidInput)
	}
	if guestID.IsZero() {
		return nil, fmt.Errorf("%w: guest_id is required", domain.ErrInvalidInput)
	}
	if err := validateStay(listing, checkIn, checkOut, guests); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &Booking{
		ID:              primitive.NewObjectID(),
		ListingID:       listing.ID,
		GuestID:         guestID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		NumberOfGuests:  guests,
		Status:          BookingPending,
		SpecialRequests: specialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	b.TotalPrice = float64(b.Nights()) * listing.PricePerNight
	return b, nil
}

// Reschedule changes the stay of a pending booking and re-quotes the price.
func (b *Booking) Reschedule(listing *Listing, checkIn, checkOut time.Time, guests int, specialRequests string) error {
	if b.Status != BookingPending {
		return fmt.Errorf("%w: only pending bookings can be edited", domain.ErrInvalidTransition)
	}
	if err := validateStay(listing, checkIn, checkOut, guests); err != nil {
		return err
	}
	b.CheckIn = checkIn
	b.CheckOut = checkOut
	b.NumberOfGuests = guests
	b.SpecialRequests = specialRequests
	b.TotalPrice = float64(b.Nights()) * listing.PricePerNight
	b.touch()
	return nil
}

func validateStay(listing *Listing, checkIn, checkOut time.Time, guests int) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return fmt.Errorf("%w: check_in and check_out are required", domain.ErrInvalidInput)
	}
	if !checkOut.After(checkIn) {
		return fmt.Errorf("%w: check_out must be after check_in", domain.ErrInvalidInput)
	}
	if guests < 1 {
		return fmt.Errorf("%w: number_of_guests must be at least 1", domain.ErrInvalidInput)
	}
	if guests > listing.MaxGuests {
		return fmt.Errorf("%w: number_of_guests (%d) exceeds listing capacity (%d)", domain.ErrInvalidInput, guests, listing.MaxGuests)
	}
	return nil
}

// Nights is the length of the stay: [check_in, check_out) counted in nights.
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// Overlaps reports whether the booking's range shares at least one night with
// [checkIn, checkOut). Cancelled bookings never block a date range.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	if b.Status == BookingCancelled {
		return false
	}
	return b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
}

func (b *Booking) canTransition(to BookingStatus) bool {
	for _, s := range bookingTransitions[b.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// Confirm locks in the total price at the listing's current nightly rate.
// Later listing price changes do not touch a confirmed booking.
func (b *Booking) Confirm(pricePerNight float64) error {
	if !b.canTransition(BookingConfirmed) {
		return transitionError(b.Status, BookingConfirmed)
	}
	b.TotalPrice = float64(b.Nights()) * pricePerNight
	b.Status = BookingConfirmed
	b.touch()
	return nil
}

// Cancel frees the date range immediately for future overlap checks.
func (b *Booking) Cancel() error {
	if !b.canTransition(BookingCancelled) {
		return transitionError(b.Status, BookingCancelled)
	}
	b.Status = BookingCancelled
	b.touch()
	return nil
}

// Complete is time-gated: legal only once the check-out date has passed.
func (b *Booking) Complete(now time.Time) error {
	if !b.canTransition(BookingCompleted) {
		return transitionError(b.Status, BookingCompleted)
	}
	if now.Before(b.CheckOut) {
		return fmt.Errorf("%w: check-out is %s", domain.ErrPrematureCompletion, b.CheckOut.Format("2006-01-02"))
	}
	b.Status = BookingCompleted
	b.touch()
	return nil
}

func (b *Booking) touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

func transitionError(from, to BookingStatus) error {
	return fmt.Errorf("%w: from %s to %s", domain.ErrInvalidTransition, from, to)
}
