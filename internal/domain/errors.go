package domain

import "errors"

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates that the acting user is not allowed to perform the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrInvalidInput indicates a field-level constraint violation. Wrapped errors name the field.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrOverlapConflict indicates a booking date-range collision on the same listing.
	ErrOverlapConflict = errors.New("booking dates overlap an existing booking")
	// ErrInvalidTransition indicates an illegal booking status change. Wrapped errors carry from/to.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPrematureCompletion indicates an attempt to complete a booking before its check-out date.
	ErrPrematureCompletion = errors.New("booking cannot be completed before check-out")
	// ErrAlreadyReviewed indicates the user already reviewed this listing.
	ErrAlreadyReviewed = errors.New("review already exists for this user and listing")
	// ErrListingUnavailable indicates the listing does not accept new bookings.
	ErrListingUnavailable = errors.New("listing is not available for booking")
	// ErrActiveBookingsExist blocks listing deletion while non-cancelled bookings reference it.
	ErrActiveBookingsExist = errors.New("listing has non-cancelled bookings")
	// ErrPaymentExists indicates a payment was already initiated for the booking.
	ErrPaymentExists = errors.New("payment already exists for this booking")
	// ErrVersionConflict indicates a concurrent modification was detected.
	ErrVersionConflict = errors.New("entity was modified by another process")
	// ErrStoreUnavailable indicates the backing store timed out or is unreachable.
	ErrStoreUnavailable = errors.New("backing store unavailable")
)
