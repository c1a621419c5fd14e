package entity

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
)

// Review is a rating left by a user for a listing, optionally evidencing a
// completed booking. At most one review exists per (user, listing) pair;
// the store enforces that with a unique index.
type Review struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	ListingID primitive.ObjectID  `bson:"listing_id"`
	UserID    primitive.ObjectID  `bson:"user_id"`
	BookingID *primitive.ObjectID `bson:"booking_id,omitempty"`
	Rating    int                 `bson:"rating"`
	Comment   string              `bson:"comment,omitempty"`
	CreatedAt time.Time           `bson:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at"`
}

func NewReview(listingID, userID primitive.ObjectID, bookingID *primitive.ObjectID, rating int, comment string) (*Review, error) {
	if listingID.IsZero() {
		return nil, fmt.Errorf("%w: listing_id is required", domain.ErrInvalidInput)
	}
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Review{
		ID:        primitive.NewObjectID(),
		ListingID: listingID,
		UserID:    userID,
		BookingID: bookingID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Edit updates rating and comment, keeping the listing/user/booking references fixed.
func (r *Review) Edit(rating int, comment string) error {
	if err := validateRating(rating); err != nil {
		return err
	}
	r.Rating = rating
	r.Comment = comment
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	return nil
}
