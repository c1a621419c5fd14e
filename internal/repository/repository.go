package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
)

// Repositories return domain sentinel errors (domain.ErrNotFound,
// domain.ErrOverlapConflict, ...) rather than driver errors.

type ListingFilter struct {
	City         string
	Country      string
	PropertyType entity.PropertyType
	MinPrice     float64
	MaxPrice     float64
	Available    *bool
	HostID       primitive.ObjectID
	Page         int64
	Limit        int64
}

type BookingFilter struct {
	ListingID primitive.ObjectID
	GuestID   primitive.ObjectID
	Status    entity.BookingStatus
	Page      int64
	Limit     int64
}

type ReviewFilter struct {
	ListingID primitive.ObjectID
	UserID    primitive.ObjectID
	MinRating int
	Page      int64
	Limit     int64
}

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	Update(ctx context.Context, listing *entity.Listing) error
	// DeleteWithDependents removes the listing, its reviews and its cancelled
	// bookings in one transaction. It fails with domain.ErrActiveBookingsExist
	// when a non-cancelled booking still references the listing.
	DeleteWithDependents(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Listing, error)
	Find(ctx context.Context, filter ListingFilter) ([]*entity.Listing, error)
	DeleteAll(ctx context.Context) error
}

type BookingRepository interface {
	// CreateIfNoOverlap inserts the booking only if no non-cancelled booking on
	// the same listing overlaps its date range. Check and insert run in one
	// transaction; returns domain.ErrOverlapConflict on collision.
	CreateIfNoOverlap(ctx context.Context, booking *entity.Booking) error
	// Update persists the booking with optimistic locking on Version; it expects
	// the in-memory Version to be the already-incremented one and matches the
	// stored document on Version-1, returning domain.ErrVersionConflict on a miss.
	Update(ctx context.Context, booking *entity.Booking) error
	// RescheduleIfNoOverlap persists a rescheduled booking only if no other
	// non-cancelled booking on the same listing overlaps its new date range.
	// Check and replace run in one transaction so a concurrent insert between
	// them cannot slip an overlapping sibling in; the replace itself carries the
	// same Version-1 optimistic filter as Update.
	RescheduleIfNoOverlap(ctx context.Context, booking *entity.Booking) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error)
	Find(ctx context.Context, filter BookingFilter) ([]*entity.Booking, error)
	DeleteAll(ctx context.Context) error
}

type ReviewRepository interface {
	// Create maps a duplicate (listing_id, user_id) key to domain.ErrAlreadyReviewed.
	Create(ctx context.Context, review *entity.Review) error
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error)
	Find(ctx context.Context, filter ReviewFilter) ([]*entity.Review, error)
	DeleteAll(ctx context.Context) error
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Find(ctx context.Context, page, limit int64) ([]*entity.User, error)
}

type PaymentRepository interface {
	// Create maps a duplicate booking_id key to domain.ErrPaymentExists.
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Payment, error)
	FindByTxRef(ctx context.Context, txRef string) (*entity.Payment, error)
}

// ListingCache is a read-through cache in front of ListingRepository.FindByID.
type ListingCache interface {
	Get(ctx context.Context, id primitive.ObjectID) (*entity.Listing, error)
	Set(ctx context.Context, listing *entity.Listing, ttl time.Duration) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
