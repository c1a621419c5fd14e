package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

// ReviewInput carries the fields a reviewer controls. BookingID is optional
// evidence of a completed stay; when present it is verified against the store.
type ReviewInput struct {
	ListingID primitive.ObjectID
	BookingID *primitive.ObjectID
	Rating    int
	Comment   string
}

type ReviewService interface {
	Create(ctx context.Context, actor Actor, input ReviewInput) (*entity.Review, error)
	Update(ctx context.Context, actor Actor, id primitive.ObjectID, rating int, comment string) (*entity.Review, error)
	Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error)
	List(ctx context.Context, filter repository.ReviewFilter) ([]*entity.Review, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	listingRepo repository.ListingRepository
	bookingRepo repository.BookingRepository
	retrier     storeRetrier
	log         logger.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	listingRepo repository.ListingRepository,
	bookingRepo repository.BookingRepository,
	storeCfg config.StoreConfig,
	log logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		listingRepo: listingRepo,
		bookingRepo: bookingRepo,
		retrier:     newStoreRetrier(storeCfg, log),
		log:         log,
	}
}

func (s *reviewService) Create(ctx context.Context, actor Actor, input ReviewInput) (*entity.Review, error) {
	err := s.retrier.read(ctx, "listings.find_by_id", func(ctx context.Context) error {
		_, readErr := s.listingRepo.FindByID(ctx, input.ListingID)
		return readErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: listing %s", domain.ErrNotFound, input.ListingID.Hex())
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	if input.BookingID != nil {
		if err := s.verifyBookingEvidence(ctx, actor, input.ListingID, *input.BookingID); err != nil {
			return nil, err
		}
	}

	review, err := entity.NewReview(input.ListingID, actor.ID, input.BookingID, input.Rating, input.Comment)
	if err != nil {
		return nil, err
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.reviewRepo.Create(ctx, review)
	}); err != nil {
		if errors.Is(err, domain.ErrAlreadyReviewed) {
			s.log.Warnf("user %s already reviewed listing %s", actor.ID.Hex(), input.ListingID.Hex())
			return nil, err
		}
		s.log.Errorf("failed to create review for listing %s: %v", input.ListingID.Hex(), err)
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.log.Infof("review %s created for listing %s by user %s", review.ID.Hex(), input.ListingID.Hex(), actor.ID.Hex())
	return review, nil
}

// verifyBookingEvidence checks that the referenced booking is the actor's own
// completed stay at the reviewed listing.
func (s *reviewService) verifyBookingEvidence(ctx context.Context, actor Actor, listingID, bookingID primitive.ObjectID) error {
	var booking *entity.Booking
	err := s.retrier.read(ctx, "bookings.find_by_id", func(ctx context.Context) error {
		var readErr error
		booking, readErr = s.bookingRepo.FindByID(ctx, bookingID)
		return readErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: booking_id references a booking that does not exist", domain.ErrInvalidInput)
		}
		return fmt.Errorf("failed to verify booking: %w", err)
	}

	if booking.GuestID != actor.ID {
		return fmt.Errorf("%w: booking_id belongs to another guest", domain.ErrForbidden)
	}
	if booking.ListingID != listingID {
		return fmt.Errorf("%w: booking_id references a different listing", domain.ErrInvalidInput)
	}
	if booking.Status != entity.BookingCompleted {
		return fmt.Errorf("%w: only completed bookings can back a review", domain.ErrInvalidInput)
	}
	return nil
}

func (s *reviewService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, rating int, comment string) (*entity.Review, error) {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only the review author can edit it", domain.ErrForbidden)
	}

	if err := review.Edit(rating, comment); err != nil {
		return nil, err
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.reviewRepo.Update(ctx, review)
	}); err != nil {
		s.log.Errorf("failed to update review %s: %v", id.Hex(), err)
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.log.Infof("review %s updated by user %s", id.Hex(), actor.ID.Hex())
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if review.UserID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: only the review author can delete it", domain.ErrForbidden)
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.reviewRepo.Delete(ctx, id)
	}); err != nil {
		s.log.Errorf("failed to delete review %s: %v", id.Hex(), err)
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.log.Infof("review %s deleted by user %s", id.Hex(), actor.ID.Hex())
	return nil
}

func (s *reviewService) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error) {
	var review *entity.Review
	err := s.retrier.read(ctx, "reviews.find_by_id", func(ctx context.Context) error {
		var readErr error
		review, readErr = s.reviewRepo.FindByID(ctx, id)
		return readErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: review %s", domain.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

func (s *reviewService) List(ctx context.Context, filter repository.ReviewFilter) ([]*entity.Review, error) {
	var reviews []*entity.Review
	err := s.retrier.read(ctx, "reviews.find", func(ctx context.Context) error {
		var readErr error
		reviews, readErr = s.reviewRepo.Find(ctx, filter)
		return readErr
	})
	if err != nil {
		s.log.Errorf("failed to list reviews: %v", err)
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
