package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/adapter/nats"
	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/domain/event"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/platform/metrics"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

// BookingInput carries the guest-editable fields of a booking.
type BookingInput struct {
	ListingID       primitive.ObjectID
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	SpecialRequests string
}

type BookingService interface {
	Create(ctx context.Context, actor Actor, input BookingInput) (*entity.Booking, error)
	GetByID(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Booking, error)
	List(ctx context.Context, actor Actor, filter repository.BookingFilter) ([]*entity.Booking, error)
	// Update reschedules a pending booking, re-running capacity and overlap checks.
	Update(ctx context.Context, actor Actor, id primitive.ObjectID, input BookingInput) (*entity.Booking, error)
	Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error
	Confirm(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Booking, error)
	Cancel(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Booking, error)
	Complete(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Booking, error)
	// Transition dispatches an administrative status change through the state machine.
	Transition(ctx context.Context, actor Actor, id primitive.ObjectID, to entity.BookingStatus) (*entity.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	publisher   nats.MessagePublisher
	metrics     *metrics.MetricsManager
	retrier     storeRetrier
	log         logger.Logger
	now         func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	publisher nats.MessagePublisher,
	mm *metrics.MetricsManager,
	storeCfg config.StoreConfig,
	log logger.Logger,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		metrics:     mm,
		retrier:     newStoreRetrier(storeCfg, log),
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *bookingService) Create(ctx context.Context, actor Actor, input BookingInput) (*entity.Booking, error) {
	listing, err := s.getListing(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsAvailable {
		return nil, fmt.Errorf("%w: listing %s", domain.ErrListingUnavailable, listing.ID.Hex())
	}

	booking, err := entity.NewBooking(listing, actor.ID, input.CheckIn, input.CheckOut, input.Guests, input.SpecialRequests)
	if err != nil {
		return nil, err
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.bookingRepo.CreateIfNoOverlap(ctx, booking)
	}); err != nil {
		if errors.Is(err, domain.ErrOverlapConflict) {
			if s.metrics != nil {
				s.metrics.OverlapConflictsTotal.Inc()
			}
			s.log.Warnf("booking rejected for listing %s: dates %s to %s overlap",
				listing.ID.Hex(), input.CheckIn.Format("2006-01-02"), input.CheckOut.Format("2006-01-02"))
			return nil, err
		}
		s.log.Errorf("failed to create booking for listing %s: %v", listing.ID.Hex(), err)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if s.metrics != nil {
		s.metrics.BookingsCreatedTotal.Inc()
	}
	s.publishEvent(ctx, event.SubjectBookingCreated, booking, listing)

	s.log.Infof("booking %s created for listing %s by guest %s", booking.ID.Hex(), listing.ID.Hex(), actor.ID.Hex())
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, actor Actor, filter repository.BookingFilter) ([]*entity.Booking, error) {
	if !actor.IsAdmin() {
		allowed := false
		if !filter.ListingID.IsZero() {
			listing, err := s.getListing(ctx, filter.ListingID)
			if err != nil {
				return nil, err
			}
			allowed = listing.HostID == actor.ID
		}
		// Non-admins see their own bookings unless they host the filtered listing.
		if !allowed {
			filter.GuestID = actor.ID
		}
	}

	var bookings []*entity.Booking
	err := s.retrier.read(ctx, "bookings.find", func(ctx context.Context) error {
		var readErr error
		bookings, readErr = s.bookingRepo.Find(ctx, filter)
		return readErr
	})
	if err != nil {
		s.log.Errorf("failed to list bookings: %v", err)
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, input BookingInput) (*entity.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only the booking guest can edit it", domain.ErrForbidden)
	}

	listing, err := s.getListing(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}

	if err := booking.Reschedule(listing, input.CheckIn, input.CheckOut, input.Guests, input.SpecialRequests); err != nil {
		return nil, err
	}

	// The overlap re-check and the replace run in one store transaction; a
	// service-side pre-check would race concurrent creations.
	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.bookingRepo.RescheduleIfNoOverlap(ctx, booking)
	}); err != nil {
		if errors.Is(err, domain.ErrOverlapConflict) {
			if s.metrics != nil {
				s.metrics.OverlapConflictsTotal.Inc()
			}
			s.log.Warnf("reschedule rejected for booking %s: dates %s to %s overlap",
				id.Hex(), input.CheckIn.Format("2006-01-02"), input.CheckOut.Format("2006-01-02"))
			return nil, err
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			s.log.Warnf("concurrent modification detected on booking %s", id.Hex())
			return nil, err
		}
		s.log.Errorf("failed to reschedule booking %s: %v", id.Hex(), err)
		return nil, fmt.Errorf("failed to reschedule booking: %w", err)
	}

	s.log.Infof("booking %s rescheduled by user %s", id.Hex(), actor.ID.Hex())
	return booking, nil
}

func (s *bookingService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete bookings; guests cancel instead", domain.ErrForbidden)
	}
	if booking.Status == entity.BookingConfirmed {
		return fmt.Errorf("%w: cancel the booking before deleting it", domain.ErrInvalidTransition)
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.bookingRepo.Delete(ctx, id)
	}); err != nil {
		s.log.Errorf("failed to delete booking %s: %v", id.Hex(), err)
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.log.Infof("booking %s deleted by admin %s", id.Hex(), actor.ID.Hex())
	return nil
}

func (s *bookingService) Confirm(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	listing, err := s.getListing(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.HostID != actor.ID && !actor.IsAdmin() {
		s.log.Warnf("user %s attempted to confirm booking %s on listing hosted by %s", actor.ID.Hex(), id.Hex(), listing.HostID.Hex())
		return nil, fmt.Errorf("%w: only the listing host can confirm a booking", domain.ErrForbidden)
	}

	if err := booking.Confirm(listing.PricePerNight); err != nil {
		return nil, err
	}
	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, event.SubjectBookingConfirmed, booking, listing)
	s.log.Infof("booking %s confirmed by user %s, total price locked at %.2f", id.Hex(), actor.ID.Hex(), booking.TotalPrice)
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only the booking guest can cancel it", domain.ErrForbidden)
	}

	if err := booking.Cancel(); err != nil {
		return nil, err
	}
	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, event.SubjectBookingCancelled, booking, nil)
	s.log.Infof("booking %s cancelled by user %s, date range freed", id.Hex(), actor.ID.Hex())
	return booking, nil
}

func (s *bookingService) Complete(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	listing, err := s.getListing(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.HostID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only the listing host can complete a booking", domain.ErrForbidden)
	}

	if err := booking.Complete(s.now()); err != nil {
		return nil, err
	}
	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Infof("booking %s completed by user %s", id.Hex(), actor.ID.Hex())
	return booking, nil
}

func (s *bookingService) Transition(ctx context.Context, actor Actor, id primitive.ObjectID, to entity.BookingStatus) (*entity.Booking, error) {
	switch to {
	case entity.BookingConfirmed:
		return s.Confirm(ctx, actor, id)
	case entity.BookingCancelled:
		return s.Cancel(ctx, actor, id)
	case entity.BookingCompleted:
		return s.Complete(ctx, actor, id)
	case entity.BookingPending:
		return nil, fmt.Errorf("%w: bookings cannot return to pending", domain.ErrInvalidTransition)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, to)
	}
}

func (s *bookingService) authorizeView(ctx context.Context, actor Actor, booking *entity.Booking) error {
	if actor.IsAdmin() || booking.GuestID == actor.ID {
		return nil
	}
	listing, err := s.getListing(ctx, booking.ListingID)
	if err == nil && listing.HostID == actor.ID {
		return nil
	}
	return fmt.Errorf("%w: booking %s", domain.ErrForbidden, booking.ID.Hex())
}

func (s *bookingService) getBooking(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	var booking *entity.Booking
	err := s.retrier.read(ctx, "bookings.find_by_id", func(ctx context.Context) error {
		var readErr error
		booking, readErr = s.bookingRepo.FindByID(ctx, id)
		return readErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (s *bookingService) getListing(ctx context.Context, id primitive.ObjectID) (*entity.Listing, error) {
	var listing *entity.Listing
	err := s.retrier.read(ctx, "listings.find_by_id", func(ctx context.Context) error {
		var readErr error
		listing, readErr = s.listingRepo.FindByID(ctx, id)
		return readErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: listing %s", domain.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (s *bookingService) saveBooking(ctx context.Context, booking *entity.Booking) error {
	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.bookingRepo.Update(ctx, booking)
	}); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			s.log.Warnf("concurrent modification detected on booking %s", booking.ID.Hex())
			return err
		}
		s.log.Errorf("failed to save booking %s: %v", booking.ID.Hex(), err)
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// publishEvent fires after the owning write has committed. Delivery failures are
// logged, never surfaced to the caller.
func (s *bookingService) publishEvent(ctx context.Context, subject string, booking *entity.Booking, listing *entity.Listing) {
	if s.publisher == nil {
		return
	}

	evt := event.BookingEvent{
		BookingID:  booking.ID.Hex(),
		ListingID:  booking.ListingID.Hex(),
		GuestID:    booking.GuestID.Hex(),
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		Guests:     booking.NumberOfGuests,
		TotalPrice: booking.TotalPrice,
		Status:     string(booking.Status),
		OccurredAt: s.now(),
	}
	if listing != nil {
		evt.ListingTitle = listing.Title
	}
	if guest, err := s.userRepo.FindByID(ctx, booking.GuestID); err == nil {
		evt.GuestEmail = guest.Email
		evt.GuestName = guest.FirstName
		if evt.GuestName == "" {
			evt.GuestName = guest.Username
		}
	} else {
		s.log.Warnf("could not resolve guest %s for booking event: %v", booking.GuestID.Hex(), err)
	}

	if err := s.publisher.Publish(ctx, subject, evt); err != nil {
		s.log.Warnf("failed to publish %s for booking %s: %v", subject, booking.ID.Hex(), err)
	}
}
