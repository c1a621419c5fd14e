package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

type ListingService interface {
	Create(ctx context.Context, actor Actor, params entity.ListingParams) (*entity.Listing, error)
	Update(ctx context.Context, actor Actor, id primitive.ObjectID, params entity.ListingParams) (*entity.Listing, error)
	// Delete refuses while non-cancelled bookings reference the listing; otherwise
	// the listing, its reviews and its cancelled bookings go in one transaction.
	Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Listing, error)
	List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error)
}

type listingService struct {
	listingRepo repository.ListingRepository
	cache       repository.ListingCache
	cacheTTL    time.Duration
	retrier     storeRetrier
	log         logger.Logger
}

func NewListingService(
	listingRepo repository.ListingRepository,
	cache repository.ListingCache,
	cacheCfg config.CacheConfig,
	storeCfg config.StoreConfig,
	log logger.Logger,
) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		cache:       cache,
		cacheTTL:    cacheCfg.ListingTTL,
		retrier:     newStoreRetrier(storeCfg, log),
		log:         log,
	}
}

func (s *listingService) Create(ctx context.Context, actor Actor, params entity.ListingParams) (*entity.Listing, error) {
	if actor.Role != entity.RoleHost && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only hosts can create listings", domain.ErrForbidden)
	}

	listing, err := entity.NewListing(actor.ID, params)
	if err != nil {
		return nil, err
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.listingRepo.Create(ctx, listing)
	}); err != nil {
		s.log.Errorf("failed to create listing for host %s: %v", actor.ID.Hex(), err)
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.log.Infof("listing %s created by host %s", listing.ID.Hex(), actor.ID.Hex())
	return listing, nil
}

func (s *listingService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, params entity.ListingParams) (*entity.Listing, error) {
	listing, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.HostID != actor.ID && !actor.IsAdmin() {
		s.log.Warnf("user %s attempted to update listing %s owned by %s", actor.ID.Hex(), id.Hex(), listing.HostID.Hex())
		return nil, fmt.Errorf("%w: only the listing host can update it", domain.ErrForbidden)
	}

	if err := listing.Apply(params); err != nil {
		return nil, err
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.listingRepo.Update(ctx, listing)
	}); err != nil {
		s.log.Errorf("failed to update listing %s: %v", id.Hex(), err)
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	s.invalidate(ctx, id)
	s.log.Infof("listing %s updated by user %s", id.Hex(), actor.ID.Hex())
	return listing, nil
}

func (s *listingService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	listing, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}

	if listing.HostID != actor.ID && !actor.IsAdmin() {
		s.log.Warnf("user %s attempted to delete listing %s owned by %s", actor.ID.Hex(), id.Hex(), listing.HostID.Hex())
		return fmt.Errorf("%w: only the listing host can delete it", domain.ErrForbidden)
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.listingRepo.DeleteWithDependents(ctx, id)
	}); err != nil {
		if errors.Is(err, domain.ErrActiveBookingsExist) {
			s.log.Warnf("deletion of listing %s blocked by non-cancelled bookings", id.Hex())
			return err
		}
		s.log.Errorf("failed to delete listing %s: %v", id.Hex(), err)
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	s.invalidate(ctx, id)
	s.log.Infof("listing %s deleted by user %s", id.Hex(), actor.ID.Hex())
	return nil
}

func (s *listingService) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Listing, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warnf("listing cache read failed for %s: %v", id.Hex(), err)
		}
	}

	listing, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listing, s.cacheTTL); err != nil {
			s.log.Warnf("failed to cache listing %s: %v", id.Hex(), err)
		}
	}
	return listing, nil
}

func (s *listingService) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	var listings []*entity.Listing
	err := s.retrier.read(ctx, "listings.find", func(ctx context.Context) error {
		var readErr error
		listings, readErr = s.listingRepo.Find(ctx, filter)
		return readErr
	})
	if err != nil {
		s.log.Errorf("failed to list listings: %v", err)
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// fetch reads the listing from the store, bypassing the cache.
func (s *listingService) fetch(ctx context.Context, id primitive.ObjectID) (*entity.Listing, error) {
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

func (s *listingService) invalidate(ctx context.Context, id primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warnf("failed to invalidate listing cache for %s: %v", id.Hex(), err)
	}
}
