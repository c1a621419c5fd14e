package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

func newListingServiceForTest(repo repository.ListingRepository, cache repository.ListingCache) ListingService {
	return NewListingService(repo, cache, config.CacheConfig{ListingTTL: 0}, testStoreConfig(), logger.NewNop())
}

func listingParamsForTest() entity.ListingParams {
	return entity.ListingParams{
		Title:         "Modern Berlin Apartment",
		City:          "Berlin",
		Country:       "Germany",
		PropertyType:  entity.PropertyApartment,
		PricePerNight: 90,
		MaxGuests:     3,
		IsAvailable:   true,
	}
}

func TestListingService_Create_RequiresHostRole(t *testing.T) {
	repo := new(MockListingRepository)
	svc := newListingServiceForTest(repo, nil)

	_, err := svc.Create(context.Background(), Actor{ID: primitive.NewObjectID(), Role: entity.RoleGuest}, listingParamsForTest())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListingService_Update_OwnerOnly(t *testing.T) {
	hostID := primitive.NewObjectID()
	listing, err := entity.NewListing(hostID, listingParamsForTest())
	require.NoError(t, err)

	repo := new(MockListingRepository)
	cache := new(MockListingCache)
	repo.On("FindByID", mock.Anything, listing.ID).Return(listing, nil)
	repo.On("Update", mock.Anything, listing).Return(nil)
	cache.On("Delete", mock.Anything, listing.ID).Return(nil)

	svc := newListingServiceForTest(repo, cache)

	params := listingParamsForTest()
	params.PricePerNight = 110

	_, err = svc.Update(context.Background(), Actor{ID: primitive.NewObjectID(), Role: entity.RoleHost}, listing.ID, params)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := svc.Update(context.Background(), Actor{ID: hostID, Role: entity.RoleHost}, listing.ID, params)
	require.NoError(t, err)
	assert.Equal(t, 110.0, updated.PricePerNight)
	// A successful update drops the cached copy.
	cache.AssertCalled(t, "Delete", mock.Anything, listing.ID)
}

func TestListingService_Delete_BlockedByActiveBookings(t *testing.T) {
	hostID := primitive.NewObjectID()
	listing, err := entity.NewListing(hostID, listingParamsForTest())
	require.NoError(t, err)

	repo := new(MockListingRepository)
	repo.On("FindByID", mock.Anything, listing.ID).Return(listing, nil)
	repo.On("DeleteWithDependents", mock.Anything, listing.ID).Return(domain.ErrActiveBookingsExist)

	svc := newListingServiceForTest(repo, nil)

	err = svc.Delete(context.Background(), Actor{ID: hostID, Role: entity.RoleHost}, listing.ID)
	assert.ErrorIs(t, err, domain.ErrActiveBookingsExist)
}

func TestListingService_GetByID_CacheFallthrough(t *testing.T) {
	hostID := primitive.NewObjectID()
	listing, err := entity.NewListing(hostID, listingParamsForTest())
	require.NoError(t, err)

	repo := new(MockListingRepository)
	cache := new(MockListingCache)
	cache.On("Get", mock.Anything, listing.ID).Return(nil, domain.ErrNotFound).Once()
	repo.On("FindByID", mock.Anything, listing.ID).Return(listing, nil).Once()
	cache.On("Set", mock.Anything, listing, mock.Anything).Return(nil).Once()

	svc := newListingServiceForTest(repo, cache)

	got, err := svc.GetByID(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)

	// Second read is served from the cache, the repository stays untouched.
	cache.On("Get", mock.Anything, listing.ID).Return(listing, nil).Once()
	_, err = svc.GetByID(context.Background(), listing.ID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestListingService_GetByID_NotFound(t *testing.T) {
	repo := new(MockListingRepository)
	id := primitive.NewObjectID()
	repo.On("FindByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	svc := newListingServiceForTest(repo, nil)

	_, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
