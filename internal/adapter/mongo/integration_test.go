package mongo_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoRepo "github.com/askhat-dev/travel-marketplace/internal/adapter/mongo"
	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

const testDatabase = "travel_marketplace_test"

var (
	testClient      *mongodriver.Client
	testUserRepo    repository.UserRepository
	testReviewRepo  repository.ReviewRepository
	testListingRepo repository.ListingRepository
)

// TestMain starts a throwaway MongoDB container. Repositories that need
// multi-document transactions (bookings, listing cascade deletes) require a
// replica set and are exercised at the service layer with in-memory fakes.
func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "5.0",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start MongoDB resource: %s", err)
	}

	uri := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))
	if err := pool.Retry(func() error {
		var retryErr error
		testClient, retryErr = mongodriver.Connect(context.Background(), options.Client().ApplyURI(uri))
		if retryErr != nil {
			return retryErr
		}
		return testClient.Ping(context.Background(), nil)
	}); err != nil {
		log.Fatalf("could not connect to MongoDB: %s", err)
	}

	nop := logger.NewNop()
	testUserRepo = mongoRepo.NewUserRepository(testClient, testDatabase, nop)
	testReviewRepo = mongoRepo.NewReviewRepository(testClient, testDatabase, nop)
	testListingRepo = mongoRepo.NewListingRepository(testClient, testDatabase, nop)

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Fatalf("could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func clearCollection(t *testing.T, name string) {
	t.Helper()
	_, err := testClient.Database(testDatabase).Collection(name).DeleteMany(context.Background(), bson.M{})
	require.NoError(t, err)
}

func mustUser(t *testing.T, username string) *entity.User {
	t.Helper()
	user, err := entity.NewUser(username, username+"@example.com", "Test", "User", entity.RoleGuest, "hash")
	require.NoError(t, err)
	return user
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	clearCollection(t, "users")
	ctx := context.Background()

	first := mustUser(t, "alice")
	require.NoError(t, testUserRepo.Create(ctx, first))

	dup := mustUser(t, "alice")
	err := testUserRepo.Create(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	found, err := testUserRepo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "alice@example.com", found.Email)
}

func TestUserRepository_FindByUsername_NotFound(t *testing.T) {
	clearCollection(t, "users")

	_, err := testUserRepo.FindByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewRepository_DuplicatePairRejected(t *testing.T) {
	clearCollection(t, "reviews")
	ctx := context.Background()

	listingID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	first, err := entity.NewReview(listingID, userID, nil, 5, "Wonderful place")
	require.NoError(t, err)
	require.NoError(t, testReviewRepo.Create(ctx, first))

	second, err := entity.NewReview(listingID, userID, nil, 1, "Changed my mind")
	require.NoError(t, err)
	assert.ErrorIs(t, testReviewRepo.Create(ctx, second), domain.ErrAlreadyReviewed)

	// A different user can still review the same listing.
	other, err := entity.NewReview(listingID, primitive.NewObjectID(), nil, 4, "Nice")
	require.NoError(t, err)
	assert.NoError(t, testReviewRepo.Create(ctx, other))
}

func TestReviewRepository_UpdateAndDelete(t *testing.T) {
	clearCollection(t, "reviews")
	ctx := context.Background()

	review, err := entity.NewReview(primitive.NewObjectID(), primitive.NewObjectID(), nil, 3, "Okay")
	require.NoError(t, err)
	require.NoError(t, testReviewRepo.Create(ctx, review))

	require.NoError(t, review.Edit(4, "Better on second thought"))
	require.NoError(t, testReviewRepo.Update(ctx, review))

	stored, err := testReviewRepo.FindByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rating)
	assert.Equal(t, "Better on second thought", stored.Comment)

	require.NoError(t, testReviewRepo.Delete(ctx, review.ID))
	_, err = testReviewRepo.FindByID(ctx, review.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, testReviewRepo.Delete(ctx, review.ID), domain.ErrNotFound)
}

func TestReviewRepository_FilteredFind(t *testing.T) {
	clearCollection(t, "reviews")
	ctx := context.Background()

	listingID := primitive.NewObjectID()
	for _, rating := range []int{2, 4, 5} {
		review, err := entity.NewReview(listingID, primitive.NewObjectID(), nil, rating, "")
		require.NoError(t, err)
		require.NoError(t, testReviewRepo.Create(ctx, review))
	}
	noise, err := entity.NewReview(primitive.NewObjectID(), primitive.NewObjectID(), nil, 5, "")
	require.NoError(t, err)
	require.NoError(t, testReviewRepo.Create(ctx, noise))

	reviews, err := testReviewRepo.Find(ctx, repository.ReviewFilter{ListingID: listingID, MinRating: 4})
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	for _, r := range reviews {
		assert.Equal(t, listingID, r.ListingID)
		assert.GreaterOrEqual(t, r.Rating, 4)
	}
}

func TestListingRepository_CRUDAndFilters(t *testing.T) {
	clearCollection(t, "listings")
	ctx := context.Background()
	hostID := primitive.NewObjectID()

	params := entity.ListingParams{
		Title:         "Old Town Apartment",
		City:          "Prague",
		Country:       "Czech Republic",
		PropertyType:  entity.PropertyApartment,
		PricePerNight: 95,
		MaxGuests:     3,
		IsAvailable:   true,
	}
	listing, err := entity.NewListing(hostID, params)
	require.NoError(t, err)
	require.NoError(t, testListingRepo.Create(ctx, listing))

	villaParams := params
	villaParams.Title = "Hillside Villa"
	villaParams.PropertyType = entity.PropertyVilla
	villaParams.PricePerNight = 320
	villa, err := entity.NewListing(hostID, villaParams)
	require.NoError(t, err)
	require.NoError(t, testListingRepo.Create(ctx, villa))

	stored, err := testListingRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old Town Apartment", stored.Title)

	params.PricePerNight = 105
	require.NoError(t, stored.Apply(params))
	require.NoError(t, testListingRepo.Update(ctx, stored))

	cheap, err := testListingRepo.Find(ctx, repository.ListingFilter{City: "Prague", MaxPrice: 150})
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, 105.0, cheap[0].PricePerNight)

	villas, err := testListingRepo.Find(ctx, repository.ListingFilter{PropertyType: entity.PropertyVilla})
	require.NoError(t, err)
	require.Len(t, villas, 1)
	assert.Equal(t, villa.ID, villas[0].ID)
}
