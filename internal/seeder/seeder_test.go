package seeder

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

func testSeeder() *Seeder {
	return &Seeder{
		rng: rand.New(rand.NewSource(42)),
		log: logger.NewNop(),
	}
}

func TestCorpus_CoversEveryPropertyType(t *testing.T) {
	for _, pt := range entity.PropertyTypes {
		templates, ok := titleTemplates[pt]
		require.True(t, ok, "no title templates for %s", pt)
		require.NotEmpty(t, templates)
		for _, tmpl := range templates {
			assert.Contains(t, tmpl, "%s", "template %q has no city placeholder", tmpl)
		}

		pr, ok := priceRanges[pt]
		require.True(t, ok, "no price range for %s", pt)
		assert.Greater(t, pr.Min, 0)
		assert.Greater(t, pr.Max, pr.Min)
	}
}

func TestCorpus_RatingTables(t *testing.T) {
	total := 0
	for _, rw := range ratingWeights {
		total += rw.Weight
		comments, ok := ratingComments[rw.Rating]
		require.True(t, ok, "no comments for rating %d", rw.Rating)
		assert.NotEmpty(t, comments)
	}
	assert.Equal(t, 100, total)
}

func TestCorpus_SeedUsers(t *testing.T) {
	for _, h := range seedHosts {
		assert.Equal(t, entity.RoleHost, h.Role, h.Username)
		assert.True(t, strings.Contains(h.Email, "@"), h.Email)
	}
	for _, g := range seedGuests {
		assert.Equal(t, entity.RoleGuest, g.Role, g.Username)
	}
}

func TestPickRating_StaysInBounds(t *testing.T) {
	s := testSeeder()
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		r := s.pickRating()
		require.GreaterOrEqual(t, r, 1)
		require.LessOrEqual(t, r, 5)
		seen[r] = true
	}
	// With 1000 draws every weighted bucket should show up.
	assert.Len(t, seen, 5)
}

func TestPickAmenities_NoDuplicates(t *testing.T) {
	s := testSeeder()
	for i := 0; i < 50; i++ {
		n := 3 + s.rng.Intn(6)
		picked := s.pickAmenities(n)
		assert.Len(t, picked, n)

		unique := make(map[string]bool, len(picked))
		for _, a := range picked {
			assert.False(t, unique[a], "amenity %q picked twice", a)
			unique[a] = true
		}
	}

	// Asking for more than the pool holds caps at the pool size.
	all := s.pickAmenities(len(amenitiesPool) + 10)
	assert.Len(t, all, len(amenitiesPool))
}

type stubUserRepo struct {
	mock.Mock
}

func (s *stubUserRepo) Create(ctx context.Context, user *entity.User) error {
	return s.Called(ctx, user).Error(0)
}

func (s *stubUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	args := s.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (s *stubUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := s.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (s *stubUserRepo) Find(ctx context.Context, page, limit int64) ([]*entity.User, error) {
	args := s.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func TestRun_WithoutClearPreservesData(t *testing.T) {
	userRepo := new(stubUserRepo)
	for _, h := range seedHosts {
		user, err := entity.NewUser(h.Username, h.Email, h.FirstName, h.LastName, h.Role, "hash")
		require.NoError(t, err)
		userRepo.On("FindByUsername", mock.Anything, h.Username).Return(user, nil)
	}

	s := testSeeder()
	s.userRepo = userRepo

	// Clear is off and no collections are wired, so a run that only re-resolves
	// seed users must not reach any DeleteAll.
	err := s.Run(context.Background(), Options{Listings: 0})
	require.NoError(t, err)
	userRepo.AssertNumberOfCalls(t, "FindByUsername", len(seedHosts))
}

// clearRecorder tracks which collections were wiped and in what order.
type clearRecorder struct {
	calls []string
}

type stubReviewRepo struct{ rec *clearRecorder }

func (s *stubReviewRepo) Create(context.Context, *entity.Review) error { return nil }
func (s *stubReviewRepo) Update(context.Context, *entity.Review) error { return nil }
func (s *stubReviewRepo) Delete(context.Context, primitive.ObjectID) error {
	return nil
}
func (s *stubReviewRepo) FindByID(context.Context, primitive.ObjectID) (*entity.Review, error) {
	return nil, domain.ErrNotFound
}
func (s *stubReviewRepo) Find(context.Context, repository.ReviewFilter) ([]*entity.Review, error) {
	return nil, nil
}
func (s *stubReviewRepo) DeleteAll(context.Context) error {
	s.rec.calls = append(s.rec.calls, "reviews")
	return nil
}

type stubBookingRepo struct{ rec *clearRecorder }

func (s *stubBookingRepo) CreateIfNoOverlap(context.Context, *entity.Booking) error { return nil }
func (s *stubBookingRepo) Update(context.Context, *entity.Booking) error            { return nil }
func (s *stubBookingRepo) RescheduleIfNoOverlap(context.Context, *entity.Booking) error {
	return nil
}
func (s *stubBookingRepo) Delete(context.Context, primitive.ObjectID) error { return nil }
func (s *stubBookingRepo) FindByID(context.Context, primitive.ObjectID) (*entity.Booking, error) {
	return nil, domain.ErrNotFound
}
func (s *stubBookingRepo) Find(context.Context, repository.BookingFilter) ([]*entity.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) DeleteAll(context.Context) error {
	s.rec.calls = append(s.rec.calls, "bookings")
	return nil
}

type stubListingRepo struct{ rec *clearRecorder }

func (s *stubListingRepo) Create(context.Context, *entity.Listing) error { return nil }
func (s *stubListingRepo) Update(context.Context, *entity.Listing) error { return nil }
func (s *stubListingRepo) DeleteWithDependents(context.Context, primitive.ObjectID) error {
	return nil
}
func (s *stubListingRepo) FindByID(context.Context, primitive.ObjectID) (*entity.Listing, error) {
	return nil, domain.ErrNotFound
}
func (s *stubListingRepo) Find(context.Context, repository.ListingFilter) ([]*entity.Listing, error) {
	return nil, nil
}
func (s *stubListingRepo) DeleteAll(context.Context) error {
	s.rec.calls = append(s.rec.calls, "listings")
	return nil
}

// A run with Clear set wipes everything before seeding, children before parents
// so no review or booking ever points at a listing that is already gone.
func TestRun_ClearWipesChildrenFirst(t *testing.T) {
	userRepo := new(stubUserRepo)
	for _, h := range seedHosts {
		user, err := entity.NewUser(h.Username, h.Email, h.FirstName, h.LastName, h.Role, "hash")
		require.NoError(t, err)
		userRepo.On("FindByUsername", mock.Anything, h.Username).Return(user, nil)
	}

	rec := new(clearRecorder)
	s := testSeeder()
	s.userRepo = userRepo
	s.reviewRepo = &stubReviewRepo{rec: rec}
	s.bookingRepo = &stubBookingRepo{rec: rec}
	s.listingRepo = &stubListingRepo{rec: rec}

	err := s.Run(context.Background(), Options{Listings: 0, Clear: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"reviews", "bookings", "listings"}, rec.calls)
}

func TestRoomsFor_ProducesValidListings(t *testing.T) {
	s := testSeeder()
	for _, pt := range entity.PropertyTypes {
		for i := 0; i < 20; i++ {
			bedrooms, bathrooms, maxGuests := s.roomsFor(pt)
			assert.GreaterOrEqual(t, bedrooms, 1, string(pt))
			assert.GreaterOrEqual(t, bathrooms, 1, string(pt))
			assert.GreaterOrEqual(t, maxGuests, 2, string(pt))
		}
	}
}
