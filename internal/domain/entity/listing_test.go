package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
)

func validParams() ListingParams {
	return ListingParams{
		Title:         "Grand Rome Hotel",
		City:          "Rome",
		Country:       "Italy",
		PropertyType:  PropertyHotel,
		PricePerNight: 180,
		MaxGuests:     2,
		Bedrooms:      1,
		Bathrooms:     1,
		IsAvailable:   true,
	}
}

func TestNewListing_Validation(t *testing.T) {
	hostID := primitive.NewObjectID()

	tests := []struct {
		name   string
		mutate func(*ListingParams)
	}{
		{"empty title", func(p *ListingParams) { p.Title = "  " }},
		{"unknown property type", func(p *ListingParams) { p.PropertyType = "castle" }},
		{"zero price", func(p *ListingParams) { p.PricePerNight = 0 }},
		{"negative price", func(p *ListingParams) { p.PricePerNight = -10 }},
		{"zero capacity", func(p *ListingParams) { p.MaxGuests = 0 }},
		{"negative bedrooms", func(p *ListingParams) { p.Bedrooms = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := NewListing(hostID, p)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	t.Run("missing host", func(t *testing.T) {
		_, err := NewListing(primitive.NilObjectID, validParams())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestNewListing_DefaultsAmenities(t *testing.T) {
	listing, err := NewListing(primitive.NewObjectID(), validParams())
	require.NoError(t, err)
	assert.NotNil(t, listing.Amenities)
	assert.Empty(t, listing.Amenities)
}

func TestListing_Apply(t *testing.T) {
	listing, err := NewListing(primitive.NewObjectID(), validParams())
	require.NoError(t, err)

	p := validParams()
	p.Title = "Boutique Rome Hotel"
	p.PricePerNight = 220
	require.NoError(t, listing.Apply(p))
	assert.Equal(t, "Boutique Rome Hotel", listing.Title)
	assert.Equal(t, 220.0, listing.PricePerNight)

	p.PricePerNight = -1
	assert.ErrorIs(t, listing.Apply(p), domain.ErrInvalidInput)
	// A rejected update leaves the listing untouched.
	assert.Equal(t, 220.0, listing.PricePerNight)
}

func TestPropertyType_IsValid(t *testing.T) {
	for _, pt := range PropertyTypes {
		assert.True(t, pt.IsValid(), string(pt))
	}
	assert.False(t, PropertyType("igloo").IsValid())
}

func TestNewReview_RatingBounds(t *testing.T) {
	listingID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	for _, rating := range []int{0, -1, 6} {
		_, err := NewReview(listingID, userID, nil, rating, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	for rating := 1; rating <= 5; rating++ {
		_, err := NewReview(listingID, userID, nil, rating, "fine")
		assert.NoError(t, err)
	}
}

func TestReview_Edit(t *testing.T) {
	review, err := NewReview(primitive.NewObjectID(), primitive.NewObjectID(), nil, 4, "good")
	require.NoError(t, err)

	require.NoError(t, review.Edit(5, "excellent"))
	assert.Equal(t, 5, review.Rating)

	assert.ErrorIs(t, review.Edit(0, ""), domain.ErrInvalidInput)
	assert.Equal(t, 5, review.Rating)
}

func TestNewUser_RoleDefaultsToGuest(t *testing.T) {
	user, err := NewUser("alice", "alice@example.com", "", "", "", "hash")
	require.NoError(t, err)
	assert.Equal(t, RoleGuest, user.Role)

	_, err = NewUser("bob", "bob@example.com", "", "", "superuser", "hash")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
