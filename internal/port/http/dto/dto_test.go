package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
)

func TestDecode_AggregatesFieldErrors(t *testing.T) {
	body := strings.NewReader(`{
		"title": "",
		"property_type": "treehouse",
		"price_per_night": -5,
		"max_guests": 0
	}`)

	var req ListingRequest
	err := Decode(body, &req)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "is required", fields["title"])
	assert.Contains(t, fields["property_type"], "must be one of")
	assert.Contains(t, fields["price_per_night"], "greater than")
	assert.Equal(t, "is required", fields["max_guests"])
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	body := strings.NewReader(`{"username": "alice", "email": "a@b.co", "password": "longenough", "is_admin": true}`)

	var req RegisterUserRequest
	err := Decode(body, &req)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "body", verr.Fields[0].Field)
}

func TestBookingRequest_ToInput(t *testing.T) {
	listingID := primitive.NewObjectID()
	req := BookingRequest{
		ListingID:      listingID.Hex(),
		CheckIn:        "2026-07-01",
		CheckOut:       "2026-07-05",
		NumberOfGuests: 2,
	}

	input, err := req.ToInput()
	require.NoError(t, err)
	assert.Equal(t, listingID, input.ListingID)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), input.CheckIn)
	assert.Equal(t, time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC), input.CheckOut)
}

func TestBookingRequest_ToInput_BadFields(t *testing.T) {
	req := BookingRequest{
		ListingID:      "not-an-id",
		CheckIn:        "01/07/2026",
		CheckOut:       "2026-07-05",
		NumberOfGuests: 2,
	}

	_, err := req.ToInput()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "listing_id", verr.Fields[0].Field)
	assert.Equal(t, "check_in", verr.Fields[1].Field)
}

func TestBookingUpdateRequest_MergesPartialFields(t *testing.T) {
	listing, err := entity.NewListing(primitive.NewObjectID(), entity.ListingParams{
		Title:         "Seaside Cottage",
		City:          "Batumi",
		Country:       "Georgia",
		PropertyType:  entity.PropertyCottage,
		PricePerNight: 75,
		MaxGuests:     4,
		IsAvailable:   true,
	})
	require.NoError(t, err)

	booking, err := entity.NewBooking(listing, primitive.NewObjectID(),
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC), 2, "late arrival")
	require.NoError(t, err)

	req := BookingUpdateRequest{CheckOut: "2026-08-06"}
	assert.False(t, req.IsTransition())

	input, err := req.ToInput(booking)
	require.NoError(t, err)
	// Untouched fields carry over from the stored booking.
	assert.Equal(t, booking.CheckIn, input.CheckIn)
	assert.Equal(t, time.Date(2026, 8, 6, 0, 0, 0, 0, time.UTC), input.CheckOut)
	assert.Equal(t, 2, input.Guests)
	assert.Equal(t, "late arrival", input.SpecialRequests)

	transition := BookingUpdateRequest{Status: "confirmed"}
	assert.True(t, transition.IsTransition())
}

// An explicit `"special_requests": ""` clears the stored value; leaving the
// key out of the payload keeps it.
func TestBookingUpdateRequest_ClearsSpecialRequests(t *testing.T) {
	listing, err := entity.NewListing(primitive.NewObjectID(), entity.ListingParams{
		Title:         "Seaside Cottage",
		PropertyType:  entity.PropertyCottage,
		PricePerNight: 75,
		MaxGuests:     4,
		IsAvailable:   true,
	})
	require.NoError(t, err)

	booking, err := entity.NewBooking(listing, primitive.NewObjectID(),
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC), 2, "late arrival")
	require.NoError(t, err)

	var clear BookingUpdateRequest
	require.NoError(t, Decode(strings.NewReader(`{"special_requests": ""}`), &clear))
	input, err := clear.ToInput(booking)
	require.NoError(t, err)
	assert.Equal(t, "", input.SpecialRequests)
	assert.Equal(t, booking.CheckIn, input.CheckIn)
	assert.Equal(t, 2, input.Guests)

	var keep BookingUpdateRequest
	require.NoError(t, Decode(strings.NewReader(`{"number_of_guests": 3}`), &keep))
	input, err = keep.ToInput(booking)
	require.NoError(t, err)
	assert.Equal(t, 3, input.Guests)
	assert.Equal(t, "late arrival", input.SpecialRequests)

	var zeroGuests BookingUpdateRequest
	err = Decode(strings.NewReader(`{"number_of_guests": 0}`), &zeroGuests)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "number_of_guests", verr.Fields[0].Field)
}

func TestReviewRequest_OptionalBookingID(t *testing.T) {
	listingID := primitive.NewObjectID()

	req := ReviewRequest{ListingID: listingID.Hex(), Rating: 4}
	input, err := req.ToInput()
	require.NoError(t, err)
	assert.Nil(t, input.BookingID)

	bookingID := primitive.NewObjectID()
	req.BookingID = bookingID.Hex()
	input, err = req.ToInput()
	require.NoError(t, err)
	require.NotNil(t, input.BookingID)
	assert.Equal(t, bookingID, *input.BookingID)
}

func TestRenderUser_OmitsPasswordHash(t *testing.T) {
	user, err := entity.NewUser("alice", "alice@example.com", "Alice", "Johnson", entity.RoleHost, "$2a$10$secret")
	require.NoError(t, err)

	raw, err := json.Marshal(RenderUser(user))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"role":"host"`)
}

func TestRenderBooking_WireDates(t *testing.T) {
	listing, err := entity.NewListing(primitive.NewObjectID(), entity.ListingParams{
		Title:         "City Loft",
		City:          "Vienna",
		Country:       "Austria",
		PropertyType:  entity.PropertyApartment,
		PricePerNight: 120,
		MaxGuests:     2,
		IsAvailable:   true,
	})
	require.NoError(t, err)

	booking, err := entity.NewBooking(listing, primitive.NewObjectID(),
		time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC), 2, "")
	require.NoError(t, err)

	resp := RenderBooking(booking)
	assert.Equal(t, "2026-09-10", resp.CheckIn)
	assert.Equal(t, "2026-09-13", resp.CheckOut)
	assert.Equal(t, 3, resp.NumberOfNights)
	assert.Equal(t, 360.0, resp.TotalPrice)
}
