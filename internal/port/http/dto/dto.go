package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

// DateLayout is the wire format for check-in/check-out dates.
const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report field names the way clients sent them.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every failing field of a request, so clients fix
// a bad payload in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Decode parses the JSON body into dst and runs struct validation, collecting
// all field failures into a single ValidationError.
func Decode(body io.Reader, dst interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "invalid JSON: " + err.Error()}}}
	}
	return Validate(dst)
}

// Validate runs struct validation on dst without decoding.
func Validate(dst interface{}) error {
	if err := validate.Struct(dst); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validation misuse: %w", err)
		}
		verr := &ValidationError{}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), messageFor(fe))
		}
		return verr
	}
	return nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "datetime":
		return "must be a date in format " + fe.Param()
	default:
		return "is invalid"
	}
}

func parseObjectID(field, raw string, verr *ValidationError) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		verr.add(field, "must be a valid object id")
	}
	return id
}

func parseDate(field, raw string, verr *ValidationError) time.Time {
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		verr.add(field, "must be a date in format "+DateLayout)
	}
	return t
}

type ListingRequest struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	PropertyType  string   `json:"property_type" validate:"required,oneof=apartment house hotel villa cottage hostel resort"`
	PricePerNight float64  `json:"price_per_night" validate:"required,gt=0"`
	MaxGuests     int      `json:"max_guests" validate:"required,min=1"`
	Bedrooms      int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms     int      `json:"bathrooms" validate:"gte=0"`
	Amenities     []string `json:"amenities"`
	IsAvailable   *bool    `json:"is_available"`
}

func (r *ListingRequest) ToParams() entity.ListingParams {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return entity.ListingParams{
		Title:         r.Title,
		Description:   r.Description,
		Address:       r.Address,
		City:          r.City,
		Country:       r.Country,
		PropertyType:  entity.PropertyType(r.PropertyType),
		PricePerNight: r.PricePerNight,
		MaxGuests:     r.MaxGuests,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		Amenities:     r.Amenities,
		IsAvailable:   available,
	}
}

type BookingRequest struct {
	ListingID       string `json:"listing_id" validate:"required"`
	CheckIn         string `json:"check_in" validate:"required"`
	CheckOut        string `json:"check_out" validate:"required"`
	NumberOfGuests  int    `json:"number_of_guests" validate:"required,min=1"`
	SpecialRequests string `json:"special_requests"`
}

func (r *BookingRequest) ToInput() (service.BookingInput, error) {
	verr := &ValidationError{}
	input := service.BookingInput{
		ListingID:       parseObjectID("listing_id", r.ListingID, verr),
		CheckIn:         parseDate("check_in", r.CheckIn, verr),
		CheckOut:        parseDate("check_out", r.CheckOut, verr),
		Guests:          r.NumberOfGuests,
		SpecialRequests: r.SpecialRequests,
	}
	return input, verr.orNil()
}

// BookingUpdateRequest reschedules a pending booking; Status, when present,
// requests a lifecycle transition instead. Pointer fields distinguish an
// omitted field from an explicit zero, so `"special_requests": ""` clears the
// stored value while leaving the key out keeps it.
type BookingUpdateRequest struct {
	CheckIn         string  `json:"check_in"`
	CheckOut        string  `json:"check_out"`
	NumberOfGuests  *int    `json:"number_of_guests" validate:"omitempty,min=1"`
	SpecialRequests *string `json:"special_requests"`
	Status          string  `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
}

func (r *BookingUpdateRequest) IsTransition() bool { return r.Status != "" }

func (r *BookingUpdateRequest) ToInput(current *entity.Booking) (service.BookingInput, error) {
	verr := &ValidationError{}
	input := service.BookingInput{
		ListingID:       current.ListingID,
		CheckIn:         current.CheckIn,
		CheckOut:        current.CheckOut,
		Guests:          current.NumberOfGuests,
		SpecialRequests: current.SpecialRequests,
	}
	if r.CheckIn != "" {
		input.CheckIn = parseDate("check_in", r.CheckIn, verr)
	}
	if r.CheckOut != "" {
		input.CheckOut = parseDate("check_out", r.CheckOut, verr)
	}
	if r.NumberOfGuests != nil {
		input.Guests = *r.NumberOfGuests
	}
	if r.SpecialRequests != nil {
		input.SpecialRequests = *r.SpecialRequests
	}
	return input, verr.orNil()
}

type ReviewRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
	BookingID string `json:"booking_id"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

func (r *ReviewRequest) ToInput() (service.ReviewInput, error) {
	verr := &ValidationError{}
	input := service.ReviewInput{
		ListingID: parseObjectID("listing_id", r.ListingID, verr),
		Rating:    r.Rating,
		Comment:   r.Comment,
	}
	if r.BookingID != "" {
		id := parseObjectID("booking_id", r.BookingID, verr)
		input.BookingID = &id
	}
	return input, verr.orNil()
}

type ReviewUpdateRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type RegisterUserRequest struct {
	Username  string `json:"username" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" validate:"omitempty,oneof=guest host admin"`
	Password  string `json:"password" validate:"required,min=8"`
}

func (r *RegisterUserRequest) ToInput() service.RegisterUserInput {
	return service.RegisterUserInput{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      entity.Role(r.Role),
		Password:  r.Password,
	}
}

type PaymentRequest struct {
	BookingID   string  `json:"booking_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PhoneNumber string  `json:"phone_number"`
}

func (r *PaymentRequest) ToInput() (service.InitiatePaymentInput, error) {
	verr := &ValidationError{}
	input := service.InitiatePaymentInput{
		BookingID:   parseObjectID("booking_id", r.BookingID, verr),
		Amount:      r.Amount,
		PhoneNumber: r.PhoneNumber,
	}
	return input, verr.orNil()
}

// PaymentCallbackRequest is the webhook payload from the payment gateway.
type PaymentCallbackRequest struct {
	TxRef  string `json:"tx_ref" validate:"required"`
	Status string `json:"status"`
}
