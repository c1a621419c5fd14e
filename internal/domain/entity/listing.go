package entity

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
)

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyHotel     PropertyType = "hotel"
	PropertyVilla     PropertyType = "villa"
	PropertyCottage   PropertyType = "cottage"
	PropertyHostel    PropertyType = "hostel"
	PropertyResort    PropertyType = "resort"
)

// PropertyTypes lists every valid property type, in display order.
var PropertyTypes = []PropertyType{
	PropertyApartment, PropertyHouse, PropertyHotel, PropertyVilla,
	PropertyCottage, PropertyHostel, PropertyResort,
}

func (p PropertyType) IsValid() bool {
	for _, t := range PropertyTypes {
		if p == t {
			return true
		}
	}
	return false
}

// Listing is a travel accommodation owned by exactly one host.
type Listing struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	HostID        primitive.ObjectID `bson:"host_id"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Address       string             `bson:"address"`
	City          string             `bson:"city"`
	Country       string             `bson:"country"`
	PropertyType  PropertyType       `bson:"property_type"`
	PricePerNight float64            `bson:"price_per_night"`
	MaxGuests     int                `bson:"max_guests"`
	Bedrooms      int                `bson:"bedrooms"`
	Bathrooms     int                `bson:"bathrooms"`
	Amenities     []string           `bson:"amenities"`
	IsAvailable   bool               `bson:"is_available"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

type ListingParams struct {
	Title         string
	Description   string
	Address       string
	City          string
	Country       string
	PropertyType  PropertyType
	PricePerNight float64
	MaxGuests     int
	Bedrooms      int
	Bathrooms     int
	Amenities     []string
	IsAvailable   bool
}

func NewListing(hostID primitive.ObjectID, p ListingParams) (*Listing, error) {
	if err := validateListingParams(p); err != nil {
		return nil, err
	}
	if hostID.IsZero() {
		return nil, fmt.Errorf("%w: host_id is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return &Listing{
		ID:            primitive.NewObjectID(),
		HostID:        hostID,
		Title:         p.Title,
		Description:   p.Description,
		Address:       p.Address,
		City:          p.City,
		Country:       p.Country,
		PropertyType:  p.PropertyType,
		PricePerNight: p.PricePerNight,
		MaxGuests:     p.MaxGuests,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		Amenities:     amenities,
		IsAvailable:   p.IsAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Apply replaces the mutable fields after re-validating them.
func (l *Listing) Apply(p ListingParams) error {
	if err := validateListingParams(p); err != nil {
		return err
	}
	l.Title = p.Title
	l.Description = p.Description
	l.Address = p.Address
	l.City = p.City
	l.Country = p.Country
	l.PropertyType = p.PropertyType
	l.PricePerNight = p.PricePerNight
	l.MaxGuests = p.MaxGuests
	l.Bedrooms = p.Bedrooms
	l.Bathrooms = p.Bathrooms
	if p.Amenities != nil {
		l.Amenities = p.Amenities
	}
	l.IsAvailable = p.IsAvailable
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func validateListingParams(p ListingParams) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !p.PropertyType.IsValid() {
		return fmt.Errorf("%w: property_type %q is not a known property type", domain.ErrInvalidInput, p.PropertyType)
	}
	if p.PricePerNight <= 0 {
		return fmt.Errorf("%w: price_per_night must be positive", domain.ErrInvalidInput)
	}
	if p.MaxGuests < 1 {
		return fmt.Errorf("%w: max_guests must be at least 1", domain.ErrInvalidInput)
	}
	if p.Bedrooms < 0 {
		return fmt.Errorf("%w: bedrooms cannot be negative", domain.ErrInvalidInput)
	}
	if p.Bathrooms < 0 {
		return fmt.Errorf("%w: bathrooms cannot be negative", domain.ErrInvalidInput)
	}
	return nil
}
