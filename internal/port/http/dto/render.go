package dto

import (
	"time"

	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
)

type ListingResponse struct {
	ID            string   `json:"id"`
	HostID        string   `json:"host_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Address       string   `json:"address,omitempty"`
	City          string   `json:"city,omitempty"`
	Country       string   `json:"country,omitempty"`
	PropertyType  string   `json:"property_type"`
	PricePerNight float64  `json:"price_per_night"`
	MaxGuests     int      `json:"max_guests"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	Amenities     []string `json:"amenities"`
	IsAvailable   bool     `json:"is_available"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func RenderListing(l *entity.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID.Hex(),
		HostID:        l.HostID.Hex(),
		Title:         l.Title,
		Description:   l.Description,
		Address:       l.Address,
		City:          l.City,
		Country:       l.Country,
		PropertyType:  string(l.PropertyType),
		PricePerNight: l.PricePerNight,
		MaxGuests:     l.MaxGuests,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		Amenities:     l.Amenities,
		IsAvailable:   l.IsAvailable,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     l.UpdatedAt.Format(time.RFC3339),
	}
}

func RenderListings(listings []*entity.Listing) []ListingResponse {
	out := make([]ListingResponse, len(listings))
	for i, l := range listings {
		out[i] = RenderListing(l)
	}
	return out
}

type BookingResponse struct {
	ID              string  `json:"id"`
	ListingID       string  `json:"listing_id"`
	GuestID         string  `json:"guest_id"`
	CheckIn         string  `json:"check_in"`
	CheckOut        string  `json:"check_out"`
	NumberOfGuests  int     `json:"number_of_guests"`
	NumberOfNights  int     `json:"number_of_nights"`
	TotalPrice      float64 `json:"total_price"`
	Status          string  `json:"status"`
	SpecialRequests string  `json:"special_requests,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func RenderBooking(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID.Hex(),
		ListingID:       b.ListingID.Hex(),
		GuestID:         b.GuestID.Hex(),
		CheckIn:         b.CheckIn.Format(DateLayout),
		CheckOut:        b.CheckOut.Format(DateLayout),
		NumberOfGuests:  b.NumberOfGuests,
		NumberOfNights:  b.Nights(),
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
}

func RenderBookings(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = RenderBooking(b)
	}
	return out
}

type ReviewResponse struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	UserID    string `json:"user_id"`
	BookingID string `json:"booking_id,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func RenderReview(r *entity.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID.Hex(),
		ListingID: r.ListingID.Hex(),
		UserID:    r.UserID.Hex(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
	if r.BookingID != nil {
		resp.BookingID = r.BookingID.Hex()
	}
	return resp
}

func RenderReviews(reviews []*entity.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = RenderReview(r)
	}
	return out
}

// UserResponse intentionally has no password hash field.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func RenderUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func RenderUsers(users []*entity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = RenderUser(u)
	}
	return out
}

type PaymentResponse struct {
	ID            string  `json:"id"`
	BookingID     string  `json:"booking_id"`
	TxRef         string  `json:"tx_ref"`
	CheckoutURL   string  `json:"checkout_url,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	FailureReason string  `json:"failure_reason,omitempty"`
	CompletedAt   string  `json:"completed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func RenderPayment(p *entity.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID.Hex(),
		BookingID:     p.BookingID.Hex(),
		TxRef:         p.TxRef,
		CheckoutURL:   p.CheckoutURL,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        string(p.Status),
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.CompletedAt != nil {
		resp.CompletedAt = p.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
