package entity

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentCompleted, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

// Payment tracks a checkout initiated with the payment gateway for a booking.
// One payment per booking; the store enforces a unique booking_id index.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	BookingID     primitive.ObjectID `bson:"booking_id"`
	TxRef         string             `bson:"tx_ref"`
	CheckoutURL   string             `bson:"checkout_url,omitempty"`
	Amount        float64            `bson:"amount"`
	Currency      string             `bson:"currency"`
	Status        PaymentStatus      `bson:"status"`
	Email         string             `bson:"email"`
	FirstName     string             `bson:"first_name"`
	LastName      string             `bson:"last_name"`
	PhoneNumber   string             `bson:"phone_number,omitempty"`
	FailureReason string             `bson:"failure_reason,omitempty"`
	CompletedAt   *time.Time         `bson:"completed_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func NewPayment(bookingID primitive.ObjectID, txRef string, amount float64, currency, email, firstName, lastName, phoneNumber string) (*Payment, error) {
	if bookingID.IsZero() {
		return nil, fmt.Errorf("%w: booking_id is required", domain.ErrInvalidInput)
	}
	if txRef == "" {
		return nil, fmt.Errorf("%w: tx_ref is required", domain.ErrInvalidInput)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	return &Payment{
		ID:          primitive.NewObjectID(),
		BookingID:   bookingID,
		TxRef:       txRef,
		Amount:      amount,
		Currency:    currency,
		Status:      PaymentPending,
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: phoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkCompleted records a successful gateway verification.
func (p *Payment) MarkCompleted(at time.Time) {
	p.Status = PaymentCompleted
	p.CompletedAt = &at
	p.FailureReason = ""
	p.UpdatedAt = time.Now().UTC()
}

// MarkFailed records a failed gateway verification.
func (p *Payment) MarkFailed(reason string) {
	p.Status = PaymentFailed
	p.FailureReason = reason
	p.UpdatedAt = time.Now().UTC()
}
