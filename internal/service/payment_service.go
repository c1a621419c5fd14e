package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/adapter/chapa"
	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/platform/metrics"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

type InitiatePaymentInput struct {
	BookingID   primitive.ObjectID
	Amount      float64
	PhoneNumber string
}

type PaymentService interface {
	// Initiate creates a checkout session for the booking. The amount must match
	// the booking's total price, the booking must be pending or confirmed, and at
	// most one payment exists per booking.
	Initiate(ctx context.Context, actor Actor, input InitiatePaymentInput) (*entity.Payment, error)
	// HandleCallback verifies the transaction with the gateway and settles the
	// payment as completed or failed.
	HandleCallback(ctx context.Context, txRef string) (*entity.Payment, error)
	GetByID(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Payment, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	gateway     chapa.Gateway
	currency    string
	metrics     *metrics.MetricsManager
	retrier     storeRetrier
	log         logger.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	gateway chapa.Gateway,
	chapaCfg config.ChapaConfig,
	mm *metrics.MetricsManager,
	storeCfg config.StoreConfig,
	log logger.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		currency:    chapaCfg.Currency,
		metrics:     mm,
		retrier:     newStoreRetrier(storeCfg, log),
		log:         log,
	}
}

func (s *paymentService) Initiate(ctx context.Context, actor Actor, input InitiatePaymentInput) (*entity.Payment, error) {
	var booking *entity.Booking
	err := s.retrier.read(ctx, "bookings.find_by_id", func(ctx context.Context) error {
		var readErr error
		booking, readErr = s.bookingRepo.FindByID(ctx, input.BookingID)
		return readErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, input.BookingID.Hex())
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.GuestID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only the booking guest can pay for it", domain.ErrForbidden)
	}
	if booking.Status != entity.BookingPending && booking.Status != entity.BookingConfirmed {
		return nil, fmt.Errorf("%w: booking is %s, payment requires pending or confirmed", domain.ErrInvalidTransition, booking.Status)
	}
	if math.Abs(input.Amount-booking.TotalPrice) > 0.005 {
		return nil, fmt.Errorf("%w: amount %.2f does not match booking total %.2f", domain.ErrInvalidInput, input.Amount, booking.TotalPrice)
	}

	guest, err := s.userRepo.FindByID(ctx, booking.GuestID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve booking guest: %w", err)
	}

	payment, err := entity.NewPayment(booking.ID, s.gateway.NewTxRef(), booking.TotalPrice, s.currency,
		guest.Email, guest.FirstName, guest.LastName, input.PhoneNumber)
	if err != nil {
		return nil, err
	}

	// Reserve the booking slot first so a second initiate sees ErrPaymentExists
	// instead of racing two checkout sessions.
	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.paymentRepo.Create(ctx, payment)
	}); err != nil {
		if errors.Is(err, domain.ErrPaymentExists) {
			s.log.Warnf("payment already initiated for booking %s", booking.ID.Hex())
			return nil, err
		}
		s.log.Errorf("failed to create payment for booking %s: %v", booking.ID.Hex(), err)
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	result, err := s.gateway.Initialize(ctx, chapa.InitializeRequest{
		TxRef:     payment.TxRef,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Email:     payment.Email,
		FirstName: payment.FirstName,
		LastName:  payment.LastName,
	})
	if err != nil {
		payment.MarkFailed(err.Error())
		if updErr := s.paymentRepo.Update(ctx, payment); updErr != nil {
			s.log.Errorf("failed to record gateway failure for payment %s: %v", payment.ID.Hex(), updErr)
		}
		if s.metrics != nil {
			s.metrics.PaymentsTotal.WithLabelValues(string(entity.PaymentFailed)).Inc()
		}
		s.log.Errorf("gateway initialize failed for tx_ref %s: %v", payment.TxRef, err)
		return nil, fmt.Errorf("payment gateway rejected the checkout: %w", err)
	}

	payment.CheckoutURL = result.CheckoutURL
	payment.Status = entity.PaymentProcessing
	payment.UpdatedAt = time.Now().UTC()
	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.paymentRepo.Update(ctx, payment)
	}); err != nil {
		s.log.Errorf("failed to store checkout URL for payment %s: %v", payment.ID.Hex(), err)
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	s.log.Infof("payment %s initiated for booking %s, tx_ref %s", payment.ID.Hex(), booking.ID.Hex(), payment.TxRef)
	return payment, nil
}

func (s *paymentService) HandleCallback(ctx context.Context, txRef string) (*entity.Payment, error) {
	var payment *entity.Payment
	err := s.retrier.read(ctx, "payments.find_by_tx_ref", func(ctx context.Context) error {
		var readErr error
		payment, readErr = s.paymentRepo.FindByTxRef(ctx, txRef)
		return readErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: payment with tx_ref %s", domain.ErrNotFound, txRef)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	// Settled payments are final; the gateway may redeliver callbacks.
	if payment.Status == entity.PaymentCompleted || payment.Status == entity.PaymentFailed {
		return payment, nil
	}

	result, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		s.log.Errorf("gateway verify failed for tx_ref %s: %v", txRef, err)
		return nil, fmt.Errorf("payment verification failed: %w", err)
	}

	if strings.EqualFold(result.Status, "success") {
		payment.MarkCompleted(time.Now().UTC())
	} else {
		payment.MarkFailed(fmt.Sprintf("gateway reported status %q", result.Status))
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.paymentRepo.Update(ctx, payment)
	}); err != nil {
		s.log.Errorf("failed to settle payment %s: %v", payment.ID.Hex(), err)
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PaymentsTotal.WithLabelValues(string(payment.Status)).Inc()
	}
	s.log.Infof("payment %s settled as %s (tx_ref %s)", payment.ID.Hex(), payment.Status, txRef)
	return payment, nil
}

func (s *paymentService) GetByID(ctx context.Context, actor Actor, id primitive.ObjectID) (*entity.Payment, error) {
	var payment *entity.Payment
	err := s.retrier.read(ctx, "payments.find_by_id", func(ctx context.Context) error {
		var readErr error
		payment, readErr = s.paymentRepo.FindByID(ctx, id)
		return readErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: payment %s", domain.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if !actor.IsAdmin() {
		booking, err := s.bookingRepo.FindByID(ctx, payment.BookingID)
		if err != nil || booking.GuestID != actor.ID {
			return nil, fmt.Errorf("%w: payment %s", domain.ErrForbidden, id.Hex())
		}
	}
	return payment, nil
}
