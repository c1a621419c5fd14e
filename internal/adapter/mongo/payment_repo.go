package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

const paymentCollectionName = "payments"

type paymentRepository struct {
	payments *mongo.Collection
	log      logger.Logger
}

func NewPaymentRepository(client *mongo.Client, database string, log logger.Logger) repository.PaymentRepository {
	payments := client.Database(database).Collection(paymentCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tx_ref", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()
	if _, err := payments.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to ensure indexes for %s: %v", paymentCollectionName, err)
	}

	return &paymentRepository{payments: payments, log: log}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	_, err := r.payments.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrPaymentExists
		}
		return fmt.Errorf("failed to insert payment: %w", mapStoreErr(err))
	}
	return nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	update := bson.M{
		"$set": bson.M{
			"status":         payment.Status,
			"checkout_url":   payment.CheckoutURL,
			"failure_reason": payment.FailureReason,
			"completed_at":   payment.CompletedAt,
			"updated_at":     payment.UpdatedAt,
		},
	}
	result, err := r.payments.UpdateOne(ctx, bson.M{"_id": payment.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", payment.ID.Hex(), mapStoreErr(err))
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.payments.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment %s: %w", id.Hex(), mapStoreErr(err))
	}
	return &payment, nil
}

func (r *paymentRepository) FindByTxRef(ctx context.Context, txRef string) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.payments.FindOne(ctx, bson.M{"tx_ref": txRef}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment by tx_ref %q: %w", txRef, mapStoreErr(err))
	}
	return &payment, nil
}
