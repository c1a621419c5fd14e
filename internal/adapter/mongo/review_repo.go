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

type reviewRepository struct {
	reviews *mongo.Collection
	log     logger.Logger
}

func NewReviewRepository(client *mongo.Client, database string, log logger.Logger) repository.ReviewRepository {
	reviews := client.Database(database).Collection(reviewCollectionName)

	indexes := []mongo.IndexModel{
		// One review per (listing, user) pair. The service relies on the
		// duplicate-key error as the uniqueness backstop under concurrency.
		{
			Keys:    bson.D{{Key: "listing_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "rating", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()
	if _, err := reviews.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to ensure indexes for %s: %v", reviewCollectionName, err)
	}

	return &reviewRepository{
		reviews: reviews,
		log:     log,
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	_, err := r.reviews.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to insert review: %w", mapStoreErr(err))
	}
	return nil
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"updated_at": review.UpdatedAt,
		},
	}
	result, err := r.reviews.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update review %s: %w", review.ID.Hex(), mapStoreErr(err))
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.reviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id.Hex(), mapStoreErr(err))
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error) {
	var review entity.Review
	err := r.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find review %s: %w", id.Hex(), mapStoreErr(err))
	}
	return &review, nil
}

func (r *reviewRepository) Find(ctx context.Context, filter repository.ReviewFilter) ([]*entity.Review, error) {
	query := bson.M{}
	if !filter.ListingID.IsZero() {
		query["listing_id"] = filter.ListingID
	}
	if !filter.UserID.IsZero() {
		query["user_id"] = filter.UserID
	}
	if filter.MinRating > 0 {
		query["rating"] = bson.M{"$gte": filter.MinRating}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
		if filter.Page > 1 {
			opts.SetSkip((filter.Page - 1) * filter.Limit)
		}
	}

	cursor, err := r.reviews.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", mapStoreErr(err))
	}
	defer cursor.Close(ctx)

	var reviews []*entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", mapStoreErr(err))
	}
	return reviews, nil
}

func (r *reviewRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.reviews.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear reviews: %w", mapStoreErr(err))
	}
	return nil
}
