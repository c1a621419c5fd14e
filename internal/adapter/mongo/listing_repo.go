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

const (
	listingCollectionName = "listings"
	bookingCollectionName = "bookings"
	reviewCollectionName  = "reviews"
)

type listingRepository struct {
	client   *mongo.Client
	db       *mongo.Database
	listings *mongo.Collection
	bookings *mongo.Collection
	reviews  *mongo.Collection
	log      logger.Logger
}

func NewListingRepository(client *mongo.Client, database string, log logger.Logger) repository.ListingRepository {
	db := client.Database(database)
	listings := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "country", Value: 1}}},
		{Keys: bson.D{{Key: "property_type", Value: 1}}},
		{Keys: bson.D{{Key: "price_per_night", Value: 1}}},
		{Keys: bson.D{{Key: "host_id", Value: 1}}},
		{Keys: bson.D{{Key: "is_available", Value: 1}}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()
	if _, err := listings.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to ensure indexes for %s: %v", listingCollectionName, err)
	}

	return &listingRepository{
		client:   client,
		db:       db,
		listings: listings,
		bookings: db.Collection(bookingCollectionName),
		reviews:  db.Collection(reviewCollectionName),
		log:      log,
	}
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	_, err := r.listings.InsertOne(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", mapStoreErr(err))
	}
	return nil
}

func (r *listingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	result, err := r.listings.ReplaceOne(ctx, bson.M{"_id": listing.ID}, listing)
	if err != nil {
		return fmt.Errorf("failed to update listing %s: %w", listing.ID.Hex(), mapStoreErr(err))
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteWithDependents enforces the block-on-active-bookings policy: the
// transaction aborts when any non-cancelled booking references the listing,
// otherwise reviews, cancelled bookings and the listing go together.
func (r *listingRepository) DeleteWithDependents(ctx context.Context, id primitive.ObjectID) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", mapStoreErr(err))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		active, err := r.bookings.CountDocuments(sc, bson.M{
			"listing_id": id,
			"status":     bson.M{"$ne": entity.BookingCancelled},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count active bookings: %w", err)
		}
		if active > 0 {
			return nil, domain.ErrActiveBookingsExist
		}

		if _, err := r.reviews.DeleteMany(sc, bson.M{"listing_id": id}); err != nil {
			return nil, fmt.Errorf("failed to delete reviews: %w", err)
		}
		if _, err := r.bookings.DeleteMany(sc, bson.M{"listing_id": id}); err != nil {
			return nil, fmt.Errorf("failed to delete bookings: %w", err)
		}
		result, err := r.listings.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("failed to delete listing: %w", err)
		}
		if result.DeletedCount == 0 {
			return nil, domain.ErrNotFound
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrActiveBookingsExist) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return mapStoreErr(err)
	}
	return nil
}

func (r *listingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Listing, error) {
	var listing entity.Listing
	err := r.listings.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing %s: %w", id.Hex(), mapStoreErr(err))
	}
	return &listing, nil
}

func (r *listingRepository) Find(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	query := bson.M{}
	if filter.City != "" {
		query["city"] = filter.City
	}
	if filter.Country != "" {
		query["country"] = filter.Country
	}
	if filter.PropertyType != "" {
		query["property_type"] = filter.PropertyType
	}
	if filter.MinPrice > 0 || filter.MaxPrice > 0 {
		price := bson.M{}
		if filter.MinPrice > 0 {
			price["$gte"] = filter.MinPrice
		}
		if filter.MaxPrice > 0 {
			price["$lte"] = filter.MaxPrice
		}
		query["price_per_night"] = price
	}
	if filter.Available != nil {
		query["is_available"] = *filter.Available
	}
	if !filter.HostID.IsZero() {
		query["host_id"] = filter.HostID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
		if filter.Page > 1 {
			opts.SetSkip((filter.Page - 1) * filter.Limit)
		}
	}

	cursor, err := r.listings.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", mapStoreErr(err))
	}
	defer cursor.Close(ctx)

	var listings []*entity.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", mapStoreErr(err))
	}
	return listings, nil
}

func (r *listingRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.listings.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear listings: %w", mapStoreErr(err))
	}
	return nil
}
