package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

type bookingRepository struct {
	client   *mongo.Client
	bookings *mongo.Collection
	log      logger.Logger
}

func NewBookingRepository(client *mongo.Client, database string, log logger.Logger) repository.BookingRepository {
	bookings := client.Database(database).Collection(bookingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "check_in", Value: 1}, {Key: "check_out", Value: 1}}},
		{Keys: bson.D{{Key: "guest_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()
	if _, err := bookings.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to ensure indexes for %s: %v", bookingCollectionName, err)
	}

	return &bookingRepository{
		client:   client,
		bookings: bookings,
		log:      log,
	}
}

// overlapFilter matches non-cancelled bookings on listingID sharing at least one
// night with [checkIn, checkOut).
func overlapFilter(listingID primitive.ObjectID, checkIn, checkOut time.Time, excludeID primitive.ObjectID) bson.M {
	filter := bson.M{
		"listing_id": listingID,
		"status":     bson.M{"$ne": entity.BookingCancelled},
		"check_in":   bson.M{"$lt": checkOut},
		"check_out":  bson.M{"$gt": checkIn},
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

// CreateIfNoOverlap runs the overlap check and the insert in one transaction so
// two concurrent creations for the same range cannot both pass the check.
// Requires the deployment to be a replica set.
func (r *bookingRepository) CreateIfNoOverlap(ctx context.Context, booking *entity.Booking) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", mapStoreErr(err))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		count, err := r.bookings.CountDocuments(sc, overlapFilter(booking.ListingID, booking.CheckIn, booking.CheckOut, primitive.NilObjectID))
		if err != nil {
			return nil, fmt.Errorf("failed to check overlap: %w", err)
		}
		if count > 0 {
			return nil, domain.ErrOverlapConflict
		}
		if _, err := r.bookings.InsertOne(sc, booking); err != nil {
			return nil, fmt.Errorf("failed to insert booking: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrOverlapConflict) {
			return domain.ErrOverlapConflict
		}
		return mapStoreErr(err)
	}
	return nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	filter := bson.M{
		"_id":     booking.ID,
		"version": booking.Version - 1,
	}
	result, err := r.bookings.ReplaceOne(ctx, filter, booking)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID.Hex(), mapStoreErr(err))
	}
	if result.MatchedCount == 0 {
		var existing entity.Booking
		errFind := r.bookings.FindOne(ctx, bson.M{"_id": booking.ID}).Decode(&existing)
		if errors.Is(errFind, mongo.ErrNoDocuments) {
			return domain.ErrNotFound
		}
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", id.Hex(), mapStoreErr(err))
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking %s: %w", id.Hex(), mapStoreErr(err))
	}
	return &booking, nil
}

func (r *bookingRepository) Find(ctx context.Context, filter repository.BookingFilter) ([]*entity.Booking, error) {
	query := bson.M{}
	if !filter.ListingID.IsZero() {
		query["listing_id"] = filter.ListingID
	}
	if !filter.GuestID.IsZero() {
		query["guest_id"] = filter.GuestID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
		if filter.Page > 1 {
			opts.SetSkip((filter.Page - 1) * filter.Limit)
		}
	}

	cursor, err := r.bookings.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", mapStoreErr(err))
	}
	defer cursor.Close(ctx)

	var bookings []*entity.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", mapStoreErr(err))
	}
	return bookings, nil
}

// RescheduleIfNoOverlap re-runs the overlap check against the new date range
// (excluding the booking itself) and replaces the document in the same
// transaction, so a concurrent CreateIfNoOverlap cannot commit against the old
// dates while the new ones land. Requires the deployment to be a replica set.
func (r *bookingRepository) RescheduleIfNoOverlap(ctx context.Context, booking *entity.Booking) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", mapStoreErr(err))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		count, err := r.bookings.CountDocuments(sc, overlapFilter(booking.ListingID, booking.CheckIn, booking.CheckOut, booking.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to check overlap: %w", err)
		}
		if count > 0 {
			return nil, domain.ErrOverlapConflict
		}

		filter := bson.M{
			"_id":     booking.ID,
			"version": booking.Version - 1,
		}
		result, err := r.bookings.ReplaceOne(sc, filter, booking)
		if err != nil {
			return nil, fmt.Errorf("failed to replace booking %s: %w", booking.ID.Hex(), err)
		}
		if result.MatchedCount == 0 {
			var existing entity.Booking
			errFind := r.bookings.FindOne(sc, bson.M{"_id": booking.ID}).Decode(&existing)
			if errors.Is(errFind, mongo.ErrNoDocuments) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrVersionConflict
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrOverlapConflict) || errors.Is(err, domain.ErrVersionConflict) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return mapStoreErr(err)
	}
	return nil
}

func (r *bookingRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.bookings.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear bookings: %w", mapStoreErr(err))
	}
	return nil
}
