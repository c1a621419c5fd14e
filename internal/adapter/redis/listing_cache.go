package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

const listingCacheKeyPrefix = "listing_detail:"

type listingCache struct {
	client *redis.Client
}

func NewListingCache(client *redis.Client) repository.ListingCache {
	return &listingCache{client: client}
}

func (c *listingCache) key(id primitive.ObjectID) string {
	return listingCacheKeyPrefix + id.Hex()
}

func (c *listingCache) Get(ctx context.Context, id primitive.ObjectID) (*entity.Listing, error) {
	val, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing %s from redis: %w", id.Hex(), err)
	}

	var listing entity.Listing
	if err := json.Unmarshal(val, &listing); err != nil {
		// Stale or corrupt entry; drop it rather than serve garbage.
		_ = c.Delete(ctx, id)
		return nil, fmt.Errorf("failed to unmarshal cached listing %s: %w", id.Hex(), err)
	}
	return &listing, nil
}

func (c *listingCache) Set(ctx context.Context, listing *entity.Listing, ttl time.Duration) error {
	if listing == nil || listing.ID.IsZero() {
		return errors.New("cannot cache nil listing or listing without ID")
	}

	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing %s: %w", listing.ID.Hex(), err)
	}

	if err := c.client.Set(ctx, c.key(listing.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set listing %s in redis: %w", listing.ID.Hex(), err)
	}
	return nil
}

func (c *listingCache) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete listing %s from redis: %w", id.Hex(), err)
	}
	return nil
}
