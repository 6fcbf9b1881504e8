// Package session replaces the storefront's ambient client-side storage with
// an explicit store. The only server-held slot is the "buy now" staging area:
// the single product a user has mid-checkout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const buyNowTTL = 30 * time.Minute

// BuyNowSlot is the product staged for direct checkout, bypassing the cart.
type BuyNowSlot struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	StagedAt  time.Time `json:"staged_at"`
}

type Store interface {
	StageBuyNow(ctx context.Context, userID uuid.UUID, slot BuyNowSlot) error
	BuyNow(ctx context.Context, userID uuid.UUID) (*BuyNowSlot, error)
	ClearBuyNow(ctx context.Context, userID uuid.UUID) error
}

type redisStore struct{ client *redis.Client }

func NewStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func buyNowKey(userID uuid.UUID) string {
	return "session:buynow:" + userID.String()
}

func (s *redisStore) StageBuyNow(ctx context.Context, userID uuid.UUID, slot BuyNowSlot) error {
	data, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("marshal buy-now slot: %w", err)
	}
	if err := s.client.Set(ctx, buyNowKey(userID), data, buyNowTTL).Err(); err != nil {
		return fmt.Errorf("stage buy-now slot: %w", err)
	}
	return nil
}

func (s *redisStore) BuyNow(ctx context.Context, userID uuid.UUID) (*BuyNowSlot, error) {
	data, err := s.client.Get(ctx, buyNowKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get buy-now slot: %w", err)
	}
	var slot BuyNowSlot
	if err := json.Unmarshal([]byte(data), &slot); err != nil {
		return nil, fmt.Errorf("unmarshal buy-now slot: %w", err)
	}
	return &slot, nil
}

func (s *redisStore) ClearBuyNow(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, buyNowKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear buy-now slot: %w", err)
	}
	return nil
}
