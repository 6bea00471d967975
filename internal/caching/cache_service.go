package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sandwichworks/internal/models"
)

type CacheService interface {
	// Sandwich caching
	GetSandwich(ctx context.Context, sandwichID uuid.UUID) (*models.Sandwich, error)
	SetSandwich(ctx context.Context, sandwich *models.Sandwich, ttl time.Duration) error
	DeleteSandwich(ctx context.Context, sandwichID uuid.UUID) error

	// Recipe-item caching (full ingredient list per sandwich)
	GetRecipeItems(ctx context.Context, sandwichID uuid.UUID) ([]models.RecipeItem, error)
	SetRecipeItems(ctx context.Context, sandwichID uuid.UUID, items []models.RecipeItem, ttl time.Duration) error
	DeleteRecipeItems(ctx context.Context, sandwichID uuid.UUID) error

	// Session management
	SetSession(ctx context.Context, sessionID, customerRef string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Cache invalidation
	InvalidateAllCache(ctx context.Context) error

	// Ping reports whether the cache backend is reachable
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis:// and rediss:// prefixed addresses
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func sandwichKey(sandwichID uuid.UUID) string {
	return fmt.Sprintf("sandwichworks:sandwich:%s", sandwichID.String())
}

func recipeItemsKey(sandwichID uuid.UUID) string {
	return fmt.Sprintf("sandwichworks:recipe-items:%s", sandwichID.String())
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("sandwichworks:session:%s", sessionID)
}

func (r *redisCacheService) GetSandwich(ctx context.Context, sandwichID uuid.UUID) (*models.Sandwich, error) {
	data, err := r.client.Get(ctx, sandwichKey(sandwichID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var sandwich models.Sandwich
	if err := json.Unmarshal(data, &sandwich); err != nil {
		return nil, err
	}
	return &sandwich, nil
}

func (r *redisCacheService) SetSandwich(ctx context.Context, sandwich *models.Sandwich, ttl time.Duration) error {
	data, err := json.Marshal(sandwich)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sandwichKey(sandwich.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteSandwich(ctx context.Context, sandwichID uuid.UUID) error {
	return r.client.Del(ctx, sandwichKey(sandwichID)).Err()
}

func (r *redisCacheService) GetRecipeItems(ctx context.Context, sandwichID uuid.UUID) ([]models.RecipeItem, error) {
	data, err := r.client.Get(ctx, recipeItemsKey(sandwichID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var items []models.RecipeItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *redisCacheService) SetRecipeItems(ctx context.Context, sandwichID uuid.UUID, items []models.RecipeItem, ttl time.Duration) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, recipeItemsKey(sandwichID), data, ttl).Err()
}

func (r *redisCacheService) DeleteRecipeItems(ctx context.Context, sandwichID uuid.UUID) error {
	return r.client.Del(ctx, recipeItemsKey(sandwichID)).Err()
}

func (r *redisCacheService) SetSession(ctx context.Context, sessionID, customerRef string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKey(sessionID), customerRef, ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) InvalidateAllCache(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "sandwichworks:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("Failed to delete cache key %s: %v", iter.Val(), err)
		}
	}
	return iter.Err()
}
