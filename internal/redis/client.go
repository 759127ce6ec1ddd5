package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medimarket/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb       *redis.Client
	statusTTL time.Duration
}

// Initialize connects to Redis. cacheTTLSeconds controls how long cached
// prescription statuses live.
func Initialize(redisURL string, cacheTTLSeconds int) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, statusTTL: time.Duration(cacheTTLSeconds) * time.Second}, nil
}

// Prescription status caching

func (c *Client) SetPrescriptionStatus(prescriptionID string, status models.PrescriptionStatus) error {
	ctx := context.Background()
	key := "prescription_status:" + prescriptionID
	return c.rdb.Set(ctx, key, string(status), c.statusTTL).Err()
}

func (c *Client) GetPrescriptionStatus(prescriptionID string) (models.PrescriptionStatus, error) {
	ctx := context.Background()
	key := "prescription_status:" + prescriptionID
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("prescription status not cached")
		}
		return "", fmt.Errorf("failed to get prescription status: %w", err)
	}
	return models.PrescriptionStatus(val), nil
}

// Settlement metrics caching

func (c *Client) SetMetrics(key string, metrics *models.TransactionMetrics, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	return c.rdb.Set(ctx, "metrics:"+key, jsonData, ttl).Err()
}

func (c *Client) GetMetrics(key string) (*models.TransactionMetrics, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "metrics:"+key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("metrics not cached")
		}
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}

	var metrics models.TransactionMetrics
	if err := json.Unmarshal([]byte(val), &metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	return &metrics, nil
}

func (c *Client) InvalidateMetrics() error {
	ctx := context.Background()
	keys, err := c.rdb.Keys(ctx, "metrics:*").Result()
	if err != nil {
		return fmt.Errorf("failed to list metrics keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
