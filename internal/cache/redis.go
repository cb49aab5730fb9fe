package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	customerListKeyFmt = "customers:list:%d"
	customerListTTL    = 30 * time.Second
)

var client *redis.Client

// Init initializes the Redis connection. The server degrades gracefully
// without Redis; all helpers become no-ops.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when Redis is unavailable)
func GetClient() *redis.Client {
	return client
}

// GetCachedCustomerList returns the cached customer list JSON for a tenant
func GetCachedCustomerList(ctx context.Context, userID int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(customerListKeyFmt, userID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCachedCustomerList stores the customer list JSON for a tenant
func SetCachedCustomerList(ctx context.Context, userID int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(customerListKeyFmt, userID), data, customerListTTL)
}

// InvalidateCustomerList drops the cached customer list after any write
func InvalidateCustomerList(ctx context.Context, userID int) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(customerListKeyFmt, userID))
}
