// config/redis.go
package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis opens the client used for referral code resolution caching.
// Redis is optional infrastructure here: when no server is reachable the
// caller gets nil and every code lookup goes straight to MongoDB.
func ConnectRedis() *redis.Client {
	opts, err := redisOptions()
	if err != nil {
		log.Printf("Warning: bad Redis configuration, cache disabled: %v", err)
		return nil
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unreachable at %s, cache disabled: %v", opts.Addr, err)
		client.Close()
		return nil
	}

	log.Println("Connected to Redis")
	return client
}

// redisOptions builds client options from REDIS_URL when set, otherwise from
// the individual REDIS_ADDR, REDIS_PASSWORD and REDIS_DB variables.
func redisOptions() (*redis.Options, error) {
	if rawURL := os.Getenv("REDIS_URL"); rawURL != "" {
		opts, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, err
		}
		tuneRedisOptions(opts)
		return opts, nil
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	db := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", raw, err)
		}
		db = parsed
	}

	opts := &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}
	tuneRedisOptions(opts)
	return opts, nil
}

// tuneRedisOptions applies the pool and timeout settings regardless of which
// configuration path produced the options.
func tuneRedisOptions(opts *redis.Options) {
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 2
}
