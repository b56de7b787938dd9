package helpers

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the client shared by sessions, reset tokens and the
// rate limiter.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}
