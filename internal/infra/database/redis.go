package database

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis dials the cache backend for the listing read cache. Password is
// empty everywhere but production.
func NewRedis(addr string, password string, index int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       index,
	})
}
