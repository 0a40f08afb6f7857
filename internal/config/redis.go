package config

// Redis backs the fast path of the token blacklist: revoked tokens are
// mirrored there with a TTL equal to their remaining lifetime, so the
// per-request revocation check usually skips MySQL.  Connection parameters
// come from the environment.  Redis is optional — when the ping fails the
// constructor returns nil and the blacklist falls back to the database
// alone.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from the environment:
//   REDIS_ADDR            – host:port (preferred)
//   REDIS_HOST/REDIS_PORT – assembled into an address when REDIS_ADDR is unset
//   REDIS_PASSWORD        – optional password
//   REDIS_DB              – database number (default 0)
//   REDIS_TLS             – enable TLS when "true" or "1"
// Returns nil when the server cannot be reached.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
			addr = host + ":" + port
		}
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	dbNum := 0
	if s := os.Getenv("REDIS_DB"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			dbNum = n
		}
	}

	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
