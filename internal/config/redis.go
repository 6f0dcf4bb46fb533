package config

// This file defines a Redis client constructor for the application.  Redis
// backs the session store (one refresh token per user), the featured product
// cache and distributed rate limiting.  The client parameters are loaded from
// environment variables.  If connection fails during startup the function
// returns nil; the server still boots, and callers degrade gracefully by
// disabling caching and rate limiting while session writes report as store
// failures.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand (takes precedence if both host/port and addr are set)
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
//   REDIS_TLS_SKIP_VERIFY – disable certificate verification (managed
//     caches with self-signed certs only; verification is on by default)
// The returned client may be nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
    host := os.Getenv("REDIS_HOST")
    port := os.Getenv("REDIS_PORT")
    addr := os.Getenv("REDIS_ADDR")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    pwd := os.Getenv("REDIS_PASSWORD")
    dbNum := 0
    if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
        if n, err := strconv.Atoi(dbStr); err == nil {
            dbNum = n
        }
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  pwd,
        DB:        dbNum,
        TLSConfig: redisTLSConfig(),
    })
    // Ping the server with a short timeout.  Return nil on failure.
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}

// redisTLSConfig builds the TLS settings for the Redis connection.  TLS is
// off unless REDIS_TLS is set; certificates are verified unless
// REDIS_TLS_SKIP_VERIFY is additionally set, so skipping verification is
// always a separate, deliberate choice.
func redisTLSConfig() *tls.Config {
    if !envBool("REDIS_TLS", false) {
        return nil
    }
    return &tls.Config{
        MinVersion:         tls.VersionTLS12,
        InsecureSkipVerify: envBool("REDIS_TLS_SKIP_VERIFY", false),
    }
}

// getenv returns the value of an environment variable or a default when
// the variable is unset or empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}
