package repository

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// blacklistKeyPrefix namespaces revoked tokens in Redis.
const blacklistKeyPrefix = "auth:blacklist:"

// BlacklistRepo persists token revocation entries in the 'blacklisted_tokens'
// table, keyed by the literal token string.  When a Redis client is present
// it mirrors entries there with a TTL equal to the token's remaining
// lifetime, so the hot per-request revocation check usually skips MySQL.
// Redis is strictly a fast path: the table remains the source of truth and
// every Redis failure degrades to a database lookup.
type BlacklistRepo struct {
	DB  *sql.DB
	RDB *redis.Client // optional; nil disables the fast path
}

func NewBlacklistRepo(db *sql.DB, rdb *redis.Client) *BlacklistRepo {
	return &BlacklistRepo{DB: db, RDB: rdb}
}

// Add records token as revoked until exp.  Revoking a token twice is
// harmless: the duplicate key on the second insert is treated as success.
func (r *BlacklistRepo) Add(ctx context.Context, token string, userID uint64, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO blacklisted_tokens (token, user_id, expires_at) VALUES (?,?,?)",
		token, userID, exp)
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "1062") {
		return err
	}
	if r.RDB != nil {
		if ttl := time.Until(exp); ttl > 0 {
			if err := r.RDB.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err(); err != nil {
				log.Printf("blacklist: redis set failed: %v", err)
			}
		}
	}
	return nil
}

// Contains reports whether token has an unexpired revocation entry.  An
// entry past its own expiry is treated as not revoked (the token itself is
// already dead at that point) and is deleted opportunistically; the delete
// is an optimization, never a correctness requirement.
func (r *BlacklistRepo) Contains(ctx context.Context, token string) (bool, error) {
	if r.RDB != nil {
		// Redis keys carry the token's TTL, so presence alone means revoked
		// and still unexpired.  Errors and misses fall through to MySQL.
		if n, err := r.RDB.Exists(ctx, blacklistKeyPrefix+token).Result(); err == nil && n > 0 {
			return true, nil
		}
	}

	var expiresAt time.Time
	err := r.DB.QueryRowContext(ctx,
		"SELECT expires_at FROM blacklisted_tokens WHERE token=? LIMIT 1", token).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if time.Now().UTC().After(expiresAt) {
		// Stale entry: the token expired on its own.  Prune best-effort.
		if _, err := r.DB.ExecContext(ctx,
			"DELETE FROM blacklisted_tokens WHERE token=?", token); err != nil {
			log.Printf("blacklist: lazy prune failed: %v", err)
		}
		return false, nil
	}
	return true, nil
}
