// internal/workers/communication/send-results-email/guard.go
package sendresultsemail

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardKeyPrefix = "quiz:results-email:"

// SendGuard remembers recently sent results emails so a retried job or a
// double submit does not mail the same results twice.
type SendGuard struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSendGuard(rdb redis.Cmdable, ttl time.Duration) *SendGuard {
	return &SendGuard{rdb: rdb, ttl: ttl}
}

// Acquire claims the send slot for recipient and tags. It returns false when
// the same results went to the same address within the TTL.
func (g *SendGuard) Acquire(ctx context.Context, recipient string, tags []string) (bool, error) {
	return g.rdb.SetNX(ctx, guardKey(recipient, tags), "1", g.ttl).Result()
}

// Release frees the slot after a failed send so a retry can go through.
func (g *SendGuard) Release(ctx context.Context, recipient string, tags []string) error {
	return g.rdb.Del(ctx, guardKey(recipient, tags)).Err()
}

// guardKey fingerprints the recipient and the order-independent tag set.
func guardKey(recipient string, tags []string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.ToLower(recipient) + "|" + strings.Join(sorted, ",")))
	return guardKeyPrefix + hex.EncodeToString(sum[:])
}
