package cache

import (
	"fmt"
	"time"
)

// RateLimitKey buckets a client into the current one-minute window.
func RateLimitKey(client string, now time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", client, now.Unix()/60)
}
