package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CachePolicy controls how long shared caches may reuse a successful response
type CachePolicy struct {
	SharedMaxAge         time.Duration
	StaleWhileRevalidate time.Duration
}

// DefaultCachePolicy lets edge caches keep the feed fresh for ten minutes and
// serve it stale for a day while they revalidate.
var DefaultCachePolicy = CachePolicy{
	SharedMaxAge:         10 * time.Minute,
	StaleWhileRevalidate: 24 * time.Hour,
}

// Directive renders the Cache-Control header value
func (p CachePolicy) Directive() string {
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		int64(p.SharedMaxAge/time.Second),
		int64(p.StaleWhileRevalidate/time.Second),
	)
}

// Apply sets the directive on the response. Only call it for successful
// responses so that failures are never cached.
func (p CachePolicy) Apply(c *gin.Context) {
	c.Header("Cache-Control", p.Directive())
}
