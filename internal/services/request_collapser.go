package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/teampresence/internal/metrics"
	"github.com/alimgiray/teampresence/internal/models"
	"github.com/alimgiray/teampresence/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const collapseKey = "team-presence"

// Aggregator produces a presence feed for a roster
type Aggregator interface {
	Aggregate(ctx context.Context, usernames []string) (*models.AggregationResult, error)
}

// RequestCollapser lets concurrent callers share a single in-flight
// aggregation. Once that aggregation finishes, successfully or not, the
// next call starts a new one; results are never reused after completion.
type RequestCollapser struct {
	aggregator Aggregator
	usernames  []string
	metrics    *metrics.Metrics
	group      singleflight.Group

	// joined, when set, runs once the caller is attached to an aggregation
	joined func()
}

func NewRequestCollapser(aggregator Aggregator, usernames []string, m *metrics.Metrics) *RequestCollapser {
	return &RequestCollapser{
		aggregator: aggregator,
		usernames:  append([]string(nil), usernames...),
		metrics:    m,
	}
}

// Get returns the presence feed, joining the aggregation already in flight
// if there is one. All callers of the same aggregation receive the same
// result pointer or the same error.
func (c *RequestCollapser) Get(ctx context.Context) (*models.AggregationResult, error) {
	initiated := false

	ch := c.group.DoChan(collapseKey, func() (v interface{}, err error) {
		initiated = true
		logger.Debugf("Starting presence aggregation for %d users", len(c.usernames))

		// DoChan runs this on its own goroutine, where a panic would
		// take the process down instead of reaching the caller.
		defer func() {
			if r := recover(); r != nil {
				v, err = nil, fmt.Errorf("%w: %v", ErrAggregationPanic, r)
			}
		}()

		// Other callers may be waiting on this aggregation, so it must
		// outlive the request that started it.
		start := time.Now()
		result, err := c.aggregator.Aggregate(context.WithoutCancel(ctx), c.usernames)
		c.metrics.RecordAggregation(time.Since(start), err)
		return result, err
	})

	if c.joined != nil {
		c.joined()
	}

	res := <-ch

	if !initiated {
		c.metrics.RecordCollapsed()
		logger.Debugf("Request collapsed into in-flight aggregation")
	}

	if res.Err != nil {
		return nil, res.Err
	}

	return res.Val.(*models.AggregationResult), nil
}
