package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimgiray/teampresence/internal/metrics"
	"github.com/alimgiray/teampresence/internal/models"
	"github.com/alimgiray/teampresence/pkg/logger"
	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrAggregationPanic marks a defect that escaped the per-user isolation.
// It fails the whole aggregation.
var ErrAggregationPanic = errors.New("presence aggregation panicked")

type PresenceAggregator struct {
	upstream UpstreamClient
	clock    quartz.Clock
	metrics  *metrics.Metrics
}

func NewPresenceAggregator(upstream UpstreamClient, clock quartz.Clock, m *metrics.Metrics) *PresenceAggregator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &PresenceAggregator{
		upstream: upstream,
		clock:    clock,
		metrics:  m,
	}
}

// presenceAttempt is the outcome for one user: a snapshot, or the reason
// the user is left out of the feed.
type presenceAttempt struct {
	username string
	snapshot *models.PresenceSnapshot
	err      error
}

// Aggregate fetches every user concurrently and returns the snapshots of
// the users whose profile could be fetched, in roster order.
func (a *PresenceAggregator) Aggregate(ctx context.Context, usernames []string) (*models.AggregationResult, error) {
	now := a.clock.Now()
	attempts := make([]presenceAttempt, len(usernames))

	g, gctx := errgroup.WithContext(ctx)
	for i, username := range usernames {
		g.Go(func() error {
			return guard(username, func() error {
				attempt, err := a.attempt(gctx, username, now)
				if err != nil {
					return err
				}
				attempts[i] = attempt
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Presence aggregation failed")
		return nil, err
	}

	snapshots := collectSnapshots(attempts)
	logger.Infof("Fetched presence for %d of %d users", len(snapshots), len(usernames))

	return &models.AggregationResult{
		Snapshots:   snapshots,
		GeneratedAt: now,
	}, nil
}

// attempt runs the profile and activity lookups for one user. Upstream
// failures are folded into the returned attempt; only panics are returned
// as errors.
func (a *PresenceAggregator) attempt(ctx context.Context, username string, now time.Time) (presenceAttempt, error) {
	var (
		user        *models.UpstreamUserRecord
		userErr     error
		activity    *models.UpstreamActivityRecord
		activityErr error
	)

	var calls errgroup.Group
	calls.Go(func() error {
		return guard(username, func() error {
			user, userErr = a.upstream.GetUser(ctx, username)
			return nil
		})
	})
	calls.Go(func() error {
		return guard(username, func() error {
			activity, activityErr = a.upstream.GetRecentActivity(ctx, username)
			return nil
		})
	})
	if err := calls.Wait(); err != nil {
		return presenceAttempt{}, err
	}

	entry := logger.WithFields(logrus.Fields{"username": username})

	if userErr == nil && user == nil {
		userErr = fmt.Errorf("empty profile for %s", username)
	}
	if userErr != nil {
		a.metrics.RecordUpstreamFailure(metrics.ResourceProfile)
		entry.WithError(userErr).Warn("Dropping user from presence feed")
		return presenceAttempt{username: username, err: userErr}, nil
	}

	if activityErr != nil {
		a.metrics.RecordUpstreamFailure(metrics.ResourceActivity)
		entry.WithError(activityErr).Warn("No activity data for user")
		activity = nil
	}

	snapshot := buildSnapshot(username, user, activity, now)
	return presenceAttempt{username: username, snapshot: &snapshot}, nil
}

// buildSnapshot combines a profile and optional activity into a feed entry
func buildSnapshot(username string, user *models.UpstreamUserRecord, activity *models.UpstreamActivityRecord, now time.Time) models.PresenceSnapshot {
	var lastActivity *time.Time
	currentProject := models.UnknownLabel
	if activity != nil {
		lastActivity = activity.LastActivityAt
		if activity.LastActivityLabel != nil && *activity.LastActivityLabel != "" {
			currentProject = *activity.LastActivityLabel
		}
	}

	presence := ClassifyPresence(lastActivity, now)

	return models.PresenceSnapshot{
		Username:       username,
		Name:           user.DisplayName(),
		Followers:      user.Followers,
		PublicRepos:    user.PublicRepos,
		Bio:            user.Bio,
		LastSeen:       presence.Label,
		Status:         presence.Status,
		CurrentProject: currentProject,
	}
}

// collectSnapshots keeps the successful attempts, preserving their order
func collectSnapshots(attempts []presenceAttempt) []models.PresenceSnapshot {
	snapshots := make([]models.PresenceSnapshot, 0, len(attempts))
	for _, attempt := range attempts {
		if attempt.err != nil || attempt.snapshot == nil {
			continue
		}
		snapshots = append(snapshots, *attempt.snapshot)
	}
	return snapshots
}

// guard runs fn and turns a panic into ErrAggregationPanic
func guard(username string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w for %s: %v", ErrAggregationPanic, username, r)
		}
	}()
	return fn()
}
