package models

import (
	"time"
)

// PresenceStatus is the coarse activity state shown next to a team member
type PresenceStatus string

const (
	PresenceStatusOnline PresenceStatus = "online"
	PresenceStatusCoding PresenceStatus = "coding"
	PresenceStatusAway   PresenceStatus = "away"
)

// UnknownLabel is used when there is no activity to describe
const UnknownLabel = "unknown"

// UpstreamUserRecord is the subset of a GitHub profile the feed needs
type UpstreamUserRecord struct {
	Login       string
	Name        *string
	Followers   int
	PublicRepos int
	Bio         *string
}

// DisplayName returns the human name, or the login when no name is set
func (u *UpstreamUserRecord) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Login
}

// UpstreamActivityRecord describes the most recent activity of a user.
// Both fields are nil when the user has no activity or it could not be fetched.
type UpstreamActivityRecord struct {
	LastActivityAt    *time.Time
	LastActivityLabel *string
}

// PresenceSnapshot is one team member's entry in the presence feed.
// Snapshots are rebuilt on every aggregation and never modified afterwards.
type PresenceSnapshot struct {
	Username       string         `json:"username"`
	Name           string         `json:"name"`
	Followers      int            `json:"followers"`
	PublicRepos    int            `json:"publicRepos"`
	Bio            *string        `json:"bio"`
	LastSeen       string         `json:"lastSeen"`
	Status         PresenceStatus `json:"status"`
	CurrentProject string         `json:"currentProject"`
}

// AggregationResult is the output of one upstream fan-out. Callers that
// were collapsed into the same fan-out share a single instance.
type AggregationResult struct {
	Snapshots   []PresenceSnapshot
	GeneratedAt time.Time
}
