package services

import (
	"fmt"
	"time"

	"github.com/alimgiray/teampresence/internal/models"
)

// Presence is the label and status derived from a last activity timestamp
type Presence struct {
	Label  string
	Status models.PresenceStatus
}

// ClassifyPresence converts the time of the last activity into a presence
// label relative to now. Hours and days are floored, never rounded.
func ClassifyPresence(lastActivity *time.Time, now time.Time) Presence {
	if lastActivity == nil {
		return Presence{Label: models.UnknownLabel, Status: models.PresenceStatusAway}
	}

	hours := int64(now.Sub(*lastActivity) / time.Hour)
	days := hours / 24

	switch {
	case hours < 1:
		return Presence{Label: "active now", Status: models.PresenceStatusOnline}
	case hours < 6:
		return Presence{Label: fmt.Sprintf("active %d hours ago", hours), Status: models.PresenceStatusCoding}
	case hours < 24:
		return Presence{Label: fmt.Sprintf("last seen %d hours ago", hours), Status: models.PresenceStatusAway}
	case days < 7:
		return Presence{Label: fmt.Sprintf("last seen %d days ago", days), Status: models.PresenceStatusAway}
	case days < 30:
		return Presence{Label: fmt.Sprintf("last seen %d weeks ago", days/7), Status: models.PresenceStatusAway}
	default:
		return Presence{Label: "inactive for a while", Status: models.PresenceStatusAway}
	}
}
