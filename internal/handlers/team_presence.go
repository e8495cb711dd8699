package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/alimgiray/teampresence/internal/middleware"
	"github.com/alimgiray/teampresence/internal/models"
	"github.com/alimgiray/teampresence/internal/services"
	"github.com/alimgiray/teampresence/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PresenceSource returns the current presence feed
type PresenceSource interface {
	Get(ctx context.Context) (*models.AggregationResult, error)
}

type TeamPresenceHandler struct {
	source      PresenceSource
	cachePolicy middleware.CachePolicy
}

func NewTeamPresenceHandler(source PresenceSource, cachePolicy middleware.CachePolicy) *TeamPresenceHandler {
	return &TeamPresenceHandler{
		source:      source,
		cachePolicy: cachePolicy,
	}
}

// GetTeamPresence returns the presence feed as a JSON array
func (h *TeamPresenceHandler) GetTeamPresence(c *gin.Context) {
	result, ok := h.fetch(c)
	if !ok {
		return
	}

	logger.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"users":      len(result.Snapshots),
	}).Info("Returning team presence")

	h.cachePolicy.Apply(c)
	c.JSON(http.StatusOK, result.Snapshots)
}

// fetch loads the feed, writing the error response itself on failure
func (h *TeamPresenceHandler) fetch(c *gin.Context) (*models.AggregationResult, bool) {
	result, err := h.source.Get(c.Request.Context())
	if err != nil {
		logger.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
		}).WithError(err).Error("Failed to fetch team presence")

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch GitHub data",
			"details": failureDetails(err),
		})
		return nil, false
	}

	return result, true
}

// failureDetails keeps defect messages out of the response body
func failureDetails(err error) string {
	if errors.Is(err, services.ErrAggregationPanic) {
		return "unexpected error"
	}
	return err.Error()
}
