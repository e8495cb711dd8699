package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/alimgiray/teampresence/internal/models"
	"github.com/alimgiray/teampresence/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	presenceSheet = "Presence"
	xlsxMimeType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var presenceColumns = []interface{}{
	"Username", "Name", "Followers", "Public Repos", "Bio", "Last Seen", "Status", "Current Project",
}

// ExportTeamPresence returns the presence feed as an XLSX workbook
func (h *TeamPresenceHandler) ExportTeamPresence(c *gin.Context) {
	result, ok := h.fetch(c)
	if !ok {
		return
	}

	buf, err := buildPresenceWorkbook(result.Snapshots)
	if err != nil {
		logger.WithError(err).Error("Failed to build presence workbook")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to export GitHub data",
			"details": err.Error(),
		})
		return
	}

	filename := fmt.Sprintf("team-presence-%s.xlsx", result.GeneratedAt.UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.cachePolicy.Apply(c)
	c.Data(http.StatusOK, xlsxMimeType, buf.Bytes())
}

// buildPresenceWorkbook writes one row per snapshot under a header row
func buildPresenceWorkbook(snapshots []models.PresenceSnapshot) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", presenceSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(presenceSheet, "A1", &presenceColumns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range snapshots {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		bio := ""
		if s.Bio != nil {
			bio = *s.Bio
		}

		row := []interface{}{
			s.Username, s.Name, s.Followers, s.PublicRepos, bio, s.LastSeen, string(s.Status), s.CurrentProject,
		}
		if err := f.SetSheetRow(presenceSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row for %s: %w", s.Username, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
