package handlers

import (
	"errors"
	"net/http"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks a rotation request without running it and audits
// the weeks as submitted
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.RotateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Weeks) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one week is required",
		})
		return
	}

	// Check for duplicate IDs
	weekIDs := make(map[models.ID]bool)
	slots := 0
	for _, w := range input.Weeks {
		if w.ID != "" {
			if weekIDs[w.ID] {
				c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate week ID: " + string(w.ID)})
				return
			}
			weekIDs[w.ID] = true
		}
		slots += 3
		for _, sec := range w.Sections {
			slots += len(sec.Items)
		}
	}

	// paired items are judged the way a rotation will fill them
	weeks := scheduler.NormalizePairing(input.Weeks, h.Scheduler.Config().PairedLists)
	required := h.Scheduler.RequiredLists(weeks)
	if err := h.Scheduler.CheckLists(weeks, input.ParticipantLists); err != nil {
		var missing *scheduler.MissingListError
		if errors.As(err, &missing) {
			c.JSON(http.StatusOK, gin.H{
				"valid":         false,
				"error":         err.Error(),
				"missing_lists": missing.Keys,
			})
			return
		}
		h.serverError(c, "Validation failed", err)
		return
	}

	// blank slots are expected before a rotation
	violations := []models.Violation{}
	for _, v := range h.Scheduler.Audit(weeks) {
		if v.Rule != scheduler.RuleUnfilled {
			violations = append(violations, v)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"violations": violations,
		"stats": gin.H{
			"week_count":     len(input.Weeks),
			"slot_count":     slots,
			"list_count":     len(input.ParticipantLists),
			"required_lists": required,
			"paired_lists":   h.Scheduler.Config().PairedLists,
			"history_count":  len(input.History),
		},
	})
}
