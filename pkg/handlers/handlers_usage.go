package handlers

import (
	"net/http"

	"github.com/arnavshah/meeting-rotation-api/pkg/database"
	"github.com/gin-gonic/gin"
)

const usageDays = 30

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get(ctxAPIKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	usage, err := h.Store.Usage(c.Request.Context(), apiKey.ID, usageDays)
	if err != nil {
		h.serverError(c, "Could not fetch usage details", err)
		return
	}

	// Calculate totals
	var totalRequests, totalWeeks, totalSlots int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalWeeks += int64(u.TotalWeeks)
		totalSlots += int64(u.TotalSlots)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests": totalRequests,
			"weeks":    totalWeeks,
			"slots":    totalSlots,
		},
	})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id, ok := keyID(c)
	if !ok {
		return
	}
	usage, err := h.Store.Usage(c.Request.Context(), id, usageDays)
	if err != nil {
		h.serverError(c, "Could not fetch usage details", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}
