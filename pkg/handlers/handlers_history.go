package handlers

import (
	"net/http"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// ListHistory returns the archived schedules of the workspace, oldest first
func (h *Handler) ListHistory(c *gin.Context) {
	records, err := h.Store.History(c.Request.Context(), workspace(c))
	if err != nil {
		h.storeError(c, "history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

// ArchiveSchedule saves a finalized schedule into history. Without weeks in
// the body the current draft is archived.
func (h *Handler) ArchiveSchedule(c *gin.Context) {
	ctx := c.Request.Context()
	ws := workspace(c)

	var req struct {
		Title string        `json:"title"`
		Weeks []models.Week `json:"weeks"`
	}
	if err := bindOptional(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	weeks := req.Weeks
	if weeks == nil {
		var ok bool
		if weeks, ok = h.draft(c); !ok {
			return
		}
	}
	if len(weeks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to archive"})
		return
	}

	lists, err := h.Store.Lists(ctx, ws)
	if err != nil {
		h.storeError(c, "lists", err)
		return
	}
	cursors, err := h.Store.Cursors(ctx, ws)
	if err != nil {
		h.storeError(c, "rotation state", err)
		return
	}

	now := time.Now().UTC()
	title := req.Title
	if title == "" {
		title = "Schedule " + now.Format("2006-01-02")
	}
	rec := &models.HistoryRecord{
		Title:            title,
		SavedAt:          now,
		Weeks:            weeks,
		ParticipantLists: lists,
		RotationState:    cursors,
		AssignmentCounts: scheduler.CountAssignments(weeks),
	}
	if err := h.Store.CreateHistory(ctx, ws, rec); err != nil {
		h.storeError(c, "history", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GetHistory returns one archived schedule
func (h *Handler) GetHistory(c *gin.Context) {
	rec, err := h.Store.HistoryRecord(c.Request.Context(), workspace(c), c.Param("id"))
	if err != nil {
		h.storeError(c, "history record", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpdateHistory corrects an archived schedule. Counts are recomputed from the new weeks.
func (h *Handler) UpdateHistory(c *gin.Context) {
	ctx := c.Request.Context()
	ws := workspace(c)

	rec, err := h.Store.HistoryRecord(ctx, ws, c.Param("id"))
	if err != nil {
		h.storeError(c, "history record", err)
		return
	}

	var req struct {
		Title *string       `json:"title"`
		Weeks []models.Week `json:"weeks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title != nil {
		rec.Title = *req.Title
	}
	if req.Weeks != nil {
		rec.Weeks = req.Weeks
		rec.AssignmentCounts = scheduler.CountAssignments(req.Weeks)
	}

	if err := h.Store.UpdateHistory(ctx, ws, rec); err != nil {
		h.storeError(c, "history record", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteHistory removes an archived schedule
func (h *Handler) DeleteHistory(c *gin.Context) {
	if err := h.Store.DeleteHistory(c.Request.Context(), workspace(c), c.Param("id")); err != nil {
		h.storeError(c, "history record", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "History record deleted"})
}

// LoadHistory copies an archived schedule into the draft for editing
func (h *Handler) LoadHistory(c *gin.Context) {
	ctx := c.Request.Context()
	ws := workspace(c)

	rec, err := h.Store.HistoryRecord(ctx, ws, c.Param("id"))
	if err != nil {
		h.storeError(c, "history record", err)
		return
	}
	weeks := models.CloneWeeks(rec.Weeks)
	if err := h.Store.SaveDraft(ctx, ws, weeks); err != nil {
		h.storeError(c, "schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}
