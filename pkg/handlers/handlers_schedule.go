package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/export"
	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/arnavshah/meeting-rotation-api/pkg/slips"
	"github.com/arnavshah/meeting-rotation-api/pkg/templates"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) draft(c *gin.Context) ([]models.Week, bool) {
	weeks, err := h.Store.DraftWeeks(c.Request.Context(), workspace(c))
	if err != nil {
		h.storeError(c, "schedule", err)
		return nil, false
	}
	return weeks, true
}

// GetSchedule returns the draft with a per-person assignment summary
func (h *Handler) GetSchedule(c *gin.Context) {
	weeks, ok := h.draft(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"weeks":             weeks,
		"assignment_counts": scheduler.CountAssignments(weeks),
	})
}

// SaveSchedule overwrites the draft with hand-edited weeks
func (h *Handler) SaveSchedule(c *gin.Context) {
	var req struct {
		Weeks []models.Week `json:"weeks" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.SaveDraft(c.Request.Context(), workspace(c), req.Weeks); err != nil {
		h.storeError(c, "schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": req.Weeks})
}

// ClearSchedule drops the draft
func (h *Handler) ClearSchedule(c *gin.Context) {
	if err := h.Store.DeleteDraft(c.Request.Context(), workspace(c)); err != nil {
		h.storeError(c, "schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule cleared"})
}

// AddWeek appends a template week to the draft. start_date dates the
// first week of the draft; without it the first week's date is reused.
func (h *Handler) AddWeek(c *gin.Context) {
	var req struct {
		StartDate   string `json:"start_date"`
		PairedItems int    `json:"paired_items"`
	}
	if err := bindOptional(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PairedItems < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paired_items must not be negative"})
		return
	}

	weeks, ok := h.draft(c)
	if !ok {
		return
	}

	startDate := req.StartDate
	if startDate == "" && len(weeks) > 0 {
		startDate = weeks[0].Date
	}
	var start time.Time
	if startDate != "" {
		var err error
		if start, err = time.Parse("2006-01-02", startDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
	}

	week := templates.NewWeek(len(weeks)+1, start)
	for i := 0; i < req.PairedItems; i++ {
		week = templates.AddPairedItem(week, fmt.Sprintf("Ministry part %d", i+1))
	}
	weeks = append(weeks, week)

	if err := h.Store.SaveDraft(c.Request.Context(), workspace(c), weeks); err != nil {
		h.storeError(c, "schedule", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"week": week, "week_count": len(weeks)})
}

// RotateSchedule fills the draft from the stored lists, history and cursors
// and saves the result and the advanced cursors
func (h *Handler) RotateSchedule(c *gin.Context) {
	ctx := c.Request.Context()
	ws := workspace(c)

	snap, err := h.Store.Snapshot(ctx, ws)
	if err != nil {
		h.storeError(c, "workspace", err)
		return
	}

	res, err := h.Scheduler.Rotate(scheduler.Input{
		Weeks:   snap.Draft,
		Lists:   snap.Lists,
		History: snap.History,
		Cursors: snap.Cursors,
	})
	h.Metrics.ObserveRotation(res, err)
	if err != nil {
		h.rotationFailed(c, err)
		return
	}

	if !res.NoWeeks {
		if err := h.Store.SaveDraft(ctx, ws, res.Weeks); err != nil {
			h.storeError(c, "schedule", err)
			return
		}
	}
	if err := h.Store.SaveCursors(ctx, ws, res.Cursors); err != nil {
		h.storeError(c, "rotation state", err)
		return
	}

	h.Logger.Info("workspace schedule rotated",
		zap.String("workspace", ws),
		zap.Int("weeks", len(res.Weeks)),
		zap.Int("history_records", len(snap.History)),
	)
	h.RecordUsage(c, len(res.Weeks), len(res.Decisions))
	c.JSON(http.StatusOK, h.rotateResponse(res))
}

// Slips returns the printable assignment slips of the draft
func (h *Handler) Slips(c *gin.Context) {
	weeks, ok := h.draft(c)
	if !ok {
		return
	}
	list := slips.Generate(weeks)
	if list == nil {
		list = []slips.Slip{}
	}
	c.JSON(http.StatusOK, gin.H{"slips": list})
}

// ExportWorkbook downloads the draft as an .xlsx workbook
func (h *Handler) ExportWorkbook(c *gin.Context) {
	weeks, ok := h.draft(c)
	if !ok {
		return
	}
	buf, err := export.Workbook(weeks, slips.Generate(weeks))
	if errors.Is(err, export.ErrNoWeeks) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.serverError(c, "Could not build workbook", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCalendar downloads the dated weeks of the draft as an iCalendar feed
func (h *Handler) ExportCalendar(c *gin.Context) {
	weeks, ok := h.draft(c)
	if !ok {
		return
	}
	feed, err := export.Calendar(weeks, workspace(c))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}
