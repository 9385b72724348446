package handlers

import (
	"net/http"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/templates"
	"github.com/gin-gonic/gin"
)

// GetLists returns the workspace's participant lists and rotation cursors.
// A workspace without lists gets the empty template set.
func (h *Handler) GetLists(c *gin.Context) {
	ctx := c.Request.Context()
	lists, err := h.Store.Lists(ctx, workspace(c))
	if err != nil {
		h.storeError(c, "lists", err)
		return
	}
	stored := len(lists) > 0
	if !stored {
		lists = templates.DefaultLists()
	}
	cursors, err := h.Store.Cursors(ctx, workspace(c))
	if err != nil {
		h.storeError(c, "rotation state", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"participant_lists": lists,
		"rotation_indices":  cursors,
		"stored":            stored,
	})
}

// ReplaceLists swaps the whole list set of the workspace
func (h *Handler) ReplaceLists(c *gin.Context) {
	var req struct {
		ParticipantLists map[string]models.RoleList `json:"participant_lists" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.ReplaceLists(c.Request.Context(), workspace(c), req.ParticipantLists); err != nil {
		h.storeError(c, "lists", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant_lists": req.ParticipantLists})
}

// PutList creates or replaces one list
func (h *Handler) PutList(c *gin.Context) {
	var list models.RoleList
	if err := c.ShouldBindJSON(&list); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if list.Participants == nil {
		list.Participants = []string{}
	}
	key := c.Param("key")
	if err := h.Store.PutList(c.Request.Context(), workspace(c), key, list); err != nil {
		h.storeError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "list": list})
}

// DeleteList removes one list
func (h *Handler) DeleteList(c *gin.Context) {
	if err := h.Store.DeleteList(c.Request.Context(), workspace(c), c.Param("key")); err != nil {
		h.storeError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "List deleted"})
}
