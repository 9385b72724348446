package handlers

import (
	"embed"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/arnavshah/meeting-rotation-api/pkg/auth"
	"github.com/arnavshah/meeting-rotation-api/pkg/cache"
	"github.com/arnavshah/meeting-rotation-api/pkg/database"
	"github.com/arnavshah/meeting-rotation-api/pkg/metrics"
	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed static/*
var staticEmbed embed.FS

// Handler contains dependencies for the route handlers
type Handler struct {
	Store     *database.Store
	Auth      *auth.Manager
	Scheduler *scheduler.Scheduler
	Limiter   *cache.Limiter
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	// Origins allowed to call the API from a browser
	Origins []string
}

const (
	ctxAPIKey    = "apiKey"
	ctxWorkspace = "workspace"
	ctxUsername  = "username"
)

func workspace(c *gin.Context) string {
	return c.GetString(ctxWorkspace)
}

// bindOptional binds a JSON body that may be left out entirely
func bindOptional(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) serverError(c *gin.Context, msg string, err error) {
	h.Logger.Error(msg,
		zap.Error(err),
		zap.String("workspace", workspace(c)),
		zap.String("request_id", c.GetString(requestIDKey)),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// storeError maps storage errors to responses
func (h *Handler) storeError(c *gin.Context, what string, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	h.serverError(c, "Could not access "+what, err)
}

func (h *Handler) rotationFailed(c *gin.Context, err error) {
	var missing *scheduler.MissingListError
	if errors.As(err, &missing) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         err.Error(),
			"missing_lists": missing.Keys,
		})
		return
	}
	h.serverError(c, "Rotation failed", err)
}

func (h *Handler) rotateResponse(res *scheduler.Result) models.RotateResponse {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []models.Warning{}
	}
	return models.RotateResponse{
		Weeks:           res.Weeks,
		RotationIndices: res.Cursors,
		Warnings:        warnings,
		FairnessScore:   res.FairnessScore,
		Violations:      h.Scheduler.Audit(res.Weeks),
	}
}

// Rotate handles the stateless rotation request
func (h *Handler) Rotate(c *gin.Context) {
	var input models.RotateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Scheduler.Rotate(scheduler.Input{
		Weeks:   input.Weeks,
		Lists:   input.ParticipantLists,
		History: input.History,
		Cursors: input.RotationIndices,
	})
	h.Metrics.ObserveRotation(res, err)
	if err != nil {
		h.rotationFailed(c, err)
		return
	}

	h.RecordUsage(c, len(res.Weeks), len(res.Decisions))
	c.JSON(http.StatusOK, h.rotateResponse(res))
}

// RecordUsage adds one request to the daily usage row of the calling key
func (h *Handler) RecordUsage(c *gin.Context, weeks, slots int) {
	apiKeyRaw, exists := c.Get(ctxAPIKey)
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	if err := h.Store.RecordUsage(c.Request.Context(), apiKey.ID, weeks, slots); err != nil {
		h.Logger.Warn("record usage failed", zap.Uint("key_id", apiKey.ID), zap.Error(err))
	}
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Store.FindUser(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Auth.CreateToken(user.Username)
	if err != nil {
		h.serverError(c, "Could not create token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey issues a workspace API key
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	key, err := h.Auth.GenerateKey(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	apiKey, err := h.Store.CreateKey(c.Request.Context(), key, req.Name, req.RateLimit)
	if err != nil {
		h.serverError(c, "Could not create key record", err)
		return
	}

	h.Logger.Info("api key issued",
		zap.String("workspace", req.Name),
		zap.String("admin", c.GetString(ctxUsername)),
	)
	c.JSON(http.StatusOK, gin.H{
		"id":   apiKey.ID,
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.Store.ListKeys(c.Request.Context())
	if err != nil {
		h.serverError(c, "Could not list keys", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func keyID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key id"})
		return 0, false
	}
	return uint(id), true
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id, ok := keyID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteKey(c.Request.Context(), id); err != nil {
		h.storeError(c, "key", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id, ok := keyID(c)
	if !ok {
		return
	}
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	if err := h.Store.UpdateKeyLimit(c.Request.Context(), id, req.RateLimit); err != nil {
		h.storeError(c, "key", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
