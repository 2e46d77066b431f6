package apikey

import (
	"errors"
	"net/http"
	"strconv"

	"clusterdeck/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages HTTP interactions for API keys.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	keys := protected.Group("/apikeys")
	{
		keys.POST("", h.Create)
		keys.GET("", h.List)
		keys.DELETE("/:id", h.Revoke)
	}
}

// Create issues a new API key. The response is the only place the full
// composite secret ever appears.
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	key, composite, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrInactiveUser) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Account is inactive")
			return
		}
		response.Error(c, http.StatusInternalServerError, "KEY_CREATE_FAILED", "Failed to create API key")
		return
	}

	response.Success(c, http.StatusCreated, CreatedKeyResponse{
		APIKey:    composite,
		ID:        key.ID,
		Name:      key.Name,
		CreatedAt: key.CreatedAt,
	})
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64("user_id")

	keys, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "KEY_LIST_FAILED", "Failed to list API keys")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"api_keys": keys})
}

func (h *Handler) Revoke(c *gin.Context) {
	userID := c.GetInt64("user_id")
	roles := c.GetStringSlice("roles")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid API key id")
		return
	}

	if err := h.service.Revoke(c.Request.Context(), id, userID, roles); err != nil {
		switch {
		case errors.Is(err, ErrKeyNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "API key not found")
		case errors.Is(err, ErrNotOwner):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this API key")
		default:
			response.Error(c, http.StatusInternalServerError, "KEY_REVOKE_FAILED", "Failed to revoke API key")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "API key revoked"})
}
