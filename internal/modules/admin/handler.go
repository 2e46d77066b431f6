package admin

import (
	"errors"
	"net/http"
	"strconv"

	"clusterdeck/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages the admin-only HTTP surface.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/audit", h.ListAudit)
	admin.POST("/users/:id/deactivate", h.DeactivateUser)
}

func (h *Handler) ListAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.service.ListAuditEntries(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "AUDIT_LIST_FAILED", "Failed to list audit entries")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	adminID := c.GetInt64("user_id")

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user id")
		return
	}

	if err := h.service.DeactivateUser(c.Request.Context(), adminID, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DEACTIVATE_FAILED", "Failed to deactivate user")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "User deactivated"})
}
