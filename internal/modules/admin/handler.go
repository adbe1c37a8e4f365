package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"veriflow/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	users := admin.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PATCH("/:id/kyc", h.DecideKYC)
		users.PATCH("/:id/role", h.UpdateRole)
		users.DELETE("/:id", h.DeleteUser)
	}
	admin.GET("/statistics", h.Statistics)
}

func (h *Handler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, total, err := h.service.ListUsers(c.Request.Context(), c.Query("role"), c.Query("kyc_status"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list users")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"users": users,
		"total": total,
	})
}

func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get user")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) DecideKYC(c *gin.Context) {
	adminID := c.GetInt64("user_id")
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	var req DecideKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "status is required")
		return
	}

	user, err := h.service.DecideKYC(c.Request.Context(), adminID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, ErrInvalidKYCStatus):
			response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown KYC status")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to apply KYC decision")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateRole(c *gin.Context) {
	adminID := c.GetInt64("user_id")
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "role is required")
		return
	}

	user, err := h.service.UpdateRole(c.Request.Context(), adminID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, ErrInvalidRole):
			response.Error(c, http.StatusBadRequest, "INVALID_ROLE", "Unknown role")
		case errors.Is(err, ErrSelfDemotion):
			response.Error(c, http.StatusForbidden, "SELF_DEMOTION", "You cannot change your own role")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update role")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	adminID := c.GetInt64("user_id")
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), adminID, userID); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, ErrSelfDemotion):
			response.Error(c, http.StatusForbidden, "SELF_DELETE", "You cannot delete your own account")
		default:
			response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete user")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.GetStatistics(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to compute statistics")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"statistics": stats})
}

func (h *Handler) pathUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return 0, false
	}
	return id, true
}
