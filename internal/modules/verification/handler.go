package verification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"veriflow/internal/modules/storage"
	"veriflow/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Document numbers contain a slash ("001/21-08-2026"), so they travel in
// request bodies and query params, never in path segments.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/verifications")
	{
		g.POST("", h.CreateOrMerge)
		g.GET("", h.List)
		g.GET("/record", h.GetByNumber)
		g.PATCH("/section", h.UpdateSection)
		g.POST("/documents", h.AttachDocument)
	}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/verifications")
	{
		g.PATCH("/status", h.UpdateStatus)
		g.DELETE("", h.Delete)
		g.GET("/statistics", h.Statistics)
	}
}

func (h *Handler) CreateOrMerge(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "verification_type is required")
		return
	}

	rec, created, err := h.service.CreateOrMerge(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType):
			response.Error(c, http.StatusBadRequest, "INVALID_TYPE", "Unknown verification type")
		case errors.Is(err, ErrInvalidDocumentNumber):
			response.Error(c, http.StatusBadRequest, "INVALID_DOCUMENT_NUMBER", "Document number format is NNN/DD-MM-YYYY")
		default:
			response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create verification record")
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{
		"record":  rec,
		"created": created,
	})
}

func (h *Handler) GetByNumber(c *gin.Context) {
	number := c.Query("document_number")
	if number == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "document_number query param is required")
		return
	}

	rec, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Verification record not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get verification record")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := c.Query("status")

	recs, total, err := h.service.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list verification records")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"records": recs,
		"total":   total,
	})
}

func (h *Handler) UpdateSection(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "document_number, verification_type, section and payload are required")
		return
	}

	rec, err := h.service.UpdateSection(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Verification record not found")
		case errors.Is(err, ErrInvalidType):
			response.Error(c, http.StatusBadRequest, "INVALID_TYPE", "Unknown verification type")
		case errors.Is(err, ErrTypeNotAttached):
			response.Error(c, http.StatusConflict, "TYPE_NOT_ATTACHED", "This verification type is not attached to the record")
		case errors.Is(err, ErrInvalidSection):
			response.Error(c, http.StatusBadRequest, "INVALID_SECTION", "Unknown form section for this verification type")
		case errors.Is(err, ErrInvalidPayload):
			response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update verification record")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "document_number, verification_type and status are required")
		return
	}

	rec, err := h.service.UpdateStatus(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Verification record not found")
		case errors.Is(err, ErrInvalidType):
			response.Error(c, http.StatusBadRequest, "INVALID_TYPE", "Unknown verification type")
		case errors.Is(err, ErrInvalidStatus):
			response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown verification status")
		case errors.Is(err, ErrTypeNotAttached):
			response.Error(c, http.StatusConflict, "TYPE_NOT_ATTACHED", "This verification type is not attached to the record")
		case errors.Is(err, ErrNotReviewable):
			response.Error(c, http.StatusConflict, "NOT_REVIEWABLE", "Record must be submitted before it can be reviewed")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update verification status")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) AttachDocument(c *gin.Context) {
	userID := c.GetInt64("user_id")

	number := c.PostForm("document_number")
	if number == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "document_number form field is required")
		return
	}

	var meta AttachDocumentMetadata
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "document_type is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "A file upload is required")
		return
	}

	rec, err := h.service.AttachDocument(c.Request.Context(), userID, number, meta, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Verification record not found")
		case errors.Is(err, storage.ErrFileTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the maximum allowed size")
		case errors.Is(err, storage.ErrInvalidMimeType):
			response.Error(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "File type is not allowed")
		case errors.Is(err, storage.ErrEmptyFile):
			response.Error(c, http.StatusBadRequest, "EMPTY_FILE", "File is empty")
		default:
			response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to attach document")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"record": rec})
}

func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "document_number is required")
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.DocumentNumber); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Verification record not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete verification record")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Verification record deleted"})
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to compute statistics")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"by_status": stats})
}
