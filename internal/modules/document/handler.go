package document

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"veriflow/internal/domain"
	"veriflow/internal/modules/storage"
	"veriflow/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/documents")
	{
		g.POST("", h.Register)
		g.GET("", h.GetOwn)
		g.GET("/archive", h.DownloadOwnArchive)
		g.POST("/:category", h.Upload)
		g.DELETE("/entry", h.DeleteEntry)
	}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/documents")
	{
		g.GET("", h.List)
		g.GET("/statistics", h.Statistics)
	}

	users := admin.Group("/users/:id/documents")
	{
		users.GET("", h.GetForUser)
		users.GET("/archive", h.DownloadUserArchive)
		users.POST("/verify", h.VerifyEntry)
		users.POST("/reject", h.RejectEntry)
		users.POST("/link", h.LinkVerification)
	}
}

func (h *Handler) Register(c *gin.Context) {
	userID := c.GetInt64("user_id")

	rec, err := h.service.RegisterOrGet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "REGISTER_FAILED", "Failed to register document record")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) GetOwn(c *gin.Context) {
	userID := c.GetInt64("user_id")

	rec, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No document record yet")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get document record")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) Upload(c *gin.Context) {
	userID := c.GetInt64("user_id")
	category := domain.DocumentCategory(c.Param("category"))

	var meta UploadMetadata
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "document_type is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "A file upload is required")
		return
	}

	rec, err := h.service.AddDocument(c.Request.Context(), userID, category, meta, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCategory):
			response.Error(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown document category")
		case errors.Is(err, ErrInvalidDocumentType):
			response.Error(c, http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "Document type not allowed for this category")
		case errors.Is(err, storage.ErrFileTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the maximum allowed size")
		case errors.Is(err, storage.ErrInvalidMimeType):
			response.Error(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "File type is not allowed")
		case errors.Is(err, storage.ErrEmptyFile):
			response.Error(c, http.StatusBadRequest, "EMPTY_FILE", "File is empty")
		default:
			response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload document")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"record": rec})
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req DeleteEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "category and entry_id are required")
		return
	}

	rec, err := h.service.DeleteEntry(c.Request.Context(), userID, req)
	if err != nil {
		h.writeEntryError(c, err, "DELETE_FAILED", "Failed to delete document")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) DownloadOwnArchive(c *gin.Context) {
	h.writeArchive(c, c.GetInt64("user_id"))
}

func (h *Handler) DownloadUserArchive(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}
	h.writeArchive(c, userID)
}

func (h *Handler) writeArchive(c *gin.Context, userID int64) {
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="documents_%d.zip"`, userID))

	if err := h.service.WriteArchive(c.Request.Context(), userID, c.Writer); err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No document record yet")
		case errors.Is(err, ErrNothingToArchive):
			response.Error(c, http.StatusNotFound, "NO_DOCUMENTS", "No documents to download")
		default:
			// Headers may already be written; abort the stream.
			c.Abort()
		}
	}
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
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list document records")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"records": recs,
		"total":   total,
	})
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to compute statistics")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"by_status": stats})
}

func (h *Handler) GetForUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	rec, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No document record for this user")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get document record")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) VerifyEntry(c *gin.Context) {
	h.review(c, true)
}

func (h *Handler) RejectEntry(c *gin.Context) {
	h.review(c, false)
}

func (h *Handler) review(c *gin.Context, approve bool) {
	reviewerID := c.GetInt64("user_id")
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	var req ReviewEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "category and entry_id are required")
		return
	}

	var rec *domain.DocumentRecord
	if approve {
		rec, err = h.service.VerifyEntry(c.Request.Context(), reviewerID, userID, req)
	} else {
		rec, err = h.service.RejectEntry(c.Request.Context(), reviewerID, userID, req)
	}
	if err != nil {
		h.writeEntryError(c, err, "REVIEW_FAILED", "Failed to review document")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) LinkVerification(c *gin.Context) {
	actorID := c.GetInt64("user_id")
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	var req LinkVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "document_number is required")
		return
	}

	rec, err := h.service.LinkVerification(c.Request.Context(), actorID, userID, req.DocumentNumber)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LINK_FAILED", "Failed to link verification record")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) writeEntryError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "No document record yet")
	case errors.Is(err, ErrEntryNotFound):
		response.Error(c, http.StatusNotFound, "ENTRY_NOT_FOUND", "Document entry not found")
	case errors.Is(err, ErrInvalidCategory):
		response.Error(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown document category")
	default:
		response.Error(c, http.StatusInternalServerError, fallbackCode, fallbackMsg)
	}
}
