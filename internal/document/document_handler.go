package document

import (
	"encoding/base64"
	"errors"
	"net/http"

	"go-payledger/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type UploadDocumentRequest struct {
	FileName string `json:"file_name" binding:"required"`
	MimeType string `json:"mime_type" binding:"required"`
	Data     string `json:"data" binding:"required"`
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Upload(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "File data must be base64 encoded", nil)
		return
	}

	stored, err := h.store.Upload(c.Request.Context(), companyID, data, req.FileName, req.MimeType)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrUnsupported), errors.Is(err, ErrTooLarge):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			response.FromError(c, err)
		}
		return
	}

	response.Success(c, http.StatusCreated, stored)
}

func (h *Handler) Download(c *gin.Context) {
	companyID := c.GetString("company_id")
	id := c.Param("documentID")

	doc, err := h.store.Fetch(c.Request.Context(), companyID, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+doc.Name+`"`)
	c.Data(http.StatusOK, doc.MIME, doc.Data)
}
