package controller

import (
	"errors"
	"net/http"
	"strconv"

	service "github.com/homeward-labs/docgate/service"

	"github.com/gin-gonic/gin"
)

// DocumentController manages HTTP requests for uploads, requirements, and
// reviews.
type DocumentController struct {
	service *service.DocumentService
}

// NewDocumentController initializes the controller with the service.
func NewDocumentController(service *service.DocumentService) *DocumentController {
	return &DocumentController{service}
}

// statusFor maps the service error taxonomy onto HTTP statuses so callers
// can tell invalid requests, blocked business rules, missing records, and
// policy misconfiguration apart.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrConfiguration):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func intQuery(ctx *gin.Context, key string) (int, error) {
	return strconv.Atoi(ctx.Query(key))
}

// UploadDocument handles the file upload request.
func (c *DocumentController) UploadDocument(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get file from request"})
		return
	}
	defer file.Close()

	meta := service.UploadMeta{
		TenantID:     ctx.PostForm("tenantId"),
		PhaseID:      ctx.PostForm("phaseId"),
		DocumentType: ctx.PostForm("documentType"),
		UploadedBy:   ctx.PostForm("uploadedBy"),
		Title:        ctx.PostForm("title"),
	}

	doc, err := c.service.UploadDocument(file, header, meta)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// ReuploadDocument replaces a document after changes were requested and
// rebuilds its review chain.
func (c *DocumentController) ReuploadDocument(ctx *gin.Context) {
	documentID := ctx.Param("id")
	if documentID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Document ID required"})
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get file from request"})
		return
	}
	defer file.Close()

	doc, err := c.service.ReuploadDocument(documentID, file, header)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Document re-uploaded successfully",
		"document": doc,
	})
}

// GetAllDocuments retrieves documents for the operations dashboard.
func (c *DocumentController) GetAllDocuments(ctx *gin.Context) {
	docs, err := c.service.GetAllDocuments(ctx.Query("tenantId"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve documents",
			"details": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     len(docs),
	})
}

// SearchDocuments searches indexed documents.
func (c *DocumentController) SearchDocuments(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	results, err := c.service.SearchDocuments(query)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Search completed successfully",
		"results": results,
	})
}
