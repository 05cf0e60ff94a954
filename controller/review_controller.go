package controller

import (
	"log"
	"net/http"

	"github.com/homeward-labs/docgate/models"
	service "github.com/homeward-labs/docgate/service"

	"github.com/gin-gonic/gin"
)

// CreateReviews creates the pending review records for a document's
// required parties.
func (c *DocumentController) CreateReviews(ctx *gin.Context) {
	documentID := ctx.Param("id")
	if documentID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Document ID required"})
		return
	}

	var req struct {
		Requirements []models.ReviewRequirement `json:"requirements" binding:"required"`
		Order        string                     `json:"order" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviews, err := c.service.CreateReviewsForDocument(documentID, req.Requirements, req.Order)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Reviews created successfully",
		"reviews": reviews,
	})
}

// SubmitReview records one party's decision on a document. Gating denials
// come back as 409 with the human-readable reason.
func (c *DocumentController) SubmitReview(ctx *gin.Context) {
	var input service.SubmitReviewInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.DocumentID = ctx.Param("id")

	reviewerID := ctx.GetHeader("X-Reviewer-Id")
	reviewerName := ctx.GetHeader("X-Reviewer-Name")
	if reviewerID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "X-Reviewer-Id header required"})
		return
	}

	result, err := c.service.SubmitReview(input, reviewerID, reviewerName)
	if err != nil {
		log.Printf("[SubmitReview] Error submitting review: %v", err)
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if !result.Success {
		ctx.JSON(http.StatusConflict, result)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// CanReview reports whether a party may submit its review now.
func (c *DocumentController) CanReview(ctx *gin.Context) {
	documentID := ctx.Param("id")
	partyKey := ctx.Query("partyKey")
	if partyKey == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'partyKey' is required"})
		return
	}
	var organizationID *string
	if org := ctx.Query("organizationId"); org != "" {
		organizationID = &org
	}

	result, err := c.service.CanReview(documentID, partyKey, organizationID)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// WaiveReview applies an administrative waiver to a pending review.
func (c *DocumentController) WaiveReview(ctx *gin.Context) {
	documentID := ctx.Param("id")

	var req struct {
		PartyKey       string  `json:"partyKey" binding:"required"`
		OrganizationID *string `json:"organizationId,omitempty"`
		WaiverID       string  `json:"waiverId" binding:"required"`
		Reason         string  `json:"reason" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := c.service.WaiveReview(documentID, req.PartyKey, req.OrganizationID, req.WaiverID, req.Reason)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Review waived successfully",
		"review":  review,
	})
}

// GetReviewSummary returns per-decision counts and full review detail for a
// document.
func (c *DocumentController) GetReviewSummary(ctx *gin.Context) {
	summary, err := c.service.GetReviewSummary(ctx.Param("id"))
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// GetDocumentsPendingReview lists the documents a party can act on now.
func (c *DocumentController) GetDocumentsPendingReview(ctx *gin.Context) {
	partyKey := ctx.Query("partyKey")
	if partyKey == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'partyKey' is required"})
		return
	}

	var filters service.PendingReviewFilters
	filters.PhaseID = ctx.Query("phaseId")
	filters.DocumentType = ctx.Query("documentType")
	if page, err := intQuery(ctx, "page"); err == nil {
		filters.Page = page
	}
	if size, err := intQuery(ctx, "pageSize"); err == nil {
		filters.PageSize = size
	}

	pageResult, err := c.service.GetDocumentsPendingReview(ctx.Query("tenantId"), partyKey, filters)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, pageResult)
}

// ResolveOrganizationType maps a tenant-scoped organization type code to its
// identifier.
func (c *DocumentController) ResolveOrganizationType(ctx *gin.Context) {
	tenantID := ctx.Query("tenantId")
	code := ctx.Query("code")
	if tenantID == "" || code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query parameters 'tenantId' and 'code' are required"})
		return
	}

	id, err := c.service.ResolveOrganizationTypeID(tenantID, code)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"id": id})
}
