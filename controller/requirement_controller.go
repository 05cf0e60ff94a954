package controller

import (
	"net/http"

	"github.com/homeward-labs/docgate/models"

	"github.com/gin-gonic/gin"
)

// AddDocumentDefinition registers a base requirement template entry.
func (c *DocumentController) AddDocumentDefinition(ctx *gin.Context) {
	var def models.DocumentDefinition
	if err := ctx.ShouldBindJSON(&def); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.service.AddDocumentDefinition(&def); err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, def)
}

// GetPhaseDefinitions lists the base requirement template of a phase.
func (c *DocumentController) GetPhaseDefinitions(ctx *gin.Context) {
	defs, err := c.service.GetPhaseDefinitions(ctx.Param("phaseId"))
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, defs)
}

// UpsertOverlay creates or updates an organization overlay by its natural
// key (organization, phase, document type).
func (c *DocumentController) UpsertOverlay(ctx *gin.Context) {
	var overlay models.OrganizationOverlay
	if err := ctx.ShouldBindJSON(&overlay); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.service.UpsertOverlay(&overlay); err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, overlay)
}

// GetEffectiveRequirements resolves the effective requirement list for a
// phase and organization.
func (c *DocumentController) GetEffectiveRequirements(ctx *gin.Context) {
	phaseID := ctx.Param("phaseId")
	organizationID := ctx.Query("organizationId")

	requirements, err := c.service.ResolveEffectiveRequirements(phaseID, organizationID)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"requirements": requirements,
		"total":        len(requirements),
	})
}

// GetApplicableRequirements resolves the effective requirements for one
// applicant, narrowing the template by questionnaire answers first.
func (c *DocumentController) GetApplicableRequirements(ctx *gin.Context) {
	phaseID := ctx.Param("phaseId")

	var req struct {
		OrganizationID string                 `json:"organizationId"`
		Answers        map[string]interface{} `json:"answers"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requirements, err := c.service.ApplicableRequirements(phaseID, req.OrganizationID, req.Answers)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"requirements": requirements,
		"total":        len(requirements),
	})
}

// ValidateOverlayConfig reports overlay misconfiguration for a phase and
// organization.
func (c *DocumentController) ValidateOverlayConfig(ctx *gin.Context) {
	phaseID := ctx.Param("phaseId")
	organizationID := ctx.Query("organizationId")

	if err := c.service.ValidateOverlayConfig(phaseID, organizationID); err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Overlay configuration is valid"})
}
