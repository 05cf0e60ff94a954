package services

import (
	"errors"
	"fmt"
	"log"

	model "github.com/homeward-labs/docgate/models"
	"gorm.io/gorm"
)

// AddDocumentDefinition stores one base requirement template entry.
func (s *DocumentService) AddDocumentDefinition(def *model.DocumentDefinition) error {
	if def.DocumentType == "" || def.DocumentName == "" {
		return fmt.Errorf("%w: documentType and documentName are required", ErrValidation)
	}
	cond, err := def.ParsedCondition()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if cond.IsCompound() && cond.QuestionKey != "" {
		return fmt.Errorf("%w: condition node mixes all/any with a questionKey predicate", ErrValidation)
	}
	if err := s.db.Create(def).Error; err != nil {
		log.Printf("[AddDocumentDefinition] Error saving definition: %v", err)
		return err
	}
	log.Printf("[AddDocumentDefinition] Definition %s added for phase %s", def.DocumentType, def.PhaseID)
	return nil
}

// GetPhaseDefinitions returns the base requirement template of a phase in
// display order.
func (s *DocumentService) GetPhaseDefinitions(phaseID string) ([]model.DocumentDefinition, error) {
	var defs []model.DocumentDefinition
	if err := s.db.Where("phase_id = ?", phaseID).
		Order("display_order ASC, created_at ASC").Find(&defs).Error; err != nil {
		log.Printf("[GetPhaseDefinitions] Error fetching definitions: %v", err)
		return nil, err
	}
	return defs, nil
}

// UpsertOverlay creates or updates an overlay by its natural key
// (organization, phase, document type). The natural key never changes on
// update; modifier, priority, and field overrides do.
func (s *DocumentService) UpsertOverlay(ov *model.OrganizationOverlay) error {
	switch ov.Modifier {
	case model.ModifierRequired, model.ModifierOptional, model.ModifierNotRequired, model.ModifierStricter:
	default:
		return fmt.Errorf("%w: unknown modifier %q", ErrValidation, ov.Modifier)
	}
	if ov.OrganizationID == "" || ov.PhaseID == "" || ov.DocumentType == "" {
		return fmt.Errorf("%w: organizationId, phaseId and documentType are required", ErrValidation)
	}

	var existing model.OrganizationOverlay
	err := s.db.Where("organization_id = ? AND phase_id = ? AND document_type = ?",
		ov.OrganizationID, ov.PhaseID, ov.DocumentType).First(&existing).Error
	switch {
	case err == nil:
		ov.ID = existing.ID
		ov.CreatedAt = existing.CreatedAt
		if err := s.db.Save(ov).Error; err != nil {
			log.Printf("[UpsertOverlay] Error updating overlay %s: %v", existing.ID, err)
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(ov).Error; err != nil {
			log.Printf("[UpsertOverlay] Error creating overlay: %v", err)
			return err
		}
	default:
		return err
	}

	log.Printf("[UpsertOverlay] Overlay %s/%s on phase %s set to %s (priority %d)",
		ov.OrganizationID, ov.DocumentType, ov.PhaseID, ov.Modifier, ov.Priority)
	return nil
}

// GetOverlays returns an organization's overlays for a phase.
func (s *DocumentService) GetOverlays(phaseID, organizationID string) ([]model.OrganizationOverlay, error) {
	var overlays []model.OrganizationOverlay
	if err := s.db.Where("phase_id = ? AND organization_id = ?", phaseID, organizationID).
		Order("priority DESC, created_at DESC").Find(&overlays).Error; err != nil {
		log.Printf("[GetOverlays] Error fetching overlays: %v", err)
		return nil, err
	}
	return overlays, nil
}

// ResolveEffectiveRequirements fetches the phase template and the
// organization's overlays and merges them. Misconfigured overlays are logged
// and skipped; ValidateOverlayConfig reports them to the policy owner.
func (s *DocumentService) ResolveEffectiveRequirements(phaseID, organizationID string) ([]model.EffectiveRequirement, error) {
	defs, err := s.GetPhaseDefinitions(phaseID)
	if err != nil {
		return nil, err
	}
	overlays, err := s.GetOverlays(phaseID, organizationID)
	if err != nil {
		return nil, err
	}
	if err := ValidateOverlays(defs, overlays); err != nil {
		log.Printf("[ResolveEffectiveRequirements] %v", err)
	}
	return ResolveRequirements(defs, overlays), nil
}

// ApplicableRequirements resolves the effective requirements for one
// applicant: the base template is first narrowed by the questionnaire
// conditions, then merged with the organization overlays.
func (s *DocumentService) ApplicableRequirements(phaseID, organizationID string, answers map[string]interface{}) ([]model.EffectiveRequirement, error) {
	defs, err := s.GetPhaseDefinitions(phaseID)
	if err != nil {
		return nil, err
	}
	defs = FilterDefinitionsByCondition(defs, answers)

	overlays, err := s.GetOverlays(phaseID, organizationID)
	if err != nil {
		return nil, err
	}
	return ResolveRequirements(defs, overlays), nil
}

// ValidateOverlayConfig surfaces overlay configuration problems for a phase
// and organization as an ErrConfiguration.
func (s *DocumentService) ValidateOverlayConfig(phaseID, organizationID string) error {
	defs, err := s.GetPhaseDefinitions(phaseID)
	if err != nil {
		return err
	}
	overlays, err := s.GetOverlays(phaseID, organizationID)
	if err != nil {
		return err
	}
	return ValidateOverlays(defs, overlays)
}
