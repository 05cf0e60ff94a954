package services

import (
	"errors"
	"fmt"
	"log"

	model "github.com/homeward-labs/docgate/models"
	"gorm.io/gorm"
)

// ResolveOrganizationTypeID maps a tenant-scoped organization type code
// (e.g. "BANK") to its identifier.
func (s *DocumentService) ResolveOrganizationTypeID(tenantID, code string) (string, error) {
	var orgType model.OrganizationType
	err := s.db.Where("tenant_id = ? AND code = ?", tenantID, code).First(&orgType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: organization type %s for tenant %s", ErrNotFound, code, tenantID)
		}
		log.Printf("[ResolveOrganizationTypeID] Error fetching organization type: %v", err)
		return "", err
	}
	return orgType.ID, nil
}

// AddOrganizationType registers a tenant-scoped organization type code.
func (s *DocumentService) AddOrganizationType(orgType *model.OrganizationType) error {
	if orgType.TenantID == "" || orgType.Code == "" {
		return fmt.Errorf("%w: tenantId and code are required", ErrValidation)
	}
	if err := s.db.Create(orgType).Error; err != nil {
		log.Printf("[AddOrganizationType] Error saving organization type: %v", err)
		return err
	}
	return nil
}
