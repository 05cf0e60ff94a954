package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationType is the tenant-scoped directory entry mapping a stable
// code (e.g. "BANK", "BROKER") to an identifier.
type OrganizationType struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID string `gorm:"type:uuid;not null;index:idx_org_type_code,unique" json:"tenantId"`
	Code     string `gorm:"not null;index:idx_org_type_code,unique" json:"code"`
	Name     string `json:"name"`

	CreatedAt time.Time `json:"createdAt"`
}

func (o *OrganizationType) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
