package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Overlay modifiers. Exactly one winning overlay applies per document type
// per organization.
const (
	ModifierRequired    = "REQUIRED"
	ModifierOptional    = "OPTIONAL"
	ModifierNotRequired = "NOT_REQUIRED"
	ModifierStricter    = "STRICTER"
)

// OrganizationOverlay is a per-partner override of a base document
// requirement, keyed by (organization, phase, document type). Field override
// pointers are nil when the base value should stand.
type OrganizationOverlay struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	OrganizationID string `gorm:"type:uuid;not null;index:idx_overlay_natural,unique" json:"organizationId"`
	PhaseID        string `gorm:"type:uuid;not null;index:idx_overlay_natural,unique" json:"phaseId"`
	DocumentType   string `gorm:"not null;index:idx_overlay_natural,unique" json:"documentType"`

	// Modifier is one of REQUIRED, OPTIONAL, NOT_REQUIRED, STRICTER.
	Modifier string `gorm:"not null" json:"modifier"`

	// Priority decides which overlay wins when several target the same
	// document type; higher wins, most recently created breaks ties.
	Priority int `gorm:"not null;default:0" json:"priority"`

	MinFiles         *int           `json:"minFiles,omitempty"`
	MaxFiles         *int           `json:"maxFiles,omitempty"`
	ExpiryDays       *int           `json:"expiryDays,omitempty"`
	AllowedMimeTypes datatypes.JSON `json:"allowedMimeTypes,omitempty"`
	Description      string         `json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o *OrganizationOverlay) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
