package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentDefinition is one entry of the base requirement template for an
// onboarding phase: which document type is expected, who uploads it, and the
// validation bounds applied to the upload.
type DocumentDefinition struct {
	// ID is a unique identifier for the definition, stored as a UUID.
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// PhaseID scopes the definition to one onboarding phase.
	PhaseID string `gorm:"type:uuid;index" json:"phaseId"`

	// DocumentType is the stable key (e.g. "ID_CARD", "PAYSLIP") that
	// overlays and uploads reference.
	DocumentType string `gorm:"not null;index" json:"documentType"`

	// DocumentName is the human-readable name shown to applicants.
	DocumentName string `gorm:"not null" json:"documentName"`

	// UploadedBy is the role expected to provide the file.
	UploadedBy string `json:"uploadedBy"`

	IsRequired bool `json:"isRequired"`
	MinFiles   int  `json:"minFiles"`
	MaxFiles   int  `json:"maxFiles"`

	// ExpiryDays, when set, bounds how old the document may be.
	ExpiryDays *int `json:"expiryDays,omitempty"`

	// AllowedMimeTypes is a JSON array of acceptable content types.
	AllowedMimeTypes datatypes.JSON `json:"allowedMimeTypes,omitempty"`

	// DisplayOrder fixes the position of the requirement in applicant-facing
	// checklists.
	DisplayOrder int `json:"displayOrder"`

	// Condition is an optional questionnaire condition tree (JSON). Absent
	// means the document is always in scope for the phase.
	Condition datatypes.JSON `json:"condition,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID so the model works on both postgres and the
// sqlite driver used in tests.
func (d *DocumentDefinition) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// ParsedCondition decodes the stored condition tree, nil when unset.
func (d *DocumentDefinition) ParsedCondition() (*Condition, error) {
	return ParseCondition(d.Condition)
}
