package models

// Sources of an effective requirement.
const (
	SourceBase    = "BASE"
	SourceOverlay = "OVERLAY"
)

// DefaultUploaderRole is assumed for bank-only requirements that have no
// base definition naming an uploader.
const DefaultUploaderRole = "APPLICANT"

// EffectiveRequirement is the resolved requirement for one document type
// after merging the base template with the winning organization overlay. It
// is computed, never persisted.
type EffectiveRequirement struct {
	DocumentType     string   `json:"documentType"`
	DocumentName     string   `json:"documentName"`
	UploadedBy       string   `json:"uploadedBy"`
	IsRequired       bool     `json:"isRequired"`
	MinFiles         int      `json:"minFiles"`
	MaxFiles         int      `json:"maxFiles"`
	ExpiryDays       *int     `json:"expiryDays,omitempty"`
	AllowedMimeTypes []string `json:"allowedMimeTypes,omitempty"`
	Description      string   `json:"description,omitempty"`

	// Source is BASE when no overlay applied, OVERLAY otherwise.
	Source string `json:"source"`

	// OrganizationID and Modifier identify the winning overlay when Source
	// is OVERLAY.
	OrganizationID string `json:"organizationId,omitempty"`
	Modifier       string `json:"modifier,omitempty"`
}
