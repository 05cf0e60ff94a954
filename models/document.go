package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document statuses. The status is always derived from the document's review
// records via status recomputation, never set independently.
const (
	DocumentStatusPendingReview = "pending_review"
	DocumentStatusNeedsReupload = "needs_reupload"
	DocumentStatusApproved      = "approved"
	DocumentStatusRejected      = "rejected"
)

// Document represents one uploaded file going through multi-party review.
type Document struct {
	// ID is a unique identifier for the document, stored as a UUID in the
	// database. In Elasticsearch, it's indexed as a keyword for exact matching.
	ID string `gorm:"type:uuid;primaryKey" json:"id" elastic:"type:keyword"`

	// TenantID scopes the document to one tenant.
	TenantID string `gorm:"type:uuid;index" json:"tenantId" elastic:"type:keyword"`

	// PhaseID is the onboarding phase the upload belongs to.
	PhaseID string `gorm:"type:uuid;index" json:"phaseId" elastic:"type:keyword"`

	// DocumentType links the upload to its requirement (base or overlay).
	DocumentType string `gorm:"not null;index" json:"documentType" elastic:"type:keyword"`

	// Title is the display name of the upload, indexed as text for search.
	Title string `json:"title" elastic:"type:text,analyzer:standard"`

	// FileType indicates the type of the file (e.g. "pdf", "jpeg"), indexed
	// as a keyword.
	FileType string `json:"fileType" elastic:"type:keyword"`

	// OriginalURL is the S3 URL where the original file is stored.
	OriginalURL string `json:"originalUrl" elastic:"type:keyword"`

	// UploadedBy is the role that provided the file.
	UploadedBy string `json:"uploadedBy" elastic:"type:keyword"`

	// Status is the aggregate review outcome, recomputed from the review
	// records on every decision.
	Status string `gorm:"not null;default:pending_review;index" json:"status" elastic:"type:keyword"`

	// PreviousDocumentID links a re-upload to the document it supersedes.
	PreviousDocumentID *string `gorm:"type:uuid" json:"previousDocumentId,omitempty" elastic:"type:keyword"`

	CreatedAt time.Time `json:"createdAt" elastic:"type:date"`
	UpdatedAt time.Time `json:"updatedAt" elastic:"type:date"`

	// SearchContent is a computed field for full-text search, combining
	// Title and DocumentType. It's not stored in the database (gorm:"-") but
	// is indexed in Elasticsearch.
	SearchContent string `gorm:"-" json:"-" elastic:"type:text,analyzer:standard"`
}

// BeforeCreate assigns a UUID row ID.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave is a GORM hook to populate SearchContent before indexing.
func (d *Document) BeforeSave(tx *gorm.DB) error {
	d.SearchContent = d.Title + " " + d.DocumentType
	return nil
}
