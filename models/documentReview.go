package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Review decisions. Every decision other than pending is terminal for the
// record; a rejected or changes-requested document is re-opened only by a
// re-upload creating a fresh review chain.
const (
	DecisionPending          = "pending"
	DecisionApproved         = "approved"
	DecisionRejected         = "rejected"
	DecisionChangesRequested = "changes_requested"
	DecisionWaived           = "waived"
)

// Review ordering policies for a document's reviewing parties.
const (
	ReviewOrderSequential = "SEQUENTIAL"
	ReviewOrderParallel   = "PARALLEL"
)

// DocumentReview is one party's review of one document. Records are created
// in bulk on upload (or re-upload), mutated exactly once when the decision is
// submitted or waived, and never deleted.
type DocumentReview struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	DocumentID string `gorm:"type:uuid;not null;index:idx_review_natural,unique" json:"documentId"`

	// PartyKey identifies the reviewing party (e.g. "CUSTOMER", "BANK").
	PartyKey string `gorm:"not null;index:idx_review_natural,unique" json:"partyKey"`

	// OrganizationID disambiguates reviews when the same party key reviews
	// on behalf of different organizations.
	OrganizationID *string `gorm:"type:uuid;index:idx_review_natural,unique" json:"organizationId,omitempty"`

	// Decision is pending until the party submits or an administrator waives.
	Decision string `gorm:"not null;default:pending;index" json:"decision"`

	// ReviewOrder is the 1-based position in a sequential chain, 0 when the
	// party reviews in parallel with everyone else.
	ReviewOrder int `gorm:"not null;default:0" json:"reviewOrder"`

	Comments string         `json:"comments,omitempty"`
	Concerns datatypes.JSON `json:"concerns,omitempty"`

	ReviewerID   string `json:"reviewerId,omitempty"`
	ReviewerName string `json:"reviewerName,omitempty"`

	RequestedAt time.Time  `json:"requestedAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`

	// ParentReviewID links a re-upload's fresh review back to the record it
	// supersedes, preserving the audit trail.
	ParentReviewID *string `gorm:"type:uuid" json:"parentReviewId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *DocumentReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsTerminal reports whether the record has received its one decision.
func (r *DocumentReview) IsTerminal() bool {
	return r.Decision != DecisionPending
}
