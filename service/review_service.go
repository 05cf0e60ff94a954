package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	model "github.com/homeward-labs/docgate/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CanReviewResult reports whether a party may submit its review now, with a
// human-readable reason when it may not. Gating denials are expected
// user-facing outcomes, not errors.
type CanReviewResult struct {
	CanReview bool   `json:"canReview"`
	Reason    string `json:"reason,omitempty"`
}

// SubmitReviewInput carries one party's decision on a document.
type SubmitReviewInput struct {
	DocumentID     string   `json:"documentId" binding:"required"`
	PartyKey       string   `json:"partyKey" binding:"required"`
	OrganizationID *string  `json:"organizationId,omitempty"`
	Decision       string   `json:"decision" binding:"required"`
	Comments       string   `json:"comments,omitempty"`
	Concerns       []string `json:"concerns,omitempty"`
}

// SubmitReviewResult is the structured outcome of a submission attempt.
// Success is false when a business rule blocked the action; Error then
// carries the reason.
type SubmitReviewResult struct {
	Success bool                  `json:"success"`
	Review  *model.DocumentReview `json:"review,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// ReviewSummary aggregates a document's review records.
type ReviewSummary struct {
	DocumentID     string                 `json:"documentId"`
	DocumentStatus string                 `json:"documentStatus"`
	Total          int                    `json:"total"`
	Pending        int                    `json:"pending"`
	Approved       int                    `json:"approved"`
	Rejected       int                    `json:"rejected"`
	ChangesNeeded  int                    `json:"changesRequested"`
	Waived         int                    `json:"waived"`
	Reviews        []model.DocumentReview `json:"reviews"`
}

// CreateReviewsForDocument creates one pending review record per required
// party. With SEQUENTIAL ordering records get 1-based positions in input
// order; with PARALLEL all records get order 0 and gate independently.
// Creating a second record for a (document, party, organization) that
// already has one without an intervening re-upload is a conflict.
func (s *DocumentService) CreateReviewsForDocument(documentID string, requirements []model.ReviewRequirement, order string) ([]model.DocumentReview, error) {
	if order != model.ReviewOrderSequential && order != model.ReviewOrderParallel {
		return nil, fmt.Errorf("%w: unknown review order %q", ErrValidation, order)
	}

	if _, err := s.GetDocument(documentID); err != nil {
		return nil, err
	}

	records := buildReviewRecords(documentID, requirements, order, time.Now())
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no required reviewing parties", ErrValidation)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing []model.DocumentReview
		if err := tx.Where("document_id = ?", documentID).Find(&existing).Error; err != nil {
			return err
		}
		for _, rec := range records {
			for _, prior := range existing {
				if sameParty(prior, rec.PartyKey, rec.OrganizationID) {
					return fmt.Errorf("%w: review for party %s already exists on document %s", ErrConflict, rec.PartyKey, documentID)
				}
			}
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		log.Printf("[CreateReviewsForDocument] Error creating reviews for %s: %v", documentID, err)
		return nil, err
	}

	log.Printf("[CreateReviewsForDocument] Created %d %s reviews for document %s", len(records), order, documentID)
	return records, nil
}

// CanReview checks whether the party's review record is pending and, for
// sequential chains, whether every earlier-ordered record has been decided.
func (s *DocumentService) CanReview(documentID, partyKey string, organizationID *string) (CanReviewResult, error) {
	reviews, err := s.reviewsForDocument(s.db, documentID)
	if err != nil {
		return CanReviewResult{}, err
	}
	return canReviewRecords(reviews, partyKey, organizationID), nil
}

// SubmitReview records one party's decision. The gating check and the write
// run inside one transaction so two reviewers cannot race past the
// sequential gate. Denials come back as a structured result, not an error.
func (s *DocumentService) SubmitReview(input SubmitReviewInput, reviewerID, reviewerName string) (*SubmitReviewResult, error) {
	switch input.Decision {
	case model.DecisionApproved, model.DecisionRejected, model.DecisionChangesRequested:
	default:
		return nil, fmt.Errorf("%w: invalid decision %q", ErrValidation, input.Decision)
	}

	var result SubmitReviewResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reviews, err := s.reviewsForDocument(tx, input.DocumentID)
		if err != nil {
			return err
		}

		gate := canReviewRecords(reviews, input.PartyKey, input.OrganizationID)
		if !gate.CanReview {
			result = SubmitReviewResult{Success: false, Error: gate.Reason}
			return nil
		}

		review := findReview(reviews, input.PartyKey, input.OrganizationID)

		now := time.Now()
		review.Decision = input.Decision
		review.Comments = input.Comments
		review.ReviewerID = reviewerID
		review.ReviewerName = reviewerName
		review.ReviewedAt = &now
		if len(input.Concerns) > 0 {
			raw, err := json.Marshal(input.Concerns)
			if err != nil {
				return fmt.Errorf("failed to marshal concerns: %w", err)
			}
			review.Concerns = datatypes.JSON(raw)
		}

		if err := tx.Save(review).Error; err != nil {
			return err
		}

		if err := s.applyDocumentStatus(tx, input.DocumentID); err != nil {
			return err
		}

		result = SubmitReviewResult{Success: true, Review: review}
		return nil
	})
	if err != nil {
		log.Printf("[SubmitReview] Error submitting review for %s/%s: %v", input.DocumentID, input.PartyKey, err)
		return nil, err
	}
	return &result, nil
}

// WaiveReview is the administrative override: it satisfies a pending review
// requirement without a review happening, recording who waived and why.
// Waivers bypass sequential gating but never overwrite a decided record.
func (s *DocumentService) WaiveReview(documentID, partyKey string, organizationID *string, waiverID, reason string) (*model.DocumentReview, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: a waiver reason is required", ErrValidation)
	}

	var waived *model.DocumentReview
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reviews, err := s.reviewsForDocument(tx, documentID)
		if err != nil {
			return err
		}
		review := findReview(reviews, partyKey, organizationID)
		if review == nil {
			return fmt.Errorf("%w: no review requested from party %s on document %s", ErrNotFound, partyKey, documentID)
		}
		if review.IsTerminal() {
			return fmt.Errorf("%w: review for party %s is already %s", ErrConflict, partyKey, review.Decision)
		}

		now := time.Now()
		review.Decision = model.DecisionWaived
		review.Comments = reason
		review.ReviewerID = waiverID
		review.ReviewedAt = &now
		if err := tx.Save(review).Error; err != nil {
			return err
		}

		waived = review
		return s.applyDocumentStatus(tx, documentID)
	})
	if err != nil {
		log.Printf("[WaiveReview] Error waiving review for %s/%s: %v", documentID, partyKey, err)
		return nil, err
	}

	log.Printf("[WaiveReview] Review %s waived by %s: %s", waived.ID, waiverID, reason)
	return waived, nil
}

// RecomputeDocumentStatus recomputes and persists the aggregate status from
// the document's current review set.
func (s *DocumentService) RecomputeDocumentStatus(documentID string) (string, error) {
	var status string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		status, err = s.recomputeStatus(tx, documentID)
		return err
	})
	return status, err
}

// CreateReviewsForReupload rebuilds the review set for a re-uploaded
// document: one fresh pending record per original record, same party and
// order, each linked to its predecessor via ParentReviewID. The original
// records stay untouched for audit.
func (s *DocumentService) CreateReviewsForReupload(newDocumentID, originalDocumentID string) ([]model.DocumentReview, error) {
	originals, err := s.reviewsForDocument(s.db, originalDocumentID)
	if err != nil {
		return nil, err
	}
	if len(originals) == 0 {
		return nil, fmt.Errorf("%w: document %s has no reviews to rebuild", ErrNotFound, originalDocumentID)
	}

	now := time.Now()
	records := make([]model.DocumentReview, len(originals))
	for i, orig := range originals {
		parentID := orig.ID
		records[i] = model.DocumentReview{
			DocumentID:     newDocumentID,
			PartyKey:       orig.PartyKey,
			OrganizationID: orig.OrganizationID,
			Decision:       model.DecisionPending,
			ReviewOrder:    orig.ReviewOrder,
			RequestedAt:    now,
			ParentReviewID: &parentID,
		}
	}

	if err := s.db.Create(&records).Error; err != nil {
		log.Printf("[CreateReviewsForReupload] Error creating reviews for %s: %v", newDocumentID, err)
		return nil, err
	}

	log.Printf("[CreateReviewsForReupload] Rebuilt %d reviews from %s onto %s", len(records), originalDocumentID, newDocumentID)
	return records, nil
}

// GetReviewSummary returns per-decision counts and the full review detail
// for one document.
func (s *DocumentService) GetReviewSummary(documentID string) (*ReviewSummary, error) {
	doc, err := s.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewsForDocument(s.db, documentID)
	if err != nil {
		return nil, err
	}

	summary := &ReviewSummary{
		DocumentID:     documentID,
		DocumentStatus: doc.Status,
		Total:          len(reviews),
		Reviews:        reviews,
	}
	for _, r := range reviews {
		switch r.Decision {
		case model.DecisionPending:
			summary.Pending++
		case model.DecisionApproved:
			summary.Approved++
		case model.DecisionRejected:
			summary.Rejected++
		case model.DecisionChangesRequested:
			summary.ChangesNeeded++
		case model.DecisionWaived:
			summary.Waived++
		}
	}
	return summary, nil
}

// PendingReviewFilters narrows and pages the pending-review worklist.
type PendingReviewFilters struct {
	PhaseID      string
	DocumentType string
	Page         int
	PageSize     int
}

// PendingReviewItem is one actionable entry in a party's worklist.
type PendingReviewItem struct {
	Document model.Document       `json:"document"`
	Review   model.DocumentReview `json:"review"`
}

// PendingReviewPage is a paged worklist response.
type PendingReviewPage struct {
	Items    []PendingReviewItem `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

// GetDocumentsPendingReview lists the documents on which the party can act
// right now: its review is pending and not blocked by the sequential gate.
func (s *DocumentService) GetDocumentsPendingReview(tenantID, partyKey string, filters PendingReviewFilters) (*PendingReviewPage, error) {
	var pending []model.DocumentReview
	if err := s.db.Where("party_key = ? AND decision = ?", partyKey, model.DecisionPending).
		Order("requested_at ASC").Find(&pending).Error; err != nil {
		return nil, err
	}

	var items []PendingReviewItem
	for _, review := range pending {
		var doc model.Document
		if err := s.db.First(&doc, "id = ?", review.DocumentID).Error; err != nil {
			log.Printf("[GetDocumentsPendingReview] Missing document %s for review %s: %v", review.DocumentID, review.ID, err)
			continue
		}
		if tenantID != "" && doc.TenantID != tenantID {
			continue
		}
		if filters.PhaseID != "" && doc.PhaseID != filters.PhaseID {
			continue
		}
		if filters.DocumentType != "" && doc.DocumentType != filters.DocumentType {
			continue
		}

		reviews, err := s.reviewsForDocument(s.db, review.DocumentID)
		if err != nil {
			return nil, err
		}
		if gate := canReviewRecords(reviews, review.PartyKey, review.OrganizationID); !gate.CanReview {
			continue
		}
		items = append(items, PendingReviewItem{Document: doc, Review: review})
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	size := filters.PageSize
	if size < 1 {
		size = 20
	}
	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return &PendingReviewPage{
		Items:    items[start:end],
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}

// --- internals ---

func (s *DocumentService) reviewsForDocument(tx *gorm.DB, documentID string) ([]model.DocumentReview, error) {
	var reviews []model.DocumentReview
	if err := tx.Where("document_id = ?", documentID).
		Order("review_order ASC, requested_at ASC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// recomputeStatus derives the aggregate status from the review set and
// persists it on the document.
func (s *DocumentService) recomputeStatus(tx *gorm.DB, documentID string) (string, error) {
	reviews, err := s.reviewsForDocument(tx, documentID)
	if err != nil {
		return "", err
	}
	status := computeDocumentStatus(reviews)
	if err := tx.Model(&model.Document{}).Where("id = ?", documentID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error; err != nil {
		return "", err
	}
	return status, nil
}

func (s *DocumentService) applyDocumentStatus(tx *gorm.DB, documentID string) error {
	status, err := s.recomputeStatus(tx, documentID)
	if err != nil {
		return err
	}
	log.Printf("[applyDocumentStatus] Document %s status is now %s", documentID, status)
	return nil
}

// buildReviewRecords constructs the pending records for the required
// parties. Sequential positions are 1-based over the required parties in
// input order.
func buildReviewRecords(documentID string, requirements []model.ReviewRequirement, order string, now time.Time) []model.DocumentReview {
	var records []model.DocumentReview
	seq := 0
	for _, req := range requirements {
		if !req.Required {
			continue
		}
		reviewOrder := 0
		if order == model.ReviewOrderSequential {
			seq++
			reviewOrder = seq
		}
		records = append(records, model.DocumentReview{
			DocumentID:     documentID,
			PartyKey:       req.PartyKey,
			OrganizationID: req.OrganizationID,
			Decision:       model.DecisionPending,
			ReviewOrder:    reviewOrder,
			RequestedAt:    now,
		})
	}
	return records
}

// canReviewRecords applies the gating rules: the record must exist and be
// pending, and in a sequential chain every lower-ordered record must already
// be decided. Records with order 0 are never blocked by order.
func canReviewRecords(reviews []model.DocumentReview, partyKey string, organizationID *string) CanReviewResult {
	review := findReview(reviews, partyKey, organizationID)
	if review == nil {
		return CanReviewResult{CanReview: false, Reason: fmt.Sprintf("No review requested from party %s", partyKey)}
	}
	if review.IsTerminal() {
		return CanReviewResult{CanReview: false, Reason: fmt.Sprintf("Review already %s", review.Decision)}
	}
	if review.ReviewOrder > 0 {
		for _, other := range reviews {
			if other.ReviewOrder > 0 && other.ReviewOrder < review.ReviewOrder && other.Decision == model.DecisionPending {
				return CanReviewResult{CanReview: false, Reason: fmt.Sprintf("Waiting for %s review", other.PartyKey)}
			}
		}
	}
	return CanReviewResult{CanReview: true}
}

// findReview locates the party's record. A nil organization matches the
// first record for the party; a set organization must match exactly.
func findReview(reviews []model.DocumentReview, partyKey string, organizationID *string) *model.DocumentReview {
	for i := range reviews {
		if sameParty(reviews[i], partyKey, organizationID) {
			return &reviews[i]
		}
	}
	return nil
}

func sameParty(r model.DocumentReview, partyKey string, organizationID *string) bool {
	if r.PartyKey != partyKey {
		return false
	}
	if organizationID == nil {
		return true
	}
	return r.OrganizationID != nil && *r.OrganizationID == *organizationID
}

// computeDocumentStatus folds the review set into one aggregate status.
// Precedence, in order: any rejection rejects the document; otherwise any
// changes-requested sends it back for re-upload; otherwise a fully decided
// set (approved or waived) approves it; otherwise reviews are outstanding.
func computeDocumentStatus(reviews []model.DocumentReview) string {
	if len(reviews) == 0 {
		return model.DocumentStatusPendingReview
	}

	allSettled := true
	changesRequested := false
	for _, r := range reviews {
		switch r.Decision {
		case model.DecisionRejected:
			return model.DocumentStatusRejected
		case model.DecisionChangesRequested:
			changesRequested = true
		case model.DecisionApproved, model.DecisionWaived:
		default:
			allSettled = false
		}
	}
	if changesRequested {
		return model.DocumentStatusNeedsReupload
	}
	if allSettled {
		return model.DocumentStatusApproved
	}
	return model.DocumentStatusPendingReview
}
