package models

// ReviewRequirement is the policy input describing one party that must
// review a document. The slice order is the sequential order when the
// document's review policy is SEQUENTIAL.
type ReviewRequirement struct {
	PartyKey       string  `json:"partyKey" binding:"required"`
	Required       bool    `json:"required"`
	OrganizationID *string `json:"organizationId,omitempty"`
}
