package services

import (
	"testing"

	"github.com/homeward-labs/docgate/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func seedPhaseTemplate(t *testing.T, s *DocumentService) {
	t.Helper()
	defs := []models.DocumentDefinition{
		{
			PhaseID:      "phase-1",
			DocumentType: "ID_CARD",
			DocumentName: "Identity card",
			UploadedBy:   "APPLICANT",
			IsRequired:   true,
			MinFiles:     1,
			MaxFiles:     2,
			DisplayOrder: 1,
		},
		{
			PhaseID:      "phase-1",
			DocumentType: "PAYSLIP",
			DocumentName: "Recent payslip",
			UploadedBy:   "APPLICANT",
			IsRequired:   true,
			MinFiles:     1,
			MaxFiles:     3,
			DisplayOrder: 2,
		},
		{
			PhaseID:      "phase-1",
			DocumentType: "PARTNER_ID_CARD",
			DocumentName: "Partner identity card",
			UploadedBy:   "APPLICANT",
			IsRequired:   true,
			MinFiles:     1,
			MaxFiles:     2,
			DisplayOrder: 3,
			Condition:    datatypes.JSON(`{"questionKey":"mortgage_type","operator":"EQUALS","value":"JOINT"}`),
		},
	}
	for i := range defs {
		require.NoError(t, s.AddDocumentDefinition(&defs[i]))
	}
}

func TestAddDocumentDefinition_Validation(t *testing.T) {
	s := newTestService(t)

	err := s.AddDocumentDefinition(&models.DocumentDefinition{DocumentName: "No type"})
	assert.ErrorIs(t, err, ErrValidation)

	err = s.AddDocumentDefinition(&models.DocumentDefinition{
		DocumentType: "ID_CARD",
		DocumentName: "Identity card",
		Condition:    datatypes.JSON(`{broken`),
	})
	assert.ErrorIs(t, err, ErrValidation)

	// A node cannot be both a compound and a simple predicate.
	err = s.AddDocumentDefinition(&models.DocumentDefinition{
		DocumentType: "ID_CARD",
		DocumentName: "Identity card",
		Condition:    datatypes.JSON(`{"questionKey":"x","operator":"EQUALS","value":1,"all":[{"questionKey":"y","operator":"EXISTS"}]}`),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpsertOverlay_NaturalKey(t *testing.T) {
	s := newTestService(t)

	overlay := &models.OrganizationOverlay{
		OrganizationID: "11111111-1111-1111-1111-111111111111",
		PhaseID:        "phase-1",
		DocumentType:   "PAYSLIP",
		Modifier:       models.ModifierOptional,
		Priority:       1,
	}
	require.NoError(t, s.UpsertOverlay(overlay))
	firstID := overlay.ID
	firstCreated := overlay.CreatedAt

	// Same natural key: the row is updated in place, not duplicated.
	update := &models.OrganizationOverlay{
		OrganizationID: overlay.OrganizationID,
		PhaseID:        overlay.PhaseID,
		DocumentType:   overlay.DocumentType,
		Modifier:       models.ModifierNotRequired,
		Priority:       5,
	}
	require.NoError(t, s.UpsertOverlay(update))
	assert.Equal(t, firstID, update.ID)
	assert.True(t, firstCreated.Equal(update.CreatedAt))

	overlays, err := s.GetOverlays("phase-1", overlay.OrganizationID)
	require.NoError(t, err)
	require.Len(t, overlays, 1)
	assert.Equal(t, models.ModifierNotRequired, overlays[0].Modifier)
	assert.Equal(t, 5, overlays[0].Priority)

	err = s.UpsertOverlay(&models.OrganizationOverlay{
		OrganizationID: overlay.OrganizationID,
		PhaseID:        "phase-1",
		DocumentType:   "ID_CARD",
		Modifier:       "DROP",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveEffectiveRequirements_EndToEnd(t *testing.T) {
	s := newTestService(t)
	seedPhaseTemplate(t, s)

	bankID := "22222222-2222-2222-2222-222222222222"
	require.NoError(t, s.UpsertOverlay(&models.OrganizationOverlay{
		OrganizationID: bankID,
		PhaseID:        "phase-1",
		DocumentType:   "PAYSLIP",
		Modifier:       models.ModifierNotRequired,
		Priority:       10,
	}))

	requirements, err := s.ResolveEffectiveRequirements("phase-1", bankID)
	require.NoError(t, err)

	types := make([]string, len(requirements))
	for i, req := range requirements {
		types[i] = req.DocumentType
	}
	assert.Equal(t, []string{"ID_CARD", "PARTNER_ID_CARD"}, types)

	// Another organization is unaffected by the bank's overlay.
	requirements, err = s.ResolveEffectiveRequirements("phase-1", "33333333-3333-3333-3333-333333333333")
	require.NoError(t, err)
	assert.Len(t, requirements, 3)
}

func TestApplicableRequirements_ConditionFiltering(t *testing.T) {
	s := newTestService(t)
	seedPhaseTemplate(t, s)

	// A sole applicant does not need the partner's identity card.
	requirements, err := s.ApplicableRequirements("phase-1", "", map[string]interface{}{"mortgage_type": "SOLE"})
	require.NoError(t, err)
	types := make([]string, len(requirements))
	for i, req := range requirements {
		types[i] = req.DocumentType
	}
	assert.Equal(t, []string{"ID_CARD", "PAYSLIP"}, types)

	requirements, err = s.ApplicableRequirements("phase-1", "", map[string]interface{}{"mortgage_type": "JOINT"})
	require.NoError(t, err)
	assert.Len(t, requirements, 3)
}

func TestValidateOverlayConfig(t *testing.T) {
	s := newTestService(t)
	seedPhaseTemplate(t, s)

	bankID := "22222222-2222-2222-2222-222222222222"
	require.NoError(t, s.UpsertOverlay(&models.OrganizationOverlay{
		OrganizationID: bankID,
		PhaseID:        "phase-1",
		DocumentType:   "GHOST_DOC",
		Modifier:       models.ModifierStricter,
	}))

	err := s.ValidateOverlayConfig("phase-1", bankID)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestResolveOrganizationTypeID(t *testing.T) {
	s := newTestService(t)

	orgType := &models.OrganizationType{TenantID: "tenant-1", Code: "BANK", Name: "Partner bank"}
	require.NoError(t, s.AddOrganizationType(orgType))

	id, err := s.ResolveOrganizationTypeID("tenant-1", "BANK")
	require.NoError(t, err)
	assert.Equal(t, orgType.ID, id)

	_, err = s.ResolveOrganizationTypeID("tenant-1", "BROKER")
	assert.ErrorIs(t, err, ErrNotFound)

	// Codes are tenant-scoped.
	_, err = s.ResolveOrganizationTypeID("tenant-2", "BANK")
	assert.ErrorIs(t, err, ErrNotFound)
}
