package services

import (
	"testing"
	"time"

	"github.com/homeward-labs/docgate/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func baseDefs() []models.DocumentDefinition {
	return []models.DocumentDefinition{
		{
			DocumentType: "ID_CARD",
			DocumentName: "Identity card",
			UploadedBy:   "APPLICANT",
			IsRequired:   true,
			MinFiles:     1,
			MaxFiles:     2,
		},
		{
			DocumentType: "PAYSLIP",
			DocumentName: "Recent payslip",
			UploadedBy:   "APPLICANT",
			IsRequired:   true,
			MinFiles:     1,
			MaxFiles:     3,
		},
	}
}

func TestResolveRequirements_NoOverlays(t *testing.T) {
	resolved := ResolveRequirements(baseDefs(), nil)

	require.Len(t, resolved, 2)
	assert.Equal(t, "ID_CARD", resolved[0].DocumentType)
	assert.Equal(t, "PAYSLIP", resolved[1].DocumentType)
	for _, req := range resolved {
		assert.Equal(t, models.SourceBase, req.Source)
		assert.True(t, req.IsRequired)
	}

	// Determinism: resolving again yields the same list.
	assert.Equal(t, resolved, ResolveRequirements(baseDefs(), nil))
}

func TestResolveRequirements_NotRequiredRemoves(t *testing.T) {
	overlays := []models.OrganizationOverlay{
		{
			OrganizationID: "bank-1",
			DocumentType:   "PAYSLIP",
			Modifier:       models.ModifierNotRequired,
			Priority:       10,
		},
	}

	resolved := ResolveRequirements(baseDefs(), overlays)

	require.Len(t, resolved, 1)
	assert.Equal(t, "ID_CARD", resolved[0].DocumentType)
}

func TestResolveRequirements_OptionalAndOverrides(t *testing.T) {
	five := 5
	ninety := 90
	overlays := []models.OrganizationOverlay{
		{
			OrganizationID:   "bank-1",
			DocumentType:     "PAYSLIP",
			Modifier:         models.ModifierOptional,
			MaxFiles:         &five,
			ExpiryDays:       &ninety,
			AllowedMimeTypes: datatypes.JSON(`["application/pdf"]`),
			Description:      "Only needed for salaried applicants",
		},
	}

	resolved := ResolveRequirements(baseDefs(), overlays)

	require.Len(t, resolved, 2)
	payslip := resolved[1]
	assert.Equal(t, "PAYSLIP", payslip.DocumentType)
	assert.False(t, payslip.IsRequired)
	assert.Equal(t, models.SourceOverlay, payslip.Source)
	assert.Equal(t, "bank-1", payslip.OrganizationID)
	assert.Equal(t, models.ModifierOptional, payslip.Modifier)
	// Overrides apply only where set; MinFiles falls back to the base value.
	assert.Equal(t, 1, payslip.MinFiles)
	assert.Equal(t, 5, payslip.MaxFiles)
	require.NotNil(t, payslip.ExpiryDays)
	assert.Equal(t, 90, *payslip.ExpiryDays)
	assert.Equal(t, []string{"application/pdf"}, payslip.AllowedMimeTypes)
}

func TestResolveRequirements_StricterForcesRequired(t *testing.T) {
	defs := baseDefs()
	defs[1].IsRequired = false

	two := 2
	overlays := []models.OrganizationOverlay{
		{
			OrganizationID: "bank-1",
			DocumentType:   "PAYSLIP",
			Modifier:       models.ModifierStricter,
			MinFiles:       &two,
		},
	}

	resolved := ResolveRequirements(defs, overlays)

	require.Len(t, resolved, 2)
	assert.True(t, resolved[1].IsRequired)
	assert.Equal(t, 2, resolved[1].MinFiles)
	assert.Equal(t, 3, resolved[1].MaxFiles)
}

func TestResolveRequirements_PriorityAndTieBreak(t *testing.T) {
	older := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	overlays := []models.OrganizationOverlay{
		{ID: "ov-low", OrganizationID: "bank-1", DocumentType: "PAYSLIP", Modifier: models.ModifierNotRequired, Priority: 1, CreatedAt: newer},
		{ID: "ov-high", OrganizationID: "bank-1", DocumentType: "PAYSLIP", Modifier: models.ModifierOptional, Priority: 10, CreatedAt: older},
	}
	resolved := ResolveRequirements(baseDefs(), overlays)
	require.Len(t, resolved, 2)
	assert.Equal(t, models.ModifierOptional, resolved[1].Modifier)

	// Equal priority: the most recently created overlay wins.
	overlays = []models.OrganizationOverlay{
		{ID: "ov-old", OrganizationID: "bank-1", DocumentType: "PAYSLIP", Modifier: models.ModifierNotRequired, Priority: 5, CreatedAt: older},
		{ID: "ov-new", OrganizationID: "bank-1", DocumentType: "PAYSLIP", Modifier: models.ModifierOptional, Priority: 5, CreatedAt: newer},
	}
	resolved = ResolveRequirements(baseDefs(), overlays)
	require.Len(t, resolved, 2)
	assert.Equal(t, models.ModifierOptional, resolved[1].Modifier)

	// Identical timestamps fall back to the greater ID so the result stays
	// deterministic regardless of input order.
	overlays = []models.OrganizationOverlay{
		{ID: "ov-a", OrganizationID: "bank-1", DocumentType: "PAYSLIP", Modifier: models.ModifierNotRequired, Priority: 5, CreatedAt: older},
		{ID: "ov-b", OrganizationID: "bank-1", DocumentType: "PAYSLIP", Modifier: models.ModifierOptional, Priority: 5, CreatedAt: older},
	}
	first := ResolveRequirements(baseDefs(), overlays)
	second := ResolveRequirements(baseDefs(), []models.OrganizationOverlay{overlays[1], overlays[0]})
	assert.Equal(t, first, second)
	assert.Equal(t, models.ModifierOptional, first[1].Modifier)
}

func TestResolveRequirements_BankOnlyAppended(t *testing.T) {
	overlays := []models.OrganizationOverlay{
		{
			OrganizationID: "bank-1",
			DocumentType:   "BANK_MANDATE",
			Modifier:       models.ModifierRequired,
			Priority:       1,
			Description:    "Direct debit mandate",
		},
		{
			OrganizationID: "bank-1",
			DocumentType:   "WEALTH_STATEMENT",
			Modifier:       models.ModifierRequired,
			Priority:       9,
		},
		{
			// Unmatched and not REQUIRED: configuration problem, skipped.
			OrganizationID: "bank-1",
			DocumentType:   "UNKNOWN_TYPE",
			Modifier:       models.ModifierOptional,
		},
	}

	resolved := ResolveRequirements(baseDefs(), overlays)

	require.Len(t, resolved, 4)
	// Base order first, then bank-only requirements by descending priority.
	assert.Equal(t, "ID_CARD", resolved[0].DocumentType)
	assert.Equal(t, "PAYSLIP", resolved[1].DocumentType)
	assert.Equal(t, "WEALTH_STATEMENT", resolved[2].DocumentType)
	assert.Equal(t, "BANK_MANDATE", resolved[3].DocumentType)

	mandate := resolved[3]
	assert.True(t, mandate.IsRequired)
	assert.Equal(t, models.DefaultUploaderRole, mandate.UploadedBy)
	assert.Equal(t, "Direct debit mandate", mandate.DocumentName)
	assert.Equal(t, models.SourceOverlay, mandate.Source)

	// The unnamed bank-only requirement falls back to its document type.
	assert.Equal(t, "WEALTH_STATEMENT", resolved[2].DocumentName)
}

func TestValidateOverlays(t *testing.T) {
	overlays := []models.OrganizationOverlay{
		{OrganizationID: "bank-1", DocumentType: "PAYSLIP", Modifier: models.ModifierOptional},
		{OrganizationID: "bank-1", DocumentType: "GHOST_DOC", Modifier: models.ModifierStricter},
	}

	err := ValidateOverlays(baseDefs(), overlays)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "GHOST_DOC")

	// A REQUIRED overlay without a base definition is a legitimate bank-only
	// requirement, not a misconfiguration.
	overlays[1].Modifier = models.ModifierRequired
	assert.NoError(t, ValidateOverlays(baseDefs(), overlays))
}

func TestResolveRequirements_UnknownModifierKeepsBase(t *testing.T) {
	overlays := []models.OrganizationOverlay{
		{OrganizationID: "bank-1", DocumentType: "PAYSLIP", Modifier: "DELETE"},
	}

	resolved := ResolveRequirements(baseDefs(), overlays)

	require.Len(t, resolved, 2)
	assert.Equal(t, models.SourceBase, resolved[1].Source)
	assert.True(t, resolved[1].IsRequired)
}
