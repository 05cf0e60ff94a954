package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	model "github.com/homeward-labs/docgate/models"
	"gorm.io/datatypes"
)

// ResolveRequirements merges a base requirement template with organization
// overlays into the effective requirement list. Pure: fetching the inputs is
// the caller's job.
//
// Per document type the highest-priority overlay wins; equal priorities are
// broken by most recently created (then lexically greater ID, so the result
// is deterministic for identical timestamps). Base order is preserved;
// REQUIRED overlays with no base definition are appended afterwards as
// bank-only requirements in winning-overlay priority order.
func ResolveRequirements(base []model.DocumentDefinition, overlays []model.OrganizationOverlay) []model.EffectiveRequirement {
	winning := winningOverlays(overlays)

	resolved := make([]model.EffectiveRequirement, 0, len(base))
	matched := make(map[string]bool, len(base))

	for _, def := range base {
		matched[def.DocumentType] = true
		ov, ok := winning[def.DocumentType]
		if !ok {
			resolved = append(resolved, baseRequirement(def))
			continue
		}
		switch ov.Modifier {
		case model.ModifierNotRequired:
			// Removed from the effective list entirely.
		case model.ModifierOptional:
			resolved = append(resolved, overlayRequirement(def, ov, false))
		case model.ModifierRequired, model.ModifierStricter:
			resolved = append(resolved, overlayRequirement(def, ov, true))
		default:
			// Unknown modifier: fail open, keep the base requirement.
			log.Printf("[ResolveRequirements] Unknown modifier %q on overlay %s/%s; keeping base requirement", ov.Modifier, ov.OrganizationID, ov.DocumentType)
			resolved = append(resolved, baseRequirement(def))
		}
	}

	// Overlays that match no base definition become bank-only requirements
	// when marked REQUIRED. Anything else unmatched is a configuration
	// problem; ValidateOverlays surfaces it and the resolver skips it.
	var bankOnly []model.OrganizationOverlay
	for _, ov := range winning {
		if matched[ov.DocumentType] {
			continue
		}
		if ov.Modifier != model.ModifierRequired {
			log.Printf("[ResolveRequirements] Overlay %s targets unknown document type %s with modifier %s; skipping", ov.ID, ov.DocumentType, ov.Modifier)
			continue
		}
		bankOnly = append(bankOnly, ov)
	}
	sort.Slice(bankOnly, func(i, j int) bool {
		if bankOnly[i].Priority != bankOnly[j].Priority {
			return bankOnly[i].Priority > bankOnly[j].Priority
		}
		return bankOnly[i].DocumentType < bankOnly[j].DocumentType
	})
	for _, ov := range bankOnly {
		resolved = append(resolved, bankOnlyRequirement(ov))
	}

	return resolved
}

// ValidateOverlays reports overlays that reference a document type absent
// from the base template without marking it REQUIRED. Such an overlay is
// ambiguous and must be fixed by the policy owner.
func ValidateOverlays(base []model.DocumentDefinition, overlays []model.OrganizationOverlay) error {
	known := make(map[string]bool, len(base))
	for _, def := range base {
		known[def.DocumentType] = true
	}
	var bad []string
	for _, ov := range overlays {
		if !known[ov.DocumentType] && ov.Modifier != model.ModifierRequired {
			bad = append(bad, fmt.Sprintf("%s (%s)", ov.DocumentType, ov.Modifier))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: overlays reference unknown document types: %s", ErrConfiguration, strings.Join(bad, ", "))
	}
	return nil
}

// winningOverlays picks the single applicable overlay per document type.
func winningOverlays(overlays []model.OrganizationOverlay) map[string]model.OrganizationOverlay {
	winning := make(map[string]model.OrganizationOverlay)
	for _, ov := range overlays {
		cur, ok := winning[ov.DocumentType]
		if !ok || overlayBeats(ov, cur) {
			winning[ov.DocumentType] = ov
		}
	}
	return winning
}

// overlayBeats reports whether a should replace b as the winning overlay:
// higher priority wins, then the most recently created, then the greater ID.
func overlayBeats(a, b model.OrganizationOverlay) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func baseRequirement(def model.DocumentDefinition) model.EffectiveRequirement {
	return model.EffectiveRequirement{
		DocumentType:     def.DocumentType,
		DocumentName:     def.DocumentName,
		UploadedBy:       def.UploadedBy,
		IsRequired:       def.IsRequired,
		MinFiles:         def.MinFiles,
		MaxFiles:         def.MaxFiles,
		ExpiryDays:       def.ExpiryDays,
		AllowedMimeTypes: decodeMimeTypes(def.AllowedMimeTypes),
		Source:           model.SourceBase,
	}
}

func overlayRequirement(def model.DocumentDefinition, ov model.OrganizationOverlay, required bool) model.EffectiveRequirement {
	req := baseRequirement(def)
	req.IsRequired = required
	req.Source = model.SourceOverlay
	req.OrganizationID = ov.OrganizationID
	req.Modifier = ov.Modifier

	// Field overrides apply only when the overlay sets them; absent means
	// the base value stands, not a zero value.
	if ov.MinFiles != nil {
		req.MinFiles = *ov.MinFiles
	}
	if ov.MaxFiles != nil {
		req.MaxFiles = *ov.MaxFiles
	}
	if ov.ExpiryDays != nil {
		req.ExpiryDays = ov.ExpiryDays
	}
	if ov.AllowedMimeTypes != nil {
		req.AllowedMimeTypes = decodeMimeTypes(ov.AllowedMimeTypes)
	}
	if ov.Description != "" {
		req.Description = ov.Description
	}
	return req
}

// bankOnlyRequirement builds a requirement from an overlay with no base
// definition. The uploader defaults to the applicant.
func bankOnlyRequirement(ov model.OrganizationOverlay) model.EffectiveRequirement {
	req := model.EffectiveRequirement{
		DocumentType:     ov.DocumentType,
		DocumentName:     ov.Description,
		UploadedBy:       model.DefaultUploaderRole,
		IsRequired:       true,
		MinFiles:         1,
		MaxFiles:         1,
		ExpiryDays:       ov.ExpiryDays,
		AllowedMimeTypes: decodeMimeTypes(ov.AllowedMimeTypes),
		Description:      ov.Description,
		Source:           model.SourceOverlay,
		OrganizationID:   ov.OrganizationID,
		Modifier:         ov.Modifier,
	}
	if req.DocumentName == "" {
		req.DocumentName = ov.DocumentType
	}
	if ov.MinFiles != nil {
		req.MinFiles = *ov.MinFiles
	}
	if ov.MaxFiles != nil {
		req.MaxFiles = *ov.MaxFiles
	}
	return req
}

func decodeMimeTypes(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var types []string
	if err := json.Unmarshal(raw, &types); err != nil {
		log.Printf("[decodeMimeTypes] Bad mime type list %s: %v", string(raw), err)
		return nil
	}
	return types
}
