package services

import (
	"testing"

	"github.com/homeward-labs/docgate/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestEvaluateCondition_FailOpen(t *testing.T) {
	answers := map[string]interface{}{"mortgage_type": "JOINT"}

	tests := []struct {
		name string
		cond *models.Condition
		want bool
	}{
		{
			name: "nil condition is always true",
			cond: nil,
			want: true,
		},
		{
			name: "missing operator is treated as required",
			cond: &models.Condition{QuestionKey: "mortgage_type"},
			want: true,
		},
		{
			name: "missing question key is treated as required",
			cond: &models.Condition{Operator: models.OpEquals, Value: "JOINT"},
			want: true,
		},
		{
			name: "unknown operator is treated as required",
			cond: &models.Condition{QuestionKey: "mortgage_type", Operator: "MATCHES_REGEX", Value: ".*"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCondition(tt.cond, answers))
		})
	}
}

func TestEvaluateCondition_CompoundIdentities(t *testing.T) {
	answers := map[string]interface{}{}

	// Empty "all" is vacuously true, empty "any" is vacuously false.
	assert.True(t, EvaluateCondition(&models.Condition{All: []models.Condition{}}, answers))
	assert.False(t, EvaluateCondition(&models.Condition{Any: []models.Condition{}}, answers))
}

func TestEvaluateCondition_Operators(t *testing.T) {
	answers := map[string]interface{}{
		"mortgage_type":  "SOLE",
		"applicants":     float64(2),
		"income":         55000.0,
		"has_guarantor":  nil,
		"employment":     "SELF_EMPLOYED",
		"property_value": 310000,
	}

	tests := []struct {
		name string
		cond models.Condition
		want bool
	}{
		{
			name: "equals mismatch filters the step out",
			cond: models.Condition{QuestionKey: "mortgage_type", Operator: models.OpEquals, Value: "JOINT"},
			want: false,
		},
		{
			name: "equals match",
			cond: models.Condition{QuestionKey: "mortgage_type", Operator: models.OpEquals, Value: "SOLE"},
			want: true,
		},
		{
			name: "equals compares numbers by value across Go kinds",
			cond: models.Condition{QuestionKey: "applicants", Operator: models.OpEquals, Value: 2},
			want: true,
		},
		{
			name: "not equals",
			cond: models.Condition{QuestionKey: "mortgage_type", Operator: models.OpNotEquals, Value: "JOINT"},
			want: true,
		},
		{
			name: "in with matching value",
			cond: models.Condition{QuestionKey: "employment", Operator: models.OpIn, Values: []interface{}{"SELF_EMPLOYED", "CONTRACTOR"}},
			want: true,
		},
		{
			name: "in without values defaults to false",
			cond: models.Condition{QuestionKey: "employment", Operator: models.OpIn},
			want: false,
		},
		{
			name: "not in without values defaults to true",
			cond: models.Condition{QuestionKey: "employment", Operator: models.OpNotIn},
			want: true,
		},
		{
			name: "not in with matching value",
			cond: models.Condition{QuestionKey: "employment", Operator: models.OpNotIn, Values: []interface{}{"SELF_EMPLOYED"}},
			want: false,
		},
		{
			name: "greater than",
			cond: models.Condition{QuestionKey: "income", Operator: models.OpGreaterThan, Value: 50000},
			want: true,
		},
		{
			name: "greater than on non-numeric answer is false",
			cond: models.Condition{QuestionKey: "mortgage_type", Operator: models.OpGreaterThan, Value: 1},
			want: false,
		},
		{
			name: "less than",
			cond: models.Condition{QuestionKey: "property_value", Operator: models.OpLessThan, Value: 300000},
			want: false,
		},
		{
			name: "less than or equal",
			cond: models.Condition{QuestionKey: "applicants", Operator: models.OpLessThanOrEqual, Value: 2},
			want: true,
		},
		{
			name: "greater than or equal",
			cond: models.Condition{QuestionKey: "income", Operator: models.OpGreaterThanOrEqual, Value: 55000},
			want: true,
		},
		{
			name: "exists is false for explicit null answer",
			cond: models.Condition{QuestionKey: "has_guarantor", Operator: models.OpExists},
			want: false,
		},
		{
			name: "exists is false for missing answer",
			cond: models.Condition{QuestionKey: "previous_address", Operator: models.OpExists},
			want: false,
		},
		{
			name: "exists is true for present answer",
			cond: models.Condition{QuestionKey: "income", Operator: models.OpExists},
			want: true,
		},
		{
			name: "not exists is true for missing answer",
			cond: models.Condition{QuestionKey: "previous_address", Operator: models.OpNotExists},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCondition(&tt.cond, answers))
		})
	}
}

func TestEvaluateCondition_Nested(t *testing.T) {
	answers := map[string]interface{}{
		"mortgage_type": "JOINT",
		"income":        42000.0,
	}

	// (mortgage_type == JOINT) AND (income > 100000 OR income < 50000)
	cond := &models.Condition{
		All: []models.Condition{
			{QuestionKey: "mortgage_type", Operator: models.OpEquals, Value: "JOINT"},
			{
				Any: []models.Condition{
					{QuestionKey: "income", Operator: models.OpGreaterThan, Value: 100000},
					{QuestionKey: "income", Operator: models.OpLessThan, Value: 50000},
				},
			},
		},
	}
	assert.True(t, EvaluateCondition(cond, answers))

	answers["income"] = 75000.0
	assert.False(t, EvaluateCondition(cond, answers))
}

func TestFilterDefinitionsByCondition(t *testing.T) {
	defs := []models.DocumentDefinition{
		{
			DocumentType: "ID_CARD",
			// No condition: always kept.
		},
		{
			DocumentType: "PARTNER_ID_CARD",
			Condition:    datatypes.JSON(`{"questionKey":"mortgage_type","operator":"EQUALS","value":"JOINT"}`),
		},
		{
			DocumentType: "BROKEN_CONDITION",
			Condition:    datatypes.JSON(`{not json`),
		},
	}

	filtered := FilterDefinitionsByCondition(defs, map[string]interface{}{"mortgage_type": "SOLE"})

	// The conditional step is filtered out; the unparseable condition fails
	// open and keeps its requirement. Input order is preserved.
	types := make([]string, len(filtered))
	for i, def := range filtered {
		types[i] = def.DocumentType
	}
	assert.Equal(t, []string{"ID_CARD", "BROKEN_CONDITION"}, types)

	filtered = FilterDefinitionsByCondition(defs, map[string]interface{}{"mortgage_type": "JOINT"})
	assert.Len(t, filtered, 3)
}
