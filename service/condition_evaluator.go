package services

import (
	"log"
	"reflect"

	model "github.com/homeward-labs/docgate/models"
)

// EvaluateCondition decides whether a condition tree holds for the given
// questionnaire answers. The evaluator fails open: a nil condition, a
// malformed node, or an unknown operator all evaluate to true, so broken
// policy data can never silently drop a requirement.
func EvaluateCondition(cond *model.Condition, answers map[string]interface{}) bool {
	if cond == nil {
		return true
	}

	if cond.All != nil {
		for i := range cond.All {
			if !EvaluateCondition(&cond.All[i], answers) {
				return false
			}
		}
		return true
	}

	if cond.Any != nil {
		for i := range cond.Any {
			if EvaluateCondition(&cond.Any[i], answers) {
				return true
			}
		}
		return false
	}

	// Simple predicate. A node missing its key or operator is malformed
	// policy data and must not skip the requirement.
	if cond.QuestionKey == "" || cond.Operator == "" {
		return true
	}

	answer, present := answers[cond.QuestionKey]

	switch cond.Operator {
	case model.OpEquals:
		return valuesEqual(answer, cond.Value)
	case model.OpNotEquals:
		return !valuesEqual(answer, cond.Value)
	case model.OpIn:
		if cond.Values == nil {
			return false
		}
		for _, v := range cond.Values {
			if valuesEqual(answer, v) {
				return true
			}
		}
		return false
	case model.OpNotIn:
		if cond.Values == nil {
			return true
		}
		for _, v := range cond.Values {
			if valuesEqual(answer, v) {
				return false
			}
		}
		return true
	case model.OpGreaterThan:
		a, b, ok := numericPair(answer, cond.Value)
		return ok && a > b
	case model.OpGreaterThanOrEqual:
		a, b, ok := numericPair(answer, cond.Value)
		return ok && a >= b
	case model.OpLessThan:
		a, b, ok := numericPair(answer, cond.Value)
		return ok && a < b
	case model.OpLessThanOrEqual:
		a, b, ok := numericPair(answer, cond.Value)
		return ok && a <= b
	case model.OpExists:
		return present && answer != nil
	case model.OpNotExists:
		return !present || answer == nil
	default:
		log.Printf("[EvaluateCondition] Unknown operator %q on question %q; treating as required", cond.Operator, cond.QuestionKey)
		return true
	}
}

// FilterDefinitionsByCondition keeps the definitions whose condition holds
// for the answers, preserving input order.
func FilterDefinitionsByCondition(defs []model.DocumentDefinition, answers map[string]interface{}) []model.DocumentDefinition {
	filtered := make([]model.DocumentDefinition, 0, len(defs))
	for _, def := range defs {
		cond, err := def.ParsedCondition()
		if err != nil {
			// Unparseable condition: fail open, keep the requirement.
			log.Printf("[FilterDefinitionsByCondition] Bad condition on %s: %v", def.DocumentType, err)
			filtered = append(filtered, def)
			continue
		}
		if EvaluateCondition(cond, answers) {
			filtered = append(filtered, def)
		}
	}
	return filtered
}

// valuesEqual compares an answer with a condition value. Numbers compare by
// value regardless of Go kind (JSON decoding yields float64, seeded test
// data may carry ints); everything else uses deep equality.
func valuesEqual(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

// numericPair coerces both sides to float64, reporting false when either
// side is non-numeric.
func numericPair(a, b interface{}) (float64, float64, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return af, bf, aok && bok
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
