package models

import (
	"encoding/json"
	"fmt"
)

// Condition operators supported by the questionnaire condition engine.
const (
	OpEquals             = "EQUALS"
	OpNotEquals          = "NOT_EQUALS"
	OpIn                 = "IN"
	OpNotIn              = "NOT_IN"
	OpGreaterThan        = "GREATER_THAN"
	OpLessThan           = "LESS_THAN"
	OpGreaterThanOrEqual = "GREATER_THAN_OR_EQUAL"
	OpLessThanOrEqual    = "LESS_THAN_OR_EQUAL"
	OpExists             = "EXISTS"
	OpNotExists          = "NOT_EXISTS"
)

// Condition is a recursive gating rule evaluated against questionnaire
// answers. A node is either a simple predicate (QuestionKey/Operator plus
// Value or Values) or a compound node (All/Any of sub-conditions). A nil
// condition means the requirement always applies.
type Condition struct {
	QuestionKey string        `json:"questionKey,omitempty"`
	Operator    string        `json:"operator,omitempty"`
	Value       interface{}   `json:"value,omitempty"`
	Values      []interface{} `json:"values,omitempty"`

	All []Condition `json:"all,omitempty"`
	Any []Condition `json:"any,omitempty"`
}

// IsCompound reports whether the node carries sub-conditions rather than a
// simple predicate.
func (c *Condition) IsCompound() bool {
	return c != nil && (c.All != nil || c.Any != nil)
}

// ParseCondition decodes a stored condition tree. Empty or JSON-null input
// yields a nil condition (no gating).
func ParseCondition(raw []byte) (*Condition, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var cond Condition
	if err := json.Unmarshal(raw, &cond); err != nil {
		return nil, fmt.Errorf("invalid condition JSON: %w", err)
	}
	return &cond, nil
}
