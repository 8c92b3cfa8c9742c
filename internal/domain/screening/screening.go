package screening

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("screening rule not found")

// Rule is one admin-authored boolean expression evaluated against a bid's
// context when it is placed. A matching active rule flags the bid for
// approval before acceptance.
type Rule struct {
	ID         int64      `json:"id"`
	RuleID     uuid.UUID  `json:"ruleId"`
	Name       string     `json:"name"`
	Expression string     `json:"expression"`
	Priority   int        `json:"priority"`
	Active     bool       `json:"active"`
	CreatedBy  *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewRule creates an active rule.
func NewRule(name, expression string, priority int, createdBy *uuid.UUID) *Rule {
	return &Rule{
		RuleID:     uuid.New(),
		Name:       name,
		Expression: expression,
		Priority:   priority,
		Active:     true,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate checks the rule's own fields. Expression syntax is checked by
// the evaluator at compile time.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if r.Expression == "" {
		return errors.New("rule expression is required")
	}
	return nil
}
