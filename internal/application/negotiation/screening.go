package negotiation

import (
	"context"
	"errors"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/rs/zerolog"

	"github.com/freightboard/freightboard/internal/domain/bid"
	"github.com/freightboard/freightboard/internal/domain/load"
	"github.com/freightboard/freightboard/internal/domain/screening"
)

// EvaluateRule evaluates one screening expression against the bid
// context. Empty expressions never fire. Supports "true"/"false"
// literals.
func EvaluateRule(expression string, params map[string]interface{}) (bool, error) {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		return false, nil
	}
	switch strings.ToLower(expr) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return false, err
	}
	result, err := compiled.Evaluate(params)
	if err != nil {
		return false, err
	}
	switch v := result.(type) {
	case bool:
		return v, nil
	default:
		return false, errors.New("screening expression did not evaluate to boolean")
	}
}

// bidParams flattens one bid into the variables screening expressions
// see: amount, final_price, ratio, bid_type, simulated, carrier_score.
func bidParams(ld *load.Load, amount int64, bidType bid.Type, simulated bool, carrierScore int) map[string]interface{} {
	finalPrice := 0.0
	if ld.AdminFinalPrice != nil {
		finalPrice = float64(*ld.AdminFinalPrice)
	}
	ratio := 0.0
	if finalPrice > 0 {
		ratio = float64(amount) / finalPrice
	}
	return map[string]interface{}{
		"amount":        float64(amount),
		"final_price":   finalPrice,
		"ratio":         ratio,
		"bid_type":      string(bidType),
		"simulated":     simulated,
		"carrier_score": float64(carrierScore),
	}
}

// Screener flags bids that need manual review before acceptance.
type Screener struct {
	ruleRepo screening.Repository
	logger   zerolog.Logger
}

// NewScreener creates a screener over the stored rule set.
func NewScreener(ruleRepo screening.Repository, logger zerolog.Logger) *Screener {
	return &Screener{
		ruleRepo: ruleRepo,
		logger:   logger.With().Str("component", "screener").Logger(),
	}
}

// Screen runs the active rules, highest priority first, and returns the
// first rule that fires, or nil. A rule that fails to parse or evaluate
// is skipped with a warning; a broken rule never blocks bidding.
func (s *Screener) Screen(ctx context.Context, params map[string]interface{}) (*screening.Rule, error) {
	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		fired, err := EvaluateRule(rule.Expression, params)
		if err != nil {
			s.logger.Warn().Err(err).Str("rule", rule.Name).Msg("screening rule skipped")
			continue
		}
		if fired {
			return rule, nil
		}
	}
	return nil, nil
}
