package pricing

import (
	"errors"
	"math"

	"github.com/freightboard/freightboard/internal/domain/decision"
	"github.com/freightboard/freightboard/internal/domain/load"
)

// Per-kilometre base rates in whole currency units. Unknown load types
// fall back to defaultRate rather than failing the estimate.
var baseRates = map[load.Type]float64{
	load.TypeDryVan:    45,
	load.TypeFlatbed:   55,
	load.TypeReefer:    65,
	load.TypeContainer: 50,
	load.TypeTanker:    70,
}

const (
	defaultRate = 45.0
	fuelRate    = 0.12
	marginRate  = 0.08
	handlingFee = int64(1500)

	// Loads above weightThreshold tons scale the base linearly,
	// +2% per extra ton.
	weightThreshold   = 5.0
	weightSlopePerTon = 0.02
)

// Quote is a deterministic price estimate. Total is always the exact sum
// of the rounded breakdown components.
type Quote struct {
	Total     int64                     `json:"total"`
	Breakdown decision.PricingBreakdown `json:"breakdown"`
}

// EstimatePrice computes the suggested price for a haul. Each component
// is rounded to integer currency units independently, so the breakdown
// shown to the admin always sums to the total.
func EstimatePrice(distanceKm, weightTons float64, loadType load.Type) (Quote, error) {
	if distanceKm <= 0 {
		return Quote{}, errors.New("distance must be positive")
	}
	if weightTons < 0 {
		return Quote{}, errors.New("weight must not be negative")
	}

	rate, ok := baseRates[loadType]
	if !ok {
		rate = defaultRate
	}
	factor := 1.0
	if weightTons > weightThreshold {
		factor = 1 + (weightTons-weightThreshold)*weightSlopePerTon
	}

	base := int64(math.Round(distanceKm * rate * factor))
	fuel := int64(math.Round(float64(base) * fuelRate))
	margin := int64(math.Round(float64(base) * marginRate))

	breakdown := decision.PricingBreakdown{
		Base:     base,
		Fuel:     fuel,
		Margin:   margin,
		Handling: handlingFee,
	}
	return Quote{Total: breakdown.Total(), Breakdown: breakdown}, nil
}
