package adapter

import (
	"math"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
)

const (
	baseRating = 3.5

	premiumFloorPrice = 20.0
	largePanelWidth   = 3840
	brightPanelNits   = 7000
)

// impressionTiers is ordered from the highest threshold down; the first match applies.
var impressionTiers = []struct {
	min   int64
	bonus float64
}{
	{100000, 0.8},
	{50000, 0.5},
	{10000, 0.2},
}

// qualityRating scores a screen from its audience, price and panel. The result is rounded to
// one decimal and always within [1.0, 5.0].
func qualityRating(dailyImpressions int64, floor float64, width, brightness int) float64 {
	rating := baseRating
	for _, tier := range impressionTiers {
		if dailyImpressions >= tier.min {
			rating += tier.bonus
			break
		}
	}
	if floor > premiumFloorPrice {
		rating += 0.3
	}
	if width >= largePanelWidth {
		rating += 0.2
	}
	if brightness >= brightPanelNits {
		rating += 0.2
	}
	return screens.ClampRating(math.Round(rating*10) / 10)
}

// trafficLevel buckets daily impressions.
func trafficLevel(daily int64) string {
	switch {
	case daily >= 25000:
		return "high"
	case daily >= 5000:
		return "medium"
	default:
		return "low"
	}
}
