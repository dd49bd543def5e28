package adapter

import (
	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
)

// Spot-count chain used to turn a floor price into bundle prices.
const (
	SpotsPerHour  = 4
	HoursPerDay   = 16
	DaysPerWeek   = 7
	DaysPerMonth  = 30
	pricePlaces   = 2
	operatingOpen = "06:00"
	// operatingClose is operatingOpen + HoursPerDay.
	operatingClose = "22:00"
)

// bundlesFor derives the hourly/daily/weekly/monthly bundles from a floor price.
// Negative floors are treated as zero so bundle prices are never negative.
func bundlesFor(floor float64) screens.Bundles {
	base := decimal.NewFromFloat(floor)
	if base.IsNegative() {
		base = decimal.Zero
	}
	hourlySpots := int64(SpotsPerHour)
	dailySpots := hourlySpots * HoursPerDay
	weeklySpots := dailySpots * DaysPerWeek
	monthlySpots := dailySpots * DaysPerMonth

	return screens.Bundles{
		Hourly:  bundle(base, hourlySpots),
		Daily:   bundle(base, dailySpots),
		Weekly:  bundle(base, weeklySpots),
		Monthly: bundle(base, monthlySpots),
	}
}

func bundle(floor decimal.Decimal, spots int64) screens.Bundle {
	price := floor.Mul(decimal.NewFromInt(spots)).Round(pricePlaces)
	return screens.Bundle{
		Enabled: price.IsPositive(),
		Price:   price.InexactFloat64(),
		Spots:   int(spots),
	}
}

// roundPrice rounds a price to cents.
func roundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(pricePlaces).InexactFloat64()
}
