package domain

type PriceBand string

const (
	PriceBandLow    PriceBand = "LOW"
	PriceBandMedium PriceBand = "MEDIUM"
	PriceBandHigh   PriceBand = "HIGH"
)

// SAR per square metre.
const (
	PriceLowThreshold    = 3000
	PriceMediumThreshold = 6000
)

// BandForPrice colours a district on the price map.
func BandForPrice(pricePerSqm float64) (PriceBand, string) {
	switch {
	case pricePerSqm < PriceLowThreshold:
		return PriceBandLow, "#22c55e"
	case pricePerSqm < PriceMediumThreshold:
		return PriceBandMedium, "#eab308"
	default:
		return PriceBandHigh, "#ef4444"
	}
}
