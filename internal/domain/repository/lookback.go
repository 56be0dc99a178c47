package repository

// Default lookback windows for signal computation.
const (
	DefaultLookbackMinutes = 1440 // 24h of price history
	DefaultLookbackHours   = 24   // elite position recency
	DefaultOmegaDays       = 30
	OmegaMomentumLongDays  = 60
)

// NormalizeLookbackMinutes returns a positive lookback, falling back to the
// default for non-positive input.
func NormalizeLookbackMinutes(n int) int {
	if n <= 0 {
		return DefaultLookbackMinutes
	}
	return n
}

// NormalizeLookbackHours returns a positive lookback, falling back to the
// default for non-positive input.
func NormalizeLookbackHours(n int) int {
	if n <= 0 {
		return DefaultLookbackHours
	}
	return n
}
