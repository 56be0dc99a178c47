package smoothing

import (
	"errors"
	"fmt"
	"math"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
)

// ErrInvalidPeriod is returned when a smoothing period is not a positive
// integer.
var ErrInvalidPeriod = errors.New("smoothing: period must be a positive integer")

// Entries that are not yet computable carry NaN. Once an entry is
// computable, every subsequent entry is finite.
func sentinel() float64 { return math.NaN() }

// IsSentinel reports whether v is the "not yet computable" marker.
func IsSentinel(v float64) bool { return math.IsNaN(v) }

// SMA computes the simple moving average. The first period-1 outputs are
// sentinels; output length equals input length.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	return smoothValid(values, period, smaCore), nil
}

// EMA computes the exponential moving average, seeded with the SMA of the
// first period values and alpha = 2/(period+1).
func EMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	return smoothValid(values, period, func(v []float64, p int) []float64 {
		return recurrenceCore(v, p, 2.0/float64(p+1))
	}), nil
}

// RMA computes the Wilder running average: same seeding as EMA but
// alpha = 1/period, so it decays more slowly for the same period.
func RMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	return smoothValid(values, period, func(v []float64, p int) []float64 {
		return recurrenceCore(v, p, 1.0/float64(p))
	}), nil
}

// Smooth dispatches to the requested method.
func Smooth(values []float64, method models.SmoothingMethod, period int) ([]float64, error) {
	switch method {
	case models.SmoothSMA:
		return SMA(values, period)
	case models.SmoothEMA:
		return EMA(values, period)
	case models.SmoothRMA:
		return RMA(values, period)
	default:
		return nil, fmt.Errorf("smoothing: unknown method %q", method)
	}
}

// DoubleSmooth applies the same method twice: first with firstPeriod, then
// with secondPeriod over the result. Leading sentinels from the first pass
// are skipped by the second, so the output stays finite once computable.
func DoubleSmooth(values []float64, method models.SmoothingMethod, firstPeriod, secondPeriod int) ([]float64, error) {
	once, err := Smooth(values, method, firstPeriod)
	if err != nil {
		return nil, err
	}
	return Smooth(once, method, secondPeriod)
}

// ValidDataPercentage returns the fraction of non-sentinel entries, for
// observability only. An empty series reports 0.
func ValidDataPercentage(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	valid := 0
	for _, v := range series {
		if !IsSentinel(v) {
			valid++
		}
	}
	return float64(valid) / float64(len(series))
}

// smoothValid runs core over the finite suffix of values, re-prepending any
// leading sentinels so chained smoothing passes compose.
func smoothValid(values []float64, period int, core func([]float64, int) []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	lead := 0
	for lead < len(values) && IsSentinel(values[lead]) {
		lead++
	}
	out := make([]float64, len(values))
	for i := 0; i < lead; i++ {
		out[i] = sentinel()
	}
	copy(out[lead:], core(values[lead:], period))
	return out
}

func smaCore(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = sentinel()
		}
	}
	return out
}

// recurrenceCore seeds out[period-1] with the SMA of the first period values
// and then applies out[i] = alpha*v[i] + (1-alpha)*out[i-1].
func recurrenceCore(values []float64, period int, alpha float64) []float64 {
	out := make([]float64, len(values))
	var seedSum float64
	for i, v := range values {
		if i < period-1 {
			seedSum += v
			out[i] = sentinel()
			continue
		}
		if i == period-1 {
			seedSum += v
			out[i] = seedSum / float64(period)
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out
}
