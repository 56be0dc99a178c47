package smoothing

import (
	"errors"
	"math"
	"testing"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
)

func seq10() []float64 {
	return []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
}

func assertSeries(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Fatalf("index %d: expected sentinel, got %v", i, got[i])
			}
			continue
		}
		if math.IsNaN(got[i]) || math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestSMAReference(t *testing.T) {
	nan := math.NaN()
	got, err := SMA(seq10(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSeries(t, got, []float64{nan, nan, 2, 3, 4, 5, 6, 7, 8, 9}, 1e-12)
}

func TestEMAReference(t *testing.T) {
	// alpha = 0.5 on a linear ramp reproduces the SMA values
	nan := math.NaN()
	got, err := EMA(seq10(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSeries(t, got, []float64{nan, nan, 2, 3, 4, 5, 6, 7, 8, 9}, 1e-12)
}

func TestRMAReference(t *testing.T) {
	nan := math.NaN()
	got, err := RMA(seq10(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{
		nan, nan, 2,
		2.666666666666667,  // 8/3
		3.444444444444444,  // 31/9
		4.296296296296296,  // 116/27
		5.197530864197531,  // 421/81
		6.131687242798354,  // 1490/243
		7.086419753086420,  // 5167/729
		8.058984910836763,  // 17624/2187
	}
	assertSeries(t, got, want, 1e-9)
}

func TestSentinelCount(t *testing.T) {
	for _, period := range []int{1, 2, 3, 5, 9, 15} {
		for _, n := range []int{0, 1, 4, 10} {
			values := make([]float64, n)
			for i := range values {
				values[i] = float64(i) * 0.1
			}
			got, err := SMA(values, period)
			if err != nil {
				t.Fatalf("period=%d n=%d: %v", period, n, err)
			}
			wantSentinels := period - 1
			if wantSentinels > n {
				wantSentinels = n
			}
			sentinels := 0
			for _, v := range got {
				if math.IsNaN(v) {
					sentinels++
				}
			}
			if sentinels != wantSentinels {
				t.Fatalf("period=%d n=%d: got %d sentinels, want %d", period, n, sentinels, wantSentinels)
			}
			// once computable, stays finite
			for i := wantSentinels; i < len(got); i++ {
				if math.IsNaN(got[i]) {
					t.Fatalf("period=%d n=%d: index %d re-became sentinel", period, n, i)
				}
			}
		}
	}
}

func TestInvalidPeriod(t *testing.T) {
	for _, period := range []int{0, -1, -100} {
		if _, err := SMA(seq10(), period); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("SMA period=%d: expected ErrInvalidPeriod, got %v", period, err)
		}
		if _, err := EMA(seq10(), period); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("EMA period=%d: expected ErrInvalidPeriod, got %v", period, err)
		}
		if _, err := RMA(seq10(), period); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("RMA period=%d: expected ErrInvalidPeriod, got %v", period, err)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	got, err := Smooth(nil, models.SmoothRMA, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %d entries", len(got))
	}
}

func TestDoubleSmoothSkipsSentinels(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = math.Sin(float64(i) * 0.3)
	}
	got, err := DoubleSmooth(values, models.SmoothRMA, 5, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("length mismatch: got %d", len(got))
	}
	// first pass leaves 4 sentinels, second adds 2 more
	for i := 0; i < 6; i++ {
		if !math.IsNaN(got[i]) {
			t.Fatalf("index %d: expected sentinel", i)
		}
	}
	for i := 6; i < len(got); i++ {
		if math.IsNaN(got[i]) {
			t.Fatalf("index %d: expected finite value", i)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	if _, err := Smooth(seq10(), models.SmoothingMethod("wma"), 3); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestValidDataPercentage(t *testing.T) {
	nan := math.NaN()
	if got := ValidDataPercentage([]float64{nan, nan, 1, 2}); got != 0.5 {
		t.Fatalf("got %v want 0.5", got)
	}
	if got := ValidDataPercentage(nil); got != 0 {
		t.Fatalf("empty series: got %v want 0", got)
	}
}
