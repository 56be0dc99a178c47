package indicator

import (
	"errors"
	"fmt"
)

// ErrIndeterminateTSI is returned when the smoothed absolute-momentum
// denominator is zero or undefined. Never silently mapped to 0.
var ErrIndeterminateTSI = errors.New("indicator: smoothed momentum denominator is zero or undefined")

// InsufficientDataError reports that the momentum series is shorter than the
// configured smoothing windows require. The caller should widen the lookback
// window and retry.
type InsufficientDataError struct {
	Required int
	Got      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("indicator: insufficient data: need %d momentum points, have %d", e.Required, e.Got)
}
