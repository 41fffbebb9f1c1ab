package vase

import "errors"
import "fmt"

// Smoothing directions.
const (
	DirectionForward  = "forward"
	DirectionReversed = "reversed"
	DirectionCombined = "combined"
)

// Settings is the full configuration surface of the smoothing engine.
// Immutable once validated; owns no algorithmic logic.
type Settings struct {
	Direction string

	// 1-based inclusive layer range. Both zero means all layers.
	RangeLo, RangeHi int

	// Target arc-length spacing for resampling, in the same units as the
	// coordinates (mm for every slicer we know of).
	InterpolateDistance float64

	// Fraction of a layer's loop over which the blend weight decays from 1
	// to 0.
	SmoothnessRatio float64

	// Destination file. Empty means overwrite the input.
	OutputPath string
}

// Validate rejects bad or conflicting option values before any processing
// starts.
func (s *Settings) Validate() error {
	switch s.Direction {
	case DirectionForward, DirectionReversed, DirectionCombined:
	default:
		return fmt.Errorf("unknown direction %q", s.Direction)
	}
	if s.InterpolateDistance <= 0 {
		return errors.New("interpolate distance must be positive")
	}
	if s.SmoothnessRatio <= 0 || s.SmoothnessRatio > 1 {
		return fmt.Errorf("smoothness ratio %g outside (0, 1]", s.SmoothnessRatio)
	}
	if s.RangeLo != 0 || s.RangeHi != 0 {
		if s.RangeLo < 1 || s.RangeHi < s.RangeLo {
			return fmt.Errorf("bad layer range %d...%d", s.RangeLo, s.RangeHi)
		}
	}
	return nil
}

// Reports whether the 0-based layer index falls inside the configured range.
func (s *Settings) inRange(index int) bool {
	if s.RangeLo == 0 && s.RangeHi == 0 {
		return true
	}
	return index+1 >= s.RangeLo && index+1 <= s.RangeHi
}
