package pulse

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// RZXBuilder builds schedules of RZX(θ) = exp(-iθ/2 Z_c X_t) by rescaling calibrated cross resonance tones.
type RZXBuilder struct {
	Calibrations *CalibrationMap
	// Echo selects two half angle tones of opposite sign around π pulses on the control,
	// instead of a single tone.
	Echo bool
}

// Schedule returns the schedule of RZX(theta) with the given control and target.
// The cross resonance from control to target must be calibrated.
func (b RZXBuilder) Schedule(control, target int, theta float64) (*Schedule, error) {
	if b.Calibrations == nil {
		return nil, errors.Wrap(ErrNotCalibrated, "no calibrations")
	}
	cr, ok := b.Calibrations.CR(control, target)
	if !ok {
		return nil, errors.Wrap(ErrNotCalibrated, fmt.Sprintf("%d %d", control, target))
	}
	s := &Schedule{Name: fmt.Sprintf("rzx(%.4f) q%d q%d", theta, control, target)}
	if theta == 0 {
		return s, nil
	}
	u, d := ControlChannel(cr.ControlChannel), DriveChannel(control)

	if !b.Echo {
		s.Append(u, tone(cr.Pulse, theta))
		return s, nil
	}

	qc, err := b.Calibrations.Qubit(control)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	half := tone(cr.Pulse, theta/2)
	minus := half
	minus.Amp = -minus.Amp
	s.Append(u, half)
	s.Append(d, qc.X, u)
	s.Append(u, minus, d)
	s.Append(d, qc.X, u)
	return s, nil
}

// tone rescales the RZX(π/4) calibration to angle theta, with the amplitude sign following theta.
func tone(cal GaussianSquare, theta float64) GaussianSquare {
	p := cal.Stretch(theta / (math.Pi / 4))
	if theta < 0 {
		p.Amp = -p.Amp
	}
	return p
}
