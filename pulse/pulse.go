// Package pulse describes device calibrations and builds pulse schedules for calibrated two qubit gates.
//
// Schedules are not simulated; their durations drive the noise model and the hardware aware ansatz.
package pulse

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Granularity is the number of samples every pulse duration is a multiple of.
const Granularity = 16

var (
	ErrNotCalibrated = errors.New("not calibrated")
)

// Waveform is a sampled pulse envelope.
type Waveform interface {
	// Samples returns the duration in units of dt.
	Samples() int
	// Area returns the integral of the envelope in units of dt.
	Area() float64
	String() string
}

// Drag is a Gaussian derivative removal pulse used for single qubit gates.
type Drag struct {
	Duration int     `yaml:"duration"`
	Amp      float64 `yaml:"amp"`
	Sigma    float64 `yaml:"sigma"`
	Beta     float64 `yaml:"beta"`
}

func (d Drag) Samples() int { return d.Duration }

func (d Drag) Area() float64 {
	half := float64(d.Duration) / 2
	return d.Amp * d.Sigma * math.Sqrt(2*math.Pi) * math.Erf(half/(d.Sigma*math.Sqrt2))
}

func (d Drag) String() string {
	return fmt.Sprintf("Drag(duration=%d, amp=%.4f, sigma=%g, beta=%g)", d.Duration, d.Amp, d.Sigma, d.Beta)
}

// GaussianSquare is a flat top pulse with Gaussian rise and fall, used for cross resonance tones.
type GaussianSquare struct {
	Duration int     `yaml:"duration"`
	Amp      float64 `yaml:"amp"`
	// Angle is the phase of the complex amplitude.
	Angle float64 `yaml:"angle"`
	Sigma float64 `yaml:"sigma"`
	Width float64 `yaml:"width"`
}

func (g GaussianSquare) Samples() int { return g.Duration }

// riseFallSigmas returns the length of each Gaussian flank in units of sigma.
func (g GaussianSquare) riseFallSigmas() float64 {
	return (float64(g.Duration) - g.Width) / (2 * g.Sigma)
}

// flankArea returns the area of the Gaussian flanks per unit amplitude.
func (g GaussianSquare) flankArea() float64 {
	return g.Sigma * math.Sqrt(2*math.Pi) * math.Erf(g.riseFallSigmas()/math.Sqrt2)
}

func (g GaussianSquare) Area() float64 {
	return math.Abs(g.Amp) * (g.Width + g.flankArea())
}

func (g GaussianSquare) String() string {
	return fmt.Sprintf("GaussianSquare(duration=%d, amp=%.4f, angle=%.4f, sigma=%g, width=%g)", g.Duration, g.Amp, g.Angle, g.Sigma, g.Width)
}

// Stretch returns the pulse whose area is scale times the area of g, keeping the flanks.
// The flat top is sized at the native amplitude, the duration rounded up to a multiple of Granularity,
// and the amplitude lowered to absorb the rounding.
func (g GaussianSquare) Stretch(scale float64) GaussianSquare {
	n := g.riseFallSigmas()
	target := math.Abs(scale) * g.Area()
	flank := g.flankArea()
	width := max(0, target/math.Abs(g.Amp)-flank)

	s := g
	s.Duration = roundUp(int(math.Ceil(width+2*n*g.Sigma-1e-9)), Granularity)
	s.Width = float64(s.Duration) - 2*n*g.Sigma
	s.Amp = math.Copysign(target/(s.Width+flank), g.Amp)
	return s
}

func roundUp(v, m int) int {
	if v%m == 0 {
		return v
	}
	return (v/m + 1) * m
}

// Channel is a drive channel "d<q>" or a control channel "u<k>".
type Channel string

// DriveChannel returns the drive channel of qubit q.
func DriveChannel(q int) Channel { return Channel(fmt.Sprintf("d%d", q)) }

// ControlChannel returns control channel k.
func ControlChannel(k int) Channel { return Channel(fmt.Sprintf("u%d", k)) }

// Play is a waveform played on a channel starting at a time in units of dt.
type Play struct {
	Start   int
	Channel Channel
	Pulse   Waveform
}

// Schedule is a timed sequence of plays.
type Schedule struct {
	Name  string
	Plays []Play
}

// Duration returns the end time of the last play.
func (s *Schedule) Duration() int {
	var d int
	for _, p := range s.Plays {
		d = max(d, p.Start+p.Pulse.Samples())
	}
	return d
}

// Append plays p after everything on its channel and on the other channels listed in sync.
func (s *Schedule) Append(ch Channel, p Waveform, sync ...Channel) {
	start := s.channelEnd(ch)
	for _, c := range sync {
		start = max(start, s.channelEnd(c))
	}
	s.Plays = append(s.Plays, Play{Start: start, Channel: ch, Pulse: p})
}

func (s *Schedule) channelEnd(ch Channel) int {
	var end int
	for _, p := range s.Plays {
		if p.Channel == ch {
			end = max(end, p.Start+p.Pulse.Samples())
		}
	}
	return end
}

func (s *Schedule) String() string {
	lines := []string{fmt.Sprintf("Schedule(%s, duration=%d)", s.Name, s.Duration())}
	for _, p := range s.Plays {
		lines = append(lines, fmt.Sprintf("  %5d %s %s", p.Start, p.Channel, p.Pulse))
	}
	return strings.Join(lines, "\n")
}

// QubitCalibration holds the single qubit pulses of a qubit.
type QubitCalibration struct {
	Qubit int  `yaml:"qubit"`
	X     Drag `yaml:"x"`
	SX    Drag `yaml:"sx"`
}

// CrossResonance is the calibrated tone implementing RZX(π/4) from Control to Target.
type CrossResonance struct {
	Control        int            `yaml:"control"`
	Target         int            `yaml:"target"`
	ControlChannel int            `yaml:"controlChannel"`
	Pulse          GaussianSquare `yaml:"pulse"`
}

// CalibrationMap holds the pulse calibrations of a device.
type CalibrationMap struct {
	// Dt is the sample time in seconds.
	Dt             float64            `yaml:"dt"`
	Qubits         []QubitCalibration `yaml:"qubits"`
	CrossResonance []CrossResonance   `yaml:"crossResonance"`
}

// Qubit returns the single qubit calibration of q.
func (c *CalibrationMap) Qubit(q int) (QubitCalibration, error) {
	for _, qc := range c.Qubits {
		if qc.Qubit == q {
			return qc, nil
		}
	}
	return QubitCalibration{}, errors.Wrap(ErrNotCalibrated, fmt.Sprintf("qubit %d", q))
}

// CR returns the cross resonance calibration from control to target.
func (c *CalibrationMap) CR(control, target int) (CrossResonance, bool) {
	for _, cr := range c.CrossResonance {
		if cr.Control == control && cr.Target == target {
			return cr, true
		}
	}
	return CrossResonance{}, false
}

// Validate checks that every pulse has a positive duration aligned to Granularity.
func (c *CalibrationMap) Validate() error {
	if c.Dt <= 0 {
		return errors.Errorf("dt %f", c.Dt)
	}
	for _, q := range c.Qubits {
		for _, d := range []Drag{q.X, q.SX} {
			if d.Duration <= 0 || d.Duration%Granularity != 0 {
				return errors.Errorf("qubit %d %s", q.Qubit, d)
			}
		}
	}
	for _, cr := range c.CrossResonance {
		p := cr.Pulse
		if p.Duration <= 0 || p.Duration%Granularity != 0 || p.Sigma <= 0 || p.Width < 0 || p.Width > float64(p.Duration) || p.Amp == 0 {
			return errors.Errorf("%d %d %s", cr.Control, cr.Target, p)
		}
	}
	return nil
}

// CXDuration returns the duration in dt of the native echoed cross resonance CX between a and b, in either direction.
func (c *CalibrationMap) CXDuration(a, b int) (int, error) {
	cr, ok := c.CR(a, b)
	if !ok {
		cr, ok = c.CR(b, a)
	}
	if !ok {
		return 0, errors.Wrap(ErrNotCalibrated, fmt.Sprintf("%d %d", a, b))
	}
	qc, err := c.Qubit(cr.Control)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return 2*cr.Pulse.Duration + 2*qc.X.Duration, nil
}

// FakeLinear returns calibrations for a chain of n qubits.
// Cross resonance is calibrated from q to q+1 for even q and from q+1 to q for odd q.
func FakeLinear(n int) *CalibrationMap {
	c := &CalibrationMap{Dt: 2.2222222222222221e-10}
	for q := range n {
		x := Drag{Duration: 160, Amp: 0.18 + 0.005*float64(q), Sigma: 40, Beta: -0.5}
		sx := x
		sx.Amp /= 2
		c.Qubits = append(c.Qubits, QubitCalibration{Qubit: q, X: x, SX: sx})
	}
	for q := 0; q+1 < n; q++ {
		control, target := q, q+1
		if q%2 == 1 {
			control, target = q+1, q
		}
		c.CrossResonance = append(c.CrossResonance, CrossResonance{
			Control:        control,
			Target:         target,
			ControlChannel: 2*q + q%2,
			Pulse:          GaussianSquare{Duration: 704, Amp: 0.35, Angle: 0.1 * float64(q), Sigma: 64, Width: 448},
		})
	}
	return c
}
