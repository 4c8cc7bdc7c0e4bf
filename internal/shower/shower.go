// Package shower defines the Shower value type: a Ray plus the
// longitudinal-profile parameters the simulator needs to evaluate electron
// count at any slant depth. Per spec.md §9 "inheritance collapse", Shower
// embeds geom.Ray as a field, not a base class, and the original's
// IntensityFunctor interface becomes the Profile interface below.
package shower

import (
	"fmt"
	"math"

	"github.com/horizon-array/airshower/internal/geom"
)

// Profile computes the number of charged particles N_e at slant depth x
// (g/cm^2) for a shower. GaisserHillasProfile is the only production
// profile; ConstantProfile is a trivial stand-in without a physical maximum,
// used by tests and for the reconstructor's fitted showers.
type Profile interface {
	ElectronCount(x float64) float64
	// Age returns the shower age s(x) = 3x/(x+2*Xmax).
	Age(x float64) float64
	Xmax() float64
	Nmax() float64
}

// GaisserHillasProfile is the standard longitudinal profile
// N_e(X) = Nmax * ((X-X0)/(Xmax-X0))^((Xmax-X0)/Lambda) * exp((Xmax-X)/Lambda),
// approximated here (X0 = 0) by the equivalent form used by the original
// simulator: N_e(s) = Nmax * exp((Xmax/Lambda)*(1 - X/Xmax + ln(X/Xmax))),
// with Lambda = 70 g/cm^2.
type GaisserHillasProfile struct {
	NmaxVal, XmaxVal float64
}

// Lambda is the Gaisser-Hillas interaction length, g/cm^2.
const Lambda = 70.0

func (g GaisserHillasProfile) ElectronCount(x float64) float64 {
	if x <= 0 {
		return 0
	}
	ratio := x / g.XmaxVal
	return g.NmaxVal * math.Exp((g.XmaxVal/Lambda)*(1-ratio+math.Log(ratio)))
}

func (g GaisserHillasProfile) Age(x float64) float64 {
	return 3 * x / (x + 2*g.XmaxVal)
}

func (g GaisserHillasProfile) Xmax() float64 { return g.XmaxVal }
func (g GaisserHillasProfile) Nmax() float64 { return g.NmaxVal }

// ConstantProfile holds N_e fixed, for tests exercising geometry without
// needing a physical longitudinal shape.
type ConstantProfile struct {
	N, X float64
}

func (c ConstantProfile) ElectronCount(float64) float64 { return c.N }
func (c ConstantProfile) Age(x float64) float64          { return 3 * x / (x + 2*c.X) }
func (c ConstantProfile) Xmax() float64                  { return c.X }
func (c ConstantProfile) Nmax() float64                  { return c.N }

// Shower is a value type: the current ray state, the fixed origin the axis
// was launched from, the primary energy, and a longitudinal Profile.
type Shower struct {
	Ray geom.Ray

	StartTime     float64
	StartPosition geom.Vector3

	Energy  float64 // eV
	Profile Profile
}

// New constructs a Shower. axis must be a unit vector; energy and the
// profile's Xmax/Nmax must be strictly positive, per spec.md §3 invariants.
func New(t0 float64, x0, axis geom.Vector3, speed, energy float64, profile Profile) (Shower, error) {
	if energy <= 0 {
		return Shower{}, fmt.Errorf("shower: energy must be positive, got %g", energy)
	}
	if profile.Xmax() <= 0 {
		return Shower{}, fmt.Errorf("shower: Xmax must be positive, got %g", profile.Xmax())
	}
	if axis.IsZero() {
		return Shower{}, fmt.Errorf("shower: axis direction must be non-zero")
	}
	ray := geom.NewRay(t0, x0, axis.Unit().Scale(speed))
	return Shower{
		Ray:           ray,
		StartTime:     t0,
		StartPosition: x0,
		Energy:        energy,
		Profile:       profile,
	}, nil
}

// Axis returns the shower's constant direction of travel.
func (s Shower) Axis() geom.Vector3 { return s.Ray.V.Unit() }

// IncrementPosition advances the underlying ray, keeping the axis direction
// fixed (per spec.md §3, "the axis direction is constant").
func (s Shower) IncrementPosition(dt float64) Shower {
	s.Ray = s.Ray.IncrementPosition(dt)
	return s
}

// SlantDepthTraveled returns the (monotonically increasing) slant depth
// accumulated between StartPosition and the shower's current position,
// given a function depthAt(from, to) supplied by the caller (typically
// wrapping atmosphere.Profile.SlantDepth). This indirection keeps Shower
// free of an atmosphere.Profile dependency.
func (s Shower) SlantDepthTraveled(depthAt func(from, to geom.Vector3) float64) float64 {
	return depthAt(s.StartPosition, s.Ray.P)
}
