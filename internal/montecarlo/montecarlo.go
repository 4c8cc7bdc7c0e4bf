// Package montecarlo draws random showers for the simulation, and builds
// Shower values deterministically from an explicit axis, impact geometry
// and energy, per spec.md §4.3.
package montecarlo

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/horizon-array/airshower/internal/atmosphere"
	"github.com/horizon-array/airshower/internal/config"
	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/shower"
)

// LightSpeed is c in cm/s, the speed assigned to every shower's ray.
const LightSpeed = 2.99792458e10

// Generator samples random showers and builds them from their physical
// parameters, following the constants set out in
// original_source/cherenkov_lib/MonteCarlo.h.
type Generator struct {
	cfg config.Config
	atm atmosphere.Profile
}

// NewGenerator builds a Generator from cfg, deriving the atmosphere profile
// from cfg's atmospheric fields.
func NewGenerator(cfg config.Config) Generator {
	return Generator{
		cfg: cfg,
		atm: atmosphere.NewProfile(cfg.ScaleHeight, cfg.RhoSea, cfg.RefracSea),
	}
}

// topOfAtmosphere is the height above which the atmosphere is thin enough
// that the column depth traversed above it is negligible: ten scale
// heights, where the density has fallen by a factor of e^-10.
func (g Generator) topOfAtmosphere() float64 {
	return 10 * g.cfg.ScaleHeight
}

// sampleEnergy draws a primary energy from the power-law spectrum
// p(E) ∝ E^-EnergyPow over [EnergyMin, EnergyMax], via inverse-CDF sampling.
func (g Generator) sampleEnergy(src rand.Source) float64 {
	u := rand.New(src).Float64()
	n := g.cfg.EnergyPow
	emin, emax := g.cfg.EnergyMin, g.cfg.EnergyMax
	if n == 1 {
		return emin * math.Pow(emax/emin, u)
	}
	p := 1 - n
	lo, hi := math.Pow(emin, p), math.Pow(emax, p)
	return math.Pow(lo+u*(hi-lo), 1/p)
}

// sampleCosine draws a zenith-angle cosine uniformly over
// [CosineMin, CosineMax].
func (g Generator) sampleCosine(src rand.Source) float64 {
	u := rand.New(src).Float64()
	return g.cfg.CosineMin + u*(g.cfg.CosineMax-g.cfg.CosineMin)
}

// sampleImpactParam draws an impact parameter area-uniformly over the disk
// of radius ImpactMax, so that showers landing farther from the detector
// (more area to cover) are proportionately more likely.
func (g Generator) sampleImpactParam(src rand.Source) float64 {
	u := rand.New(src).Float64()
	return math.Sqrt(u) * g.cfg.ImpactMax
}

// sampleAzimuth draws an angle uniformly over [0, 2π).
func sampleAzimuth(src rand.Source) float64 {
	return rand.New(src).Float64() * 2 * math.Pi
}

// Xmax returns the depth of shower maximum for a primary of the given
// energy (eV) and zenith-angle cosine, per
// original_source/cherenkov_lib/MonteCarlo.h's x_max_1/2/3 constants: an
// elongation-rate fit in log10(E/1 EeV) with a zenith-angle correction term.
func (g Generator) Xmax(energy, cosZenith float64) float64 {
	return g.cfg.XMax1 + g.cfg.XMax2*math.Log10(energy/1e18) - g.cfg.XMax3*cosZenith*cosZenith
}

// Nmax returns the shower-maximum electron count implied by energy, using
// the configured mean ionization energy per particle, NMaxRatio.
func (g Generator) Nmax(energy float64) float64 {
	return energy / g.cfg.NMaxRatio
}

// GenerateShower constructs a Shower given an explicit direction, impact
// parameter, impact angle (the azimuth, about axis, of the point of
// closest approach to the world origin) and energy, per spec.md §4.3.
// axis need not be normalized, but must have a nonzero, downward-pointing
// y-component (a shower must move toward the ground; world y is vertical,
// per geom.MakeRotation's elevation convention).
func (g Generator) GenerateShower(axis geom.Vector3, impactParam, impactAngle, energy float64) (shower.Shower, error) {
	if axis.IsZero() {
		return shower.Shower{}, fmt.Errorf("montecarlo: axis must be non-zero")
	}
	axisUnit := axis.Unit()
	if axisUnit.Y >= 0 {
		return shower.Shower{}, fmt.Errorf("montecarlo: axis must point downward, got y=%g", axisUnit.Y)
	}
	if impactParam < 0 {
		return shower.Shower{}, fmt.Errorf("montecarlo: impact_param must be non-negative, got %g", impactParam)
	}

	closestApproach := geom.RandNormal(axisUnit, impactAngle).Scale(impactParam)

	cosZenith := -axisUnit.Y
	xmax := g.Xmax(energy, cosZenith)
	nmax := g.Nmax(energy)
	profile := shower.GaisserHillasProfile{NmaxVal: nmax, XmaxVal: xmax}

	s := (g.topOfAtmosphere() - closestApproach.Y) / axisUnit.Y
	startPosition := closestApproach.Add(axisUnit.Scale(s))

	return shower.New(0, startPosition, axisUnit, LightSpeed, energy, profile)
}

// Generate draws a fully random shower: a direction from the configured
// zenith-cosine and uniform-azimuth distributions, an impact parameter and
// angle, and an energy, then builds it via GenerateShower.
func (g Generator) Generate(src rand.Source) (shower.Shower, error) {
	cosZenith := g.sampleCosine(src)
	sinZenith := math.Sqrt(1 - cosZenith*cosZenith)
	azimuth := sampleAzimuth(src)
	axis := geom.Vector3{
		X: sinZenith * math.Cos(azimuth),
		Z: sinZenith * math.Sin(azimuth),
		Y: -cosZenith,
	}

	impactParam := g.sampleImpactParam(src)
	impactAngle := sampleAzimuth(src)
	energy := g.sampleEnergy(src)

	return g.GenerateShower(axis, impactParam, impactAngle, energy)
}
