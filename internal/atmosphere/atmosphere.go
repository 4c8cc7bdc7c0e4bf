// Package atmosphere models the exponential density/refractivity profile
// used by the Monte Carlo generator to relate a shower's geometric position
// to slant depth, per spec.md §4.3.
package atmosphere

import "math"

// Profile is an exponential atmosphere: density falls off as
// rho(h) = rhoSea * exp(-h/H), and refractivity tracks density linearly.
type Profile struct {
	ScaleHeight float64 // H, cm
	RhoSea      float64 // g/cm^3 at sea level
	RefracSea   float64 // refractive index n at sea level
}

// NewProfile builds a Profile from the configured atmospheric constants.
func NewProfile(scaleHeight, rhoSea, refracSea float64) Profile {
	return Profile{ScaleHeight: scaleHeight, RhoSea: rhoSea, RefracSea: refracSea}
}

// Density returns rho(h) at height h above sea level (cm).
func (p Profile) Density(h float64) float64 {
	return p.RhoSea * math.Exp(-h/p.ScaleHeight)
}

// Refractivity returns n(h) - 1, scaling the sea-level value of
// delta_sea = refracSea - 1 by the density ratio rho(h)/rhoSea.
func (p Profile) Refractivity(h float64) float64 {
	deltaSea := p.RefracSea - 1
	return deltaSea * p.Density(h) / p.RhoSea
}

// RefractiveIndex returns n(h) = 1 + Refractivity(h).
func (p Profile) RefractiveIndex(h float64) float64 {
	return 1 + p.Refractivity(h)
}

// SlantDepth integrates rho(h) ds along a straight path from height h0 to h1
// at the given zenith cosine (cos of the angle from vertical; must be > 0
// for an upward/downward-going path away from horizontal). Returns the
// column depth in g/cm^2 traversed.
//
// For the exponential profile this integrates analytically:
// X = (rhoSea * H / |cosZenith|) * |exp(-h0/H) - exp(-h1/H)|.
func (p Profile) SlantDepth(h0, h1, cosZenith float64) float64 {
	if cosZenith == 0 {
		return math.Inf(1)
	}
	return (p.RhoSea * p.ScaleHeight / math.Abs(cosZenith)) * math.Abs(math.Exp(-h0/p.ScaleHeight)-math.Exp(-h1/p.ScaleHeight))
}
