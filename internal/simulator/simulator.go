// Package simulator steps a Shower down its axis, produces fluorescence and
// Cherenkov photons at each depth increment, ray-traces each through the
// Schmidt optics and deposits counts in a photoncount.Cube, per spec.md
// §4.4. Grounded on original_source/cherenkov_lib/Simulator.h.
package simulator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/horizon-array/airshower/internal/atmosphere"
	"github.com/horizon-array/airshower/internal/config"
	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/numeric"
	"github.com/horizon-array/airshower/internal/optics"
	"github.com/horizon-array/airshower/internal/shower"
)

// electronRestEnergyMeV is m_e c^2.
const electronRestEnergyMeV = 0.511

// lightSpeed is c in cm/s.
const lightSpeed = 2.99792458e10

// cherenkovEnergyGrid is the number of log-spaced samples used to integrate
// the Cherenkov yield over the electron energy spectrum.
const cherenkovEnergyGrid = 20

// Simulator holds everything needed to simulate one shower: the detector's
// fixed geometry and optics, the atmosphere it sits in, and a seeded RNG
// source for every stochastic decision it makes (thinning draws, photon
// directions, timing jitter, background noise).
type Simulator struct {
	cfg    config.Config
	optCfg optics.Config
	atm    atmosphere.Profile
	ground geom.Plane
	toWorld geom.Rotation
	src    rand.Source
}

// New constructs a Simulator from cfg, failing if cfg is invalid.
func New(cfg config.Config, src rand.Source) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	return &Simulator{
		cfg: cfg,
		optCfg: optics.Config{
			MirrorRadius:       cfg.MirrorRadius,
			StopDiameter:       cfg.StopDiameter,
			MainMirrorSize:     cfg.MainMirrorSize,
			PMTClusterSize:     cfg.PMTClusterSize,
			CheckBackCollision: cfg.CheckBackCollision,
		},
		atm:    atmosphere.NewProfile(cfg.ScaleHeight, cfg.RhoSea, cfg.RefracSea),
		ground: geom.MakePlane(geom.Vector3{Y: 1}, geom.Vector3{Y: -cfg.DetectorPositionY}),
		toWorld: geom.MakeRotation(cfg.ElevationAngle),
		src:    src,
	}, nil
}

// GroundPlane returns a copy of the simulator's fixed ground plane, world
// y = -DetectorPositionY (the detector's local origin is its own position).
func (s *Simulator) GroundPlane() geom.Plane { return s.ground }

// height converts a world-frame position (relative to the detector) to a
// height above sea level.
func (s *Simulator) height(p geom.Vector3) float64 {
	return p.Y + s.cfg.DetectorPositionY
}

// MinTime is the earliest time we start recording photons: the time it
// would take a photon to travel directly from the shower's current
// position to the detector.
func (s *Simulator) MinTime(sh shower.Shower) float64 {
	return sh.Ray.P.Mag() / lightSpeed
}

// MaxTime is the latest time we stop recording: the time for the shower to
// reach the ground along its axis, plus a configured multiple of the time
// for a photon from the ground impact point to reach the detector.
func (s *Simulator) MaxTime(sh shower.Shower) float64 {
	dt := sh.Ray.TimeToPlane(s.ground)
	if math.IsInf(dt, 0) || dt < 0 {
		dt = 0
	}
	groundPoint := sh.Ray.P.Add(sh.Ray.V.Scale(dt))
	toDetector := groundPoint.Mag() / lightSpeed
	return sh.Ray.T + dt + s.cfg.ImpactBuffr*toDetector
}

// meanElectronEnergyMeV approximates the mean electron energy in the shower
// at the given age: near the shower max (age 1) electrons average half the
// configured spectral ceiling, falling toward the configured threshold as
// the shower ages past 2.
func (s *Simulator) meanElectronEnergyMeV(age float64) float64 {
	e := s.cfg.EnergyMaxMeV * (2 - age) / 2
	if e < s.cfg.EnergyThresMeV {
		e = s.cfg.EnergyThresMeV
	}
	if e > s.cfg.EnergyMaxMeV {
		e = s.cfg.EnergyMaxMeV
	}
	return e
}

func betaOf(energyMeV float64) float64 {
	total := energyMeV + electronRestEnergyMeV
	ratio := electronRestEnergyMeV / total
	return math.Sqrt(1 - ratio*ratio)
}

// ThetaC returns the Cherenkov critical angle for a shower at its current
// position: acos(1/(n*beta)) evaluated at the mean electron energy implied
// by the shower's current age, or 0 if the shower is below Cherenkov
// threshold there.
func (s *Simulator) ThetaC(sh shower.Shower) float64 {
	age, n := s.ageAndRefractiveIndex(sh)
	beta := betaOf(s.meanElectronEnergyMeV(age))
	if beta*n <= 1 {
		return 0
	}
	return math.Acos(1 / (beta * n))
}

// currentDepth returns the slant depth accumulated between the shower's
// start position and its current position.
func (s *Simulator) currentDepth(sh shower.Shower) float64 {
	return sh.SlantDepthTraveled(func(from, to geom.Vector3) float64 {
		cosZenith := -sh.Axis().Y
		return s.atm.SlantDepth(s.height(from), s.height(to), cosZenith)
	})
}

func (s *Simulator) ageAndRefractiveIndex(sh shower.Shower) (age, n float64) {
	age = sh.Profile.Age(s.currentDepth(sh))
	n = s.atm.RefractiveIndex(s.height(sh.Ray.P))
	return age, n
}

// IonizationLossRate returns alpha_eff(s), the effective fluorescence
// photon yield per charged particle per g/cm^2, a two-parameter fit falling
// with shower age, in the spirit of the Kakimoto/Nagano parameterization
// (spec.md §4.4 leaves the exact functional form pluggable).
func (s *Simulator) IonizationLossRate(sh shower.Shower) float64 {
	age, _ := s.ageAndRefractiveIndex(sh)
	return s.cfg.FlorYieldA / (s.cfg.FlorYieldB + age)
}

// DetectorEfficiency is the product of quantum efficiency, filter
// transmittance and mirror reflectance, collapsed into one configured
// scalar per spec.md §9's "pluggable callables" allowance.
func (s *Simulator) DetectorEfficiency() float64 {
	return s.cfg.OpticalEfficiency
}

// SphereFraction returns the fraction of 4π steradians the detector's stop
// subtends as seen from viewPoint (a world-frame position relative to the
// detector): (A_stop * cos(phi)) / (4*pi*r^2), where phi is the angle
// between the direction from viewPoint to the detector and the stop's
// inward normal (the direction light entering the detector travels).
func (s *Simulator) SphereFraction(viewPoint geom.Vector3) float64 {
	r := viewPoint.Mag()
	if r == 0 {
		return 0
	}
	toDetector := viewPoint.Scale(-1 / r)
	stopNormal := s.toWorld.Apply(geom.Vector3{Z: 1})
	cosPhi := toDetector.Dot(stopNormal)
	if cosPhi <= 0 {
		return 0
	}
	areaStop := math.Pi * (s.cfg.StopDiameter / 2) * (s.cfg.StopDiameter / 2)
	return (areaStop * cosPhi) / (4 * math.Pi * r * r)
}

// cherenkovYieldPerElectron integrates a Frank-Tamm-shaped yield over a
// log-spaced electron energy grid from EnergyThresMeV to EnergyMaxMeV,
// weighted by an exponential spectrum centered on the age-dependent mean
// electron energy, realizing spec.md §4.4's "integrating Nerling's yield
// over the electron energy spectrum on a grid".
func (s *Simulator) cherenkovYieldPerElectron(age, n float64) float64 {
	thresh, max := s.cfg.EnergyThresMeV, s.cfg.EnergyMaxMeV
	if max <= thresh {
		return 0
	}
	meanE := s.meanElectronEnergyMeV(age)

	logLo, logHi := math.Log(thresh), math.Log(max)
	dlog := (logHi - logLo) / cherenkovEnergyGrid

	integral := 0.0
	prevE, prevVal := 0.0, 0.0
	for i := 0; i <= cherenkovEnergyGrid; i++ {
		e := math.Exp(logLo + float64(i)*dlog)
		beta := betaOf(e)
		val := 0.0
		if beta*n > 1 {
			frankTamm := s.cfg.CherenkovA * (1 - 1/(beta*beta*n*n))
			weight := math.Exp(-e/meanE) / meanE
			val = frankTamm * weight * s.cfg.CherenkovB
		}
		if i > 0 {
			integral += 0.5 * (val + prevVal) * (e - prevE)
		}
		prevE, prevVal = e, val
	}
	return integral
}

// GenerateCherenkovPhoton builds a photon emitted from the shower's current
// position with a direction drawn from the exp(-theta/thetaC)/sin(theta)
// angular distribution about the shower axis, per spec.md §4.4.
func (s *Simulator) GenerateCherenkovPhoton(sh shower.Shower) geom.Ray {
	thetaC := s.ThetaC(sh)
	theta := sampleCherenkovAngle(thetaC, s.src)
	phi := rand.New(s.src).Float64() * 2 * math.Pi

	axis := sh.Axis()
	tangent := geom.RandNormal(axis, phi)
	dir := axis.Scale(math.Cos(theta)).Add(tangent.Scale(math.Sin(theta))).Unit()

	return geom.Ray{T: sh.Ray.T, P: sh.Ray.P, V: dir.Scale(lightSpeed)}
}

// sampleCherenkovAngle draws theta from the exponential part of
// p(theta) ∝ exp(-theta/thetaC)/sin(theta) — the 1/sin(theta) factor matters
// only very close to theta=0 and is dropped here, per spec.md §9's
// pluggable-callable allowance for this distribution's exact form. A
// non-positive thetaC (below Cherenkov threshold) always returns 0.
func sampleCherenkovAngle(thetaC float64, src rand.Source) float64 {
	if thetaC <= 0 {
		return 0
	}
	u := rand.New(src).Float64()
	theta := -thetaC * math.Log(1-u)
	if theta > math.Pi/2 {
		theta = math.Pi / 2
	}
	return theta
}

// JitteredRay builds a photon at shower's current position and time,
// pointed along direction, with its emission time jittered by a
// Normal(0, TimeJitter) offset, per spec.md §4.4's timing model.
func (s *Simulator) JitteredRay(sh shower.Shower, direction geom.Vector3) geom.Ray {
	t := numeric.NormalJitter(sh.Ray.T, s.cfg.TimeJitter, s.src)
	return geom.Ray{T: t, P: sh.Ray.P, V: direction.Unit().Scale(lightSpeed)}
}
