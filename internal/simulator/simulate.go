package simulator

import (
	"math"
	"math/rand"

	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/numeric"
	"github.com/horizon-array/airshower/internal/obslog"
	"github.com/horizon-array/airshower/internal/optics"
	"github.com/horizon-array/airshower/internal/photoncount"
	"github.com/horizon-array/airshower/internal/shower"
)

// maxSimulationSteps bounds the depth-stepping loop so a misconfigured
// shower (one that never reaches the ground plane) cannot loop forever.
const maxSimulationSteps = 100000

// SimulateShower steps shower down its axis in depth_step increments,
// emitting and ray-tracing fluorescence and Cherenkov photons at each step,
// then adds sky/ground background noise, per spec.md §4.4.
func (s *Simulator) SimulateShower(sh shower.Shower) *photoncount.Cube {
	minTime := s.MinTime(sh)
	maxTime := s.MaxTime(sh)

	cube := photoncount.New(photoncount.Params{
		NAcross:         s.cfg.NPMTAcross,
		StartTime:       minTime,
		BinWidth:        s.cfg.TimeBin,
		PMTAngularSize:  s.cfg.PMTAngularSize,
		PMTLinearSize:   s.cfg.PMTLinearSize,
		DetectorToWorld: s.toWorld,
	})

	obslog.Logf("simulator: simulating shower energy=%.3g eV axis=%+v", sh.Energy, sh.Axis())

	current := sh
	steps := 0
	for ; steps < maxSimulationSteps; steps++ {
		if current.Ray.T > maxTime {
			break
		}
		if s.ground.SignedDistance(current.Ray.P) <= 0 {
			break
		}
		h := s.height(current.Ray.P)
		rho := s.atm.Density(h)
		if rho <= 0 {
			break
		}
		ds := s.cfg.DepthStep / rho
		if cosZenith := -current.Axis().Y; cosZenith > 0 {
			// Downward path through the exponential profile: step to the
			// height h1 with exactly DepthStep more slant depth above it,
			// exp(-h1/H) = exp(-h/H) + DepthStep*cosZenith/(rhoSea*H).
			e1 := math.Exp(-h/s.atm.ScaleHeight) + s.cfg.DepthStep*cosZenith/(s.atm.RhoSea*s.atm.ScaleHeight)
			ds = (h + s.atm.ScaleHeight*math.Log(e1)) / cosZenith
		}
		dt := ds / lightSpeed
		current = current.IncrementPosition(dt)

		s.ViewFluorescencePhotons(current, cube)
		s.ViewCherenkovPhotons(current, cube)
	}

	s.addBackgroundNoise(cube, minTime, maxTime)
	obslog.Logf("simulator: finished after %d depth steps", steps)
	return cube
}

// ViewFluorescencePhotons simulates the isotropic fluorescence production
// and detection at shower's current position, per spec.md §4.4.
func (s *Simulator) ViewFluorescencePhotons(sh shower.Shower, cube *photoncount.Cube) {
	depth := s.currentDepth(sh)
	ne := sh.Profile.ElectronCount(depth)
	if ne <= 0 {
		return
	}
	nf := s.IonizationLossRate(sh) * s.cfg.DepthStep * ne

	captureFrac := s.SphereFraction(sh.Ray.P)
	if captureFrac <= 0 {
		return
	}

	mean := nf * captureFrac / float64(s.cfg.FlorThin)
	loops := numeric.PoissonSample(mean, s.src)
	rng := rand.New(s.src)
	for i := 0; i < loops; i++ {
		stopLocal := optics.RandomStopImpact(s.optCfg, rng)
		stopWorld := s.toWorld.Apply(stopLocal)
		direction := stopWorld.Sub(sh.Ray.P).Unit()
		photon := s.JitteredRay(sh, direction)
		s.SimulateOptics(photon, cube, s.cfg.FlorThin)
	}
}

// ViewCherenkovPhotons simulates the directional Cherenkov production at
// shower's current position: photons are emitted toward the ground,
// reflected (specularly or diffusely per configuration), then ray-traced
// to the stop. Only ground-reflected photons are ever recorded — there is
// no back-scattering path, per spec.md §4.4.
func (s *Simulator) ViewCherenkovPhotons(sh shower.Shower, cube *photoncount.Cube) {
	depth := s.currentDepth(sh)
	ne := sh.Profile.ElectronCount(depth)
	if ne <= 0 {
		return
	}
	age, n := s.ageAndRefractiveIndex(sh)
	nc := s.cherenkovYieldPerElectron(age, n) * ne * s.cfg.DepthStep

	mean := nc / float64(s.cfg.ChkvThin)
	loops := numeric.PoissonSample(mean, s.src)
	rng := rand.New(s.src)
	for i := 0; i < loops; i++ {
		photon := s.GenerateCherenkovPhoton(sh)
		grounded, ok := intersectPlane(photon, s.ground)
		if !ok {
			continue
		}

		var reflectedDir geom.Vector3
		if s.cfg.CherenkovSpecularGround {
			reflectedDir = grounded.Reflect(s.ground.Normal()).V.Unit()
		} else {
			reflectedDir = lambertianDirection(s.ground.Normal(), rng)
		}
		reflected := geom.Ray{T: grounded.T, P: grounded.P, V: reflectedDir.Scale(lightSpeed)}
		s.SimulateOptics(reflected, cube, s.cfg.ChkvThin)
	}
}

// SimulateOptics takes a world-frame photon, propagates it to the
// corrector plane and ray-traces it through the Schmidt optics. If the
// photon never reaches the stop, is blocked, or misses the camera, no
// change is made to the cube; otherwise the appropriate bin is incremented
// by thinning, per original_source/cherenkov_lib/Simulator.h.
func (s *Simulator) SimulateOptics(photon geom.Ray, cube *photoncount.Cube, thinning int) {
	local := s.toLocalRay(photon)

	stopPlane := geom.MakePlane(geom.Vector3{Z: 1}, geom.Vector3{})
	atStop, ok := intersectPlane(local, stopPlane)
	if !ok {
		return
	}

	direction, ok := optics.Trace(atStop, s.optCfg)
	if !ok {
		return
	}
	cube.AddPhoton(atStop.T, direction, int64(thinning))
}

// toLocalRay rotates a world-frame ray (position and velocity both relative
// to the detector's origin) into the detector's local optics frame.
func (s *Simulator) toLocalRay(r geom.Ray) geom.Ray {
	inv := s.toWorld.Inverse()
	return geom.Ray{T: r.T, P: inv.Apply(r.P), V: inv.Apply(r.V)}
}

// intersectPlane advances r to its intersection with p, failing if r never
// reaches it (parallel, or the plane lies behind r's direction of travel).
func intersectPlane(r geom.Ray, p geom.Plane) (geom.Ray, bool) {
	dt := r.TimeToPlane(p)
	if math.IsInf(dt, 0) || dt < 0 {
		return geom.Ray{}, false
	}
	return r.IncrementPosition(dt), true
}

// lambertianDirection draws a direction from the cosine-weighted hemisphere
// about normal, the standard diffuse (Lambertian) reflection distribution.
func lambertianDirection(normal geom.Vector3, rng *rand.Rand) geom.Vector3 {
	u1, u2 := rng.Float64(), rng.Float64()
	r := math.Sqrt(u1)
	theta := 2 * math.Pi * u2
	local := geom.Vector3{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: math.Sqrt(math.Max(0, 1-u1))}
	return geom.RotationFromPlaneNormal(normal).Apply(local)
}

// addBackgroundNoise injects Poisson-distributed sky or ground background
// into every valid pixel, using GndNoise for pixels looking below the
// ground plane and SkyNoise otherwise, per spec.md §4.4/§4.2.
func (s *Simulator) addBackgroundNoise(cube *photoncount.Cube, minTime, maxTime float64) {
	duration := maxTime - minTime
	if duration <= 0 {
		return
	}
	numBins := cube.NumBins(duration)
	for it := cube.Iterator(); it.Next(); {
		rate := s.cfg.SkyNoise
		if it.Direction().Dot(s.ground.Normal()) < 0 {
			rate = s.cfg.GndNoise
		}
		lambda := rate * cube.PixelSolidAngle() * duration
		cube.AddNoiseMean(it.X(), it.Y(), lambda, numBins, s.src)
	}
}
