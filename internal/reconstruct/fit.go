package reconstruct

import (
	"math"

	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/numeric"
	"github.com/horizon-array/airshower/internal/photoncount"
	"github.com/horizon-array/airshower/internal/shower"
)

const maxFitIterations = 200

// timeModel is the time-angle profile t(χ) = t0 + (Rp/c)·tan((π−ψ−χ)/2)
// a Cherenkov/fluorescence light front traces across the camera, per
// spec.md §4.5.
func timeModel(params []float64, chi float64) float64 {
	t0, rp, psi := params[0], params[1], params[2]
	return t0 + (rp/LightSpeed)*math.Tan((math.Pi-psi-chi)/2)
}

type profilePoint struct {
	chi, t, sigma float64
}

// collectProfile aggregates one (χ, t, σ) point per retained pixel: χ is
// the pixel's viewing direction angle within the SDP, t is its count-
// weighted mean arrival time, and σ = Δt/√N is its count-statistics error,
// per spec.md §4.5 "build (χ_i,t_i) with errors from count statistics".
func (r *Reconstructor) collectProfile(cube *photoncount.Cube, sdpToWorld geom.Rotation) []profilePoint {
	toLocal := sdpToWorld.Inverse()
	var points []profilePoint

	for it := cube.Iterator(); it.Next(); {
		x, y := it.X(), it.Y()
		total := it.SumBins()
		if total <= 0 {
			continue
		}

		var weightedTime float64
		for bin, v := range cube.Bins(x, y) {
			if v <= 0 {
				continue
			}
			t := cube.StartTime() + (float64(bin)+0.5)*cube.BinWidth()
			weightedTime += float64(v) * t
		}
		meanTime := weightedTime / float64(total)
		sigma := cube.BinWidth() / math.Sqrt(float64(total))

		local := toLocal.Apply(it.Direction())
		chi := math.Atan2(local.Y, local.X)

		points = append(points, profilePoint{chi: chi, t: meanTime, sigma: sigma})
	}
	return points
}

// MonocularFit fits the retained signal's time-angle profile for (t0, Rp,
// ψ) via Levenberg-Marquardt and builds the corresponding Shower, per
// spec.md §4.5. A degenerate fit (too few points, non-convergence, or an
// unphysical Rp/ψ) returns the Rp ≤ 0 sentinel Shower, per spec.md §7.
func (r *Reconstructor) MonocularFit(cube *photoncount.Cube, sdpToWorld geom.Rotation) shower.Shower {
	points := r.collectProfile(cube, sdpToWorld)
	if len(points) < 3 {
		return invalidShower()
	}

	problem := numeric.Problem{
		X:     make([]float64, len(points)),
		Y:     make([]float64, len(points)),
		Sigma: make([]float64, len(points)),
		Model: timeModel,
	}
	minTime := points[0].t
	for i, p := range points {
		problem.X[i] = p.chi
		problem.Y[i] = p.t
		problem.Sigma[i] = p.sigma
		if p.t < minTime {
			minTime = p.t
		}
	}

	init := []float64{minTime, r.cfg.ImpactMax / 4, math.Pi / 2}
	bounds := []numeric.Bound{{}, {Min: 1, Max: r.cfg.ImpactMax}, {Min: 1e-3, Max: math.Pi - 1e-3}}

	fit := numeric.LevenbergMarquardt(problem, init, bounds, maxFitIterations)
	t0, rp, psi := fit.Params[0], fit.Params[1], fit.Params[2]
	if !fit.Converged || rp <= 0 || psi <= 0 || psi >= math.Pi {
		return invalidShower()
	}

	s, err := MakeShower(t0, rp, psi, sdpToWorld)
	if err != nil {
		return invalidShower()
	}
	return s
}

// HybridFit fixes (Rp, ψ) from a measured Cherenkov ground-impact point,
// treated as the axis's point of closest approach to the detector (the
// same definition montecarlo.GenerateShower uses for impact_param), and
// fits only t0, per spec.md §4.5.
func (r *Reconstructor) HybridFit(cube *photoncount.Cube, impact geom.Vector3, sdpToWorld geom.Rotation) shower.Shower {
	local := sdpToWorld.Inverse().Apply(impact)
	rp := math.Hypot(local.X, local.Y)
	if rp <= 0 {
		return invalidShower()
	}
	psi := math.Atan2(local.Y, local.X) - math.Pi/2
	for psi <= 0 {
		psi += math.Pi
	}
	for psi >= math.Pi {
		psi -= math.Pi
	}

	points := r.collectProfile(cube, sdpToWorld)
	if len(points) == 0 {
		return invalidShower()
	}
	var sum, weight float64
	for _, p := range points {
		model := timeModel([]float64{0, rp, psi}, p.chi)
		w := 1 / (p.sigma * p.sigma)
		sum += w * (p.t - model)
		weight += w
	}
	t0 := sum / weight

	s, err := MakeShower(t0, rp, psi, sdpToWorld)
	if err != nil {
		return invalidShower()
	}
	return s
}

// MakeShower builds a Shower from a fit's geometric parameters: an axis at
// angle ψ within the SDP, whose point of closest approach to the detector
// (the world origin) is at perpendicular distance Rp. A purely geometric
// fit recovers no energy or longitudinal profile, so Energy and Profile
// carry trivial placeholders; callers needing the reconstructed geometry
// should read Axis() and Rp(s), not Energy or Profile.
func MakeShower(t0, rp, psi float64, sdpToWorld geom.Rotation) (shower.Shower, error) {
	axisLocal := geom.Vector3{X: math.Cos(psi), Y: math.Sin(psi)}
	perpLocal := geom.Vector3{X: -math.Sin(psi), Y: math.Cos(psi)}

	axis := sdpToWorld.Apply(axisLocal)
	start := sdpToWorld.Apply(perpLocal).Scale(rp)

	return shower.New(t0, start, axis, LightSpeed, 1, shower.ConstantProfile{N: 1, X: 1})
}

// Rp returns the perpendicular distance from the detector (world origin)
// to s's axis line: the reconstructed impact parameter, and the sentinel
// spec.md §7 uses to flag a failed fit (Rp ≤ 0).
func Rp(s shower.Shower) float64 {
	axis := s.Axis()
	along := axis.Scale(s.StartPosition.Dot(axis))
	return s.StartPosition.Sub(along).Mag()
}

// PsiOf recovers a MakeShower-built shower's ψ by rebuilding the same
// canonical SDP rotation MakeShower used (axis × StartPosition.Unit() is
// exactly that plane's normal, since MakeShower builds both from an
// orthogonal local basis a rotation preserves) and reading the axis's angle
// within it.
func PsiOf(s shower.Shower) float64 {
	if s.StartPosition.IsZero() {
		return 0
	}
	perpUnit := s.StartPosition.Unit()
	axis := s.Axis()
	normal := axis.Cross(perpUnit)
	if normal.IsZero() {
		return 0
	}
	sdpToWorld := geom.RotationFromPlaneNormal(normal.Unit())
	local := sdpToWorld.Inverse().Apply(axis)
	return math.Atan2(local.Y, local.X)
}
