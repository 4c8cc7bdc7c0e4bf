// Package reconstruct implements the Reconstructor pipeline: noise removal,
// triggering, 3-D clustering, shower-detector-plane fit, and monocular/hybrid
// time-profile fits that recover shower geometry from a photon-count cube,
// per spec.md §4.5/§4.6. Grounded on
// original_source/cherenkov_lib/Reconstructor.h.
package reconstruct

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/horizon-array/airshower/internal/config"
	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/photoncount"
	"github.com/horizon-array/airshower/internal/shower"
)

// LightSpeed is c in cm/s.
const LightSpeed = 2.99792458e10

// Stage names the Reconstructor's position in its per-cube pipeline, per
// spec.md §4.6: RAW → NOISED → SUBTRACTED → FILTERED →
// TRIGGERED/UNTRIGGERED → PLANED → FIT.
type Stage int

const (
	StageRaw Stage = iota
	StageNoised
	StageSubtracted
	StageFiltered
	StageTriggered
	StageUntriggered
	StagePlaned
	StageFit
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "RAW"
	case StageNoised:
		return "NOISED"
	case StageSubtracted:
		return "SUBTRACTED"
	case StageFiltered:
		return "FILTERED"
	case StageTriggered:
		return "TRIGGERED"
	case StageUntriggered:
		return "UNTRIGGERED"
	case StagePlaned:
		return "PLANED"
	case StageFit:
		return "FIT"
	default:
		return "UNKNOWN"
	}
}

// Reconstructor holds the fixed detector/noise/trigger configuration and an
// owned RNG source for every stochastic decision (background injection).
type Reconstructor struct {
	cfg    config.Config
	ground geom.Plane
	src    rand.Source
	stage  Stage
}

// New constructs a Reconstructor from cfg, failing if cfg is invalid.
func New(cfg config.Config, src rand.Source) (*Reconstructor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}
	return &Reconstructor{
		cfg:    cfg,
		ground: geom.MakePlane(geom.Vector3{Y: 1}, geom.Vector3{Y: -cfg.DetectorPositionY}),
		src:    src,
		stage:  StageRaw,
	}, nil
}

// Stage reports the Reconstructor's current pipeline position.
func (r *Reconstructor) Stage() Stage { return r.stage }

// GroundPlane returns the reconstructor's fixed ground plane.
func (r *Reconstructor) GroundPlane() geom.Plane { return r.ground }

// pixelNoiseMean returns the expected noise count per bin for a pixel
// looking in direction dir: gnd_noise below the horizon, sky_noise above.
func (r *Reconstructor) pixelNoiseMean(cube *photoncount.Cube, dir geom.Vector3) float64 {
	rate := r.cfg.SkyNoise
	if dir.Dot(r.ground.Normal()) < 0 {
		rate = r.cfg.GndNoise
	}
	return rate * cube.PixelSolidAngle() * cube.BinWidth()
}

// AddNoise injects Poisson-distributed sky/ground background into every
// valid pixel across numBins time bins, per spec.md §4.2/§4.5.
func (r *Reconstructor) AddNoise(cube *photoncount.Cube, numBins int) {
	for it := cube.Iterator(); it.Next(); {
		mu := r.pixelNoiseMean(cube, it.Direction())
		cube.AddNoiseMean(it.X(), it.Y(), mu*float64(numBins), numBins, r.src)
	}
	r.stage = StageNoised
}

// Reconstruct runs the full pipeline against cube (already noised, or a
// purely simulated cube with no noise stage applied) and returns a Result.
// numBins bounds how many time bins ClearNoise and the triggering pass
// consider; callers typically pass photoncount.Cube.NumBins of the full
// record duration.
func (r *Reconstructor) Reconstruct(cube *photoncount.Cube, numBins int) Result {
	result := Result{RunID: uuid.New()}

	triggered := r.ClearNoise(cube, numBins)
	result.Triggered = triggered
	if !triggered {
		r.stage = StageUntriggered
		return result
	}
	r.stage = StageTriggered

	sdp, err := r.FitSDPlane(cube)
	if err != nil {
		result.MonoRecon = invalidShower()
		return result
	}
	r.stage = StagePlaned

	result.MonoRecon = r.MonocularFit(cube, sdp)

	impact, ok := r.FindGroundImpact(cube)
	result.ChkvTried = ok
	if ok {
		result.ChkvRecon = r.HybridFit(cube, impact, sdp)
	}
	r.stage = StageFit

	return result
}

// ClearNoise runs SubtractAverageNoise, ThreeSigmaFilter, triggering, plane-
// subset filtering and the spatiotemporal flood fill, returning whether the
// detector triggered. Everything surviving the flood remains in cube;
// everything else is zeroed, per spec.md §4.5 "ClearNoise".
func (r *Reconstructor) ClearNoise(cube *photoncount.Cube, numBins int) bool {
	r.SubtractAverageNoise(cube, numBins)
	r.stage = StageSubtracted

	r.ThreeSigmaFilter(cube, numBins)
	r.stage = StageFiltered

	trigState, hot := r.GetTriggeringState(cube, numBins)
	if !anyTrue(trigState) {
		return false
	}

	retained, sdp := r.FindPlaneSubset(cube, hot)
	visited := r.floodFill(cube, retained, sdp)
	r.zeroUnvisited(cube, visited, numBins)

	return true
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}

func invalidShower() shower.Shower {
	s, _ := shower.New(0, geom.Vector3{}, geom.Vector3{Z: -1}, LightSpeed, 1, shower.ConstantProfile{N: 1, X: 1})
	return s
}
