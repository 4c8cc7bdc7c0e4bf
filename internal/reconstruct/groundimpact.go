package reconstruct

import (
	"math"

	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/photoncount"
)

// FindGroundImpact locates a candidate Cherenkov ground-impact point from
// every retained pixel whose direction points below the horizon: their
// count-weighted centroid direction, intersected with the ground plane.
// Returns false if the total below-horizon weight does not clear
// impact_buffr·σ above the expected ground noise, per spec.md §4.5.
func (r *Reconstructor) FindGroundImpact(cube *photoncount.Cube) (geom.Vector3, bool) {
	var weightedDir geom.Vector3
	var totalWeight, totalMu float64

	for it := cube.Iterator(); it.Next(); {
		dir := it.Direction()
		if dir.Dot(r.ground.Normal()) >= 0 {
			continue
		}
		w := float64(it.SumBins())
		if w <= 0 {
			continue
		}
		weightedDir = weightedDir.Add(dir.Scale(w))
		totalWeight += w
		totalMu += r.pixelNoiseMean(cube, dir)
	}

	if totalWeight <= 0 {
		return geom.Vector3{}, false
	}
	sigma := math.Sqrt(totalMu)
	if totalWeight <= r.cfg.ImpactBuffr*sigma {
		return geom.Vector3{}, false
	}

	centroid := weightedDir.Unit()
	ray := geom.NewRay(0, geom.Vector3{}, centroid)
	dt := ray.TimeToPlane(r.ground)
	if math.IsInf(dt, 0) || dt < 0 {
		return geom.Vector3{}, false
	}
	return ray.IncrementPosition(dt).P, true
}
