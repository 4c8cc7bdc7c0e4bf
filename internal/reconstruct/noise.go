package reconstruct

import (
	"math"

	"github.com/horizon-array/airshower/internal/photoncount"
)

// SubtractAverageNoise subtracts the expected per-bin noise mean μ from
// every existing bin of every valid pixel, clamping at 0 (SetBin's
// contract), per spec.md §4.5.
func (r *Reconstructor) SubtractAverageNoise(cube *photoncount.Cube, numBins int) {
	for it := cube.Iterator(); it.Next(); {
		x, y := it.X(), it.Y()
		mu := r.pixelNoiseMean(cube, it.Direction())
		delta := int64(math.Round(mu))
		bins := cube.Bins(x, y)
		for bin := range bins {
			cube.SetBin(x, y, bin, cube.GetBin(x, y, bin)-delta)
		}
	}
}

// ThreeSigmaFilter zeroes any bin below noise_thresh·σ, where σ = √μ is the
// per-pixel noise standard deviation, per spec.md §4.5.
func (r *Reconstructor) ThreeSigmaFilter(cube *photoncount.Cube, numBins int) {
	for it := cube.Iterator(); it.Next(); {
		x, y := it.X(), it.Y()
		mu := r.pixelNoiseMean(cube, it.Direction())
		sigma := math.Sqrt(mu)
		bins := cube.Bins(x, y)
		for bin, v := range bins {
			if float64(v) < r.cfg.NoiseThresh*sigma {
				cube.SetBin(x, y, bin, 0)
			}
		}
	}
}
