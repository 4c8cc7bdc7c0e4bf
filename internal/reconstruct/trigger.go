package reconstruct

import (
	"math"

	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/photoncount"
)

// GetTriggeringState marks, for every time bin, every pixel whose count
// exceeds trigr_thresh·σ as "hot", then declares the bin triggered if its
// hot pixels' largest 8-connected cluster reaches trigr_clustr, per
// spec.md §4.5. Bins that fail to trigger have their hot cells cleared so
// they cannot seed the plane fit or flood fill.
func (r *Reconstructor) GetTriggeringState(cube *photoncount.Cube, numBins int) ([]bool, *mask3D) {
	n := cube.NAcross()
	hot := newMask3D(n, numBins)
	trigState := make([]bool, numBins)

	for t := 0; t < numBins; t++ {
		grid := newMask2D(n)
		for it := cube.Iterator(); it.Next(); {
			x, y := it.X(), it.Y()
			mu := r.pixelNoiseMean(cube, it.Direction())
			sigma := math.Sqrt(mu)
			if float64(cube.GetBin(x, y, t)) > r.cfg.TrigrThresh*sigma {
				grid.set(x, y, true)
				hot.set(x, y, t, true)
			}
		}
		if largestComponent(grid) >= r.cfg.TrigrClustr {
			trigState[t] = true
		} else {
			hot.clearTime(t)
		}
	}

	return trigState, hot
}

// FindPlaneSubset fits a provisional shower-detector plane weighted by each
// pixel's hot-bin count, then drops any hot pixel whose direction falls
// outside plane_thresh of that plane, per spec.md §4.5.
func (r *Reconstructor) FindPlaneSubset(cube *photoncount.Cube, hot *mask3D) (*mask3D, geom.Rotation) {
	sdp, err := r.fitPlane(cube, func(x, y int) float64 {
		return float64(hot.countTrue(x, y))
	})
	if err != nil {
		return newMask3D(hot.n, hot.bins), sdp
	}

	retained := hot.clone()
	for it := cube.Iterator(); it.Next(); {
		x, y := it.X(), it.Y()
		if hot.countTrue(x, y) == 0 {
			continue
		}
		if !nearPlane(sdp, it.Direction(), r.cfg.PlaneThresh) {
			retained.clearPixel(x, y)
		}
	}
	return retained, sdp
}

// floodFill grows the visited set from every cell retained carries, via a
// stack-based (depth-first) flood fill through 8-connected spatial neighbors at the same
// time bin and through the same pixel's adjacent time bins — VisitSpaceAdj
// and VisitTimeAdj in spec.md §4.5 — never stepping onto a cell retained
// does not mark true.
func (r *Reconstructor) floodFill(cube *photoncount.Cube, retained *mask3D, sdp geom.Rotation) *mask3D {
	visited := newMask3D(retained.n, retained.bins)
	queue := make([][3]int, 0)

	for x := 0; x < retained.n; x++ {
		for y := 0; y < retained.n; y++ {
			for t := 0; t < retained.bins; t++ {
				if retained.get(x, y, t) {
					visited.set(x, y, t, true)
					queue = append(queue, [3]int{x, y, t})
				}
			}
		}
	}

	for len(queue) > 0 {
		cell := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y, t := cell[0], cell[1], cell[2]
		queue = append(queue, visitSpaceAdj(x, y, t, retained, visited)...)
		queue = append(queue, visitTimeAdj(x, y, t, retained, visited)...)
	}

	return visited
}

func visitSpaceAdj(x, y, t int, retained, visited *mask3D) [][3]int {
	var out [][3]int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if retained.get(nx, ny, t) && !visited.get(nx, ny, t) {
				visited.set(nx, ny, t, true)
				out = append(out, [3]int{nx, ny, t})
			}
		}
	}
	return out
}

func visitTimeAdj(x, y, t int, retained, visited *mask3D) [][3]int {
	var out [][3]int
	for _, nt := range [2]int{t - 1, t + 1} {
		if retained.get(x, y, nt) && !visited.get(x, y, nt) {
			visited.set(x, y, nt, true)
			out = append(out, [3]int{x, y, nt})
		}
	}
	return out
}

// zeroUnvisited clears every recorded bin that floodFill's visited set does
// not mark, leaving only the connected signal cluster in cube.
func (r *Reconstructor) zeroUnvisited(cube *photoncount.Cube, visited *mask3D, numBins int) {
	for it := cube.Iterator(); it.Next(); {
		x, y := it.X(), it.Y()
		bins := cube.Bins(x, y)
		for bin := range bins {
			if !visited.get(x, y, bin) {
				cube.SetBin(x, y, bin, 0)
			}
		}
	}
}
