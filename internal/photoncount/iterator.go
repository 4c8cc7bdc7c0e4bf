package photoncount

import "github.com/horizon-array/airshower/internal/geom"

// SignalIterator is a cursor over a Cube's valid pixels, visiting them in
// row-major (x, then y) order. Its lifetime is tied to the Cube that
// created it; a structural change to the cube (there are none post
// construction, per spec.md §4.2) would invalidate it.
type SignalIterator struct {
	cube *Cube
	x, y int
	done bool
}

// Iterator returns a fresh SignalIterator positioned before the first valid
// pixel; call Next to advance to it.
func (c *Cube) Iterator() *SignalIterator {
	return &SignalIterator{cube: c, x: 0, y: -1}
}

// Next advances to the next valid pixel, returning false once exhausted.
func (it *SignalIterator) Next() bool {
	if it.done {
		return false
	}
	n := it.cube.params.NAcross
	for {
		it.y++
		if it.y >= n {
			it.y = 0
			it.x++
		}
		if it.x >= n {
			it.done = true
			return false
		}
		if it.cube.Valid(it.x, it.y) {
			return true
		}
	}
}

// X, Y return the iterator's current pixel coordinates.
func (it *SignalIterator) X() int { return it.x }
func (it *SignalIterator) Y() int { return it.y }

// SumBins returns SumBins for the iterator's current pixel.
func (it *SignalIterator) SumBins() int64 { return it.cube.SumBins(it.x, it.y) }

// Direction returns Direction for the iterator's current pixel.
func (it *SignalIterator) Direction() geom.Vector3 { return it.cube.Direction(it.x, it.y) }
