// Package photoncount implements the 3-D (pixel_x, pixel_y, time_bin)
// container described in spec.md §3/§4.2: a disk-shaped grid of pixels,
// each holding a growable, non-negative integer time series.
package photoncount

import (
	"math"
	"math/rand"

	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/numeric"
)

// Params configures the cube's geometry and pixel mapping.
type Params struct {
	NAcross        int          // pixels across the camera's bounding square
	StartTime      float64      // absolute time of bin 0
	BinWidth       float64      // Δt
	PMTAngularSize float64      // θ_p, radians per pixel
	PMTLinearSize  float64      // ℓ_p, cm per pixel (informational; the pixel mapping does not read it)
	DetectorToWorld geom.Rotation
}

// Cube is the photon count container. Its valid-pixel mask is fixed at
// construction and never changes.
type Cube struct {
	params Params
	center float64 // N/2

	series []([]int64) // flattened [x*NAcross+y], nil until first write
	valid  []bool
}

// New constructs an empty Cube. All pixel series start unseen (nil).
func New(p Params) *Cube {
	n := p.NAcross
	c := &Cube{
		params: p,
		center: float64(n) / 2,
		series: make([][]int64, n*n),
		valid:  make([]bool, n*n),
	}
	r := float64(n) / 2
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			dx := float64(x) - c.center
			dy := float64(y) - c.center
			if dx*dx+dy*dy <= r*r {
				c.valid[x*n+y] = true
			}
		}
	}
	return c
}

func (c *Cube) idx(x, y int) int { return x*c.params.NAcross + y }

// InBounds reports whether (x,y) is within the pixel array at all (not
// necessarily within the valid disk).
func (c *Cube) InBounds(x, y int) bool {
	n := c.params.NAcross
	return x >= 0 && x < n && y >= 0 && y < n
}

// Valid reports whether (x,y) lies in the maximal disk of radius N/2.
func (c *Cube) Valid(x, y int) bool {
	if !c.InBounds(x, y) {
		return false
	}
	return c.valid[c.idx(x, y)]
}

// NAcross, StartTime, BinWidth, AngularSize expose the cube's fixed params.
func (c *Cube) NAcross() int            { return c.params.NAcross }
func (c *Cube) StartTime() float64      { return c.params.StartTime }
func (c *Cube) BinWidth() float64       { return c.params.BinWidth }
func (c *Cube) AngularSize() float64    { return c.params.PMTAngularSize }

// PixelDirection returns the unit direction of pixel (x,y) in the detector
// frame: a base vector straight down the boresight, deflected by
// θp·(x-center) about the camera's Y axis and θp·(y-center) about its X
// axis, matching spec.md §3's "camera plane mapping".
func (c *Cube) PixelDirection(x, y int) geom.Vector3 {
	a := c.params.PMTAngularSize * (float64(x) - c.center)
	b := c.params.PMTAngularSize * (float64(y) - c.center)
	base := geom.Vector3{Z: -1}
	v := geom.RotationAboutAxis(geom.Vector3{Y: 1}, a).Apply(base)
	v = geom.RotationAboutAxis(geom.Vector3{X: 1}, b).Apply(v)
	return v.Unit()
}

// detectorFrameToPixel inverts PixelDirection analytically (see DESIGN.md
// for the derivation): a = asin(-vx), b = atan2(vy, -vz).
func (c *Cube) detectorFrameToPixel(d geom.Vector3) (x, y int, ok bool) {
	vx := clamp(d.X, -1, 1)
	a := math.Asin(-vx)
	cosA := math.Cos(a)
	if cosA <= 1e-9 {
		return 0, 0, false
	}
	b := math.Atan2(d.Y, -d.Z)

	fx := c.center + a/c.params.PMTAngularSize
	fy := c.center + b/c.params.PMTAngularSize
	x = int(math.Round(fx))
	y = int(math.Round(fy))
	return x, y, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WorldToDetector rotates a world-frame direction into the detector frame.
func (c *Cube) WorldToDetector(worldDir geom.Vector3) geom.Vector3 {
	return c.params.DetectorToWorld.Inverse().Apply(worldDir)
}

// Direction returns the world-frame unit direction of pixel (x,y).
func (c *Cube) Direction(x, y int) geom.Vector3 {
	return c.params.DetectorToWorld.Apply(c.PixelDirection(x, y))
}

// AddPhoton deposits weight into the bin covering time t for the pixel
// whose detector-frame direction is direction. Arrivals outside the valid
// disk or before StartTime are dropped silently, per spec.md §4.2/§7.
func (c *Cube) AddPhoton(t float64, direction geom.Vector3, weight int64) {
	if t < c.params.StartTime {
		return
	}
	x, y, ok := c.detectorFrameToPixel(direction)
	if !ok || !c.Valid(x, y) {
		return
	}
	bin := int(math.Floor((t - c.params.StartTime) / c.params.BinWidth))
	if bin < 0 {
		return
	}
	i := c.idx(x, y)
	s := c.series[i]
	if bin >= len(s) {
		grown := make([]int64, bin+1)
		copy(grown, s)
		s = grown
	}
	s[bin] += weight
	c.series[i] = s
}

// SumBins returns the integer sum of pixel (x,y)'s time series.
func (c *Cube) SumBins(x, y int) int64 {
	s := c.series[c.idx(x, y)]
	var sum int64
	for _, v := range s {
		sum += v
	}
	return sum
}

// Bins returns pixel (x,y)'s time series. The returned slice must not be
// mutated by the caller.
func (c *Cube) Bins(x, y int) []int64 {
	return c.series[c.idx(x, y)]
}

// EnsureBins grows pixel (x,y)'s series to at least n bins, used by
// AddNoiseMean and SetBin when a pixel has not yet
// recorded a signal photon but must still receive a noise/zero value.
func (c *Cube) EnsureBins(x, y, n int) {
	i := c.idx(x, y)
	if len(c.series[i]) >= n {
		return
	}
	grown := make([]int64, n)
	copy(grown, c.series[i])
	c.series[i] = grown
}

// SetBin overwrites a single bin value, clamping negative values to 0 per
// spec.md §4.5 SubtractAverageNoise.
func (c *Cube) SetBin(x, y, bin int, v int64) {
	if v < 0 {
		v = 0
	}
	c.EnsureBins(x, y, bin+1)
	c.series[c.idx(x, y)][bin] = v
}

// GetBin returns a single bin value, or 0 if the pixel's series is shorter
// than bin+1.
func (c *Cube) GetBin(x, y, bin int) int64 {
	s := c.series[c.idx(x, y)]
	if bin < 0 || bin >= len(s) {
		return 0
	}
	return s[bin]
}

// NumBins returns max bin count needed to cover the whole record duration.
func (c *Cube) NumBins(duration float64) int {
	return int(math.Ceil(duration / c.params.BinWidth))
}

// AddNoiseMean grows pixel (x,y)'s series to numBins bins, draws a Poisson
// count with mean lambda (the caller's rate*ΔΩ*T) and scatters it uniformly
// across those bins, per spec.md §4.2.
func (c *Cube) AddNoiseMean(x, y int, lambda float64, numBins int, src rand.Source) {
	if numBins <= 0 {
		return
	}
	c.EnsureBins(x, y, numBins)
	total := numeric.PoissonSample(lambda, src)
	if total == 0 {
		return
	}
	i := c.idx(x, y)
	rng := rand.New(src)
	for n := 0; n < total; n++ {
		bin := rng.Intn(numBins)
		c.series[i][bin]++
	}
}

// PixelSolidAngle returns the solid angle subtended by one pixel,
// approximated as θp² (small-angle square pixel), used to scale noise rates.
func (c *Cube) PixelSolidAngle() float64 {
	return c.params.PMTAngularSize * c.params.PMTAngularSize
}
