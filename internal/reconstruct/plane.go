package reconstruct

import (
	"math"

	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/numeric"
	"github.com/horizon-array/airshower/internal/photoncount"
)

// FitSDPlane computes the shower-detector-plane normal as the smallest-
// eigenvalue eigenvector of Σ w_i·d_i⊗d_i over every valid pixel, weighted
// by its retained total count, per spec.md §4.5. The returned rotation maps
// SDP-local coordinates to world coordinates: its Z axis is the SDP normal,
// its X axis lies in the world horizontal plane.
func (r *Reconstructor) FitSDPlane(cube *photoncount.Cube) (geom.Rotation, error) {
	return r.fitPlane(cube, func(x, y int) float64 {
		return float64(cube.SumBins(x, y))
	})
}

func (r *Reconstructor) fitPlane(cube *photoncount.Cube, weight func(x, y int) float64) (geom.Rotation, error) {
	var m numeric.Sym3
	for it := cube.Iterator(); it.Next(); {
		w := weight(it.X(), it.Y())
		if w <= 0 {
			continue
		}
		d := it.Direction()
		m.M00 += w * d.X * d.X
		m.M01 += w * d.X * d.Y
		m.M02 += w * d.X * d.Z
		m.M11 += w * d.Y * d.Y
		m.M12 += w * d.Y * d.Z
		m.M22 += w * d.Z * d.Z
	}

	normalArr, err := numeric.SmallestEigenvector(m)
	if err != nil {
		return geom.Rotation{}, err
	}
	normal := geom.Vector3{X: normalArr[0], Y: normalArr[1], Z: normalArr[2]}
	return geom.RotationFromPlaneNormal(normal.Unit()), nil
}

// nearPlane reports whether dir's angular distance to the plane whose
// normal is sdp's Z axis is under threshold radians.
func nearPlane(sdp geom.Rotation, dir geom.Vector3, threshold float64) bool {
	normal := sdp.Z()
	cosAngle := dir.Unit().Dot(normal)
	if cosAngle > 1 {
		cosAngle = 1
	}
	if cosAngle < -1 {
		cosAngle = -1
	}
	return math.Abs(math.Asin(cosAngle)) < threshold
}
