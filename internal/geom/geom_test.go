package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorUnitDegenerateReturnsCanonicalAxis(t *testing.T) {
	t.Parallel()
	assert.Equal(t, UnitX, Zero.Unit())
}

func TestRandNormalDegenerateReturnsCanonicalAxis(t *testing.T) {
	t.Parallel()
	assert.Equal(t, UnitX, RandNormal(Zero, 1.23))
}

func TestRandNormalIsOrthogonalToAxis(t *testing.T) {
	t.Parallel()
	axis := Vector3{X: 1, Y: 2, Z: 3}.Unit()
	for theta := 0.0; theta < 2*math.Pi; theta += 0.3 {
		n := RandNormal(axis, theta)
		require.InDelta(t, 1.0, n.Mag(), 1e-9)
		assert.InDelta(t, 0.0, n.Dot(axis), 1e-9)
	}
}

func TestRayIncrementPositionRoundTrip(t *testing.T) {
	t.Parallel()
	r := NewRay(0, Vector3{X: 1, Y: 2, Z: 3}, Vector3{X: 0.1, Y: -0.2, Z: 0.3})
	out := r.IncrementPosition(5).IncrementPosition(-5)
	assert.InDelta(t, r.P.X, out.P.X, 1e-9)
	assert.InDelta(t, r.P.Y, out.P.Y, 1e-9)
	assert.InDelta(t, r.P.Z, out.P.Z, 1e-9)
	assert.InDelta(t, r.T, out.T, 1e-9)
}

func TestRayReflectPreservesSpeed(t *testing.T) {
	t.Parallel()
	r := NewRay(0, Vector3{}, Vector3{X: 1, Y: 1, Z: -1})
	before := r.Speed()
	out := r.Reflect(Vector3{Z: 1})
	assert.InDelta(t, before, out.Speed(), 1e-9)
	// reflecting off the z=0 plane flips the z component only
	assert.InDelta(t, 1.0, out.V.Z, 1e-9)
}

func TestRayTimeToPlaneParallelIsInf(t *testing.T) {
	t.Parallel()
	p := MakePlane(Vector3{Z: 1}, Vector3{Z: 10})
	r := NewRay(0, Vector3{}, Vector3{X: 1})
	assert.True(t, math.IsInf(r.TimeToPlane(p), 1))
}

func TestRayTimeToPlaneNegativeWhenBehind(t *testing.T) {
	t.Parallel()
	p := MakePlane(Vector3{Z: 1}, Vector3{Z: -10})
	r := NewRay(0, Vector3{Z: 0}, Vector3{Z: 1})
	assert.Less(t, r.TimeToPlane(p), 0.0)
}

func TestRayPropagateToPlane(t *testing.T) {
	t.Parallel()
	p := MakePlane(Vector3{Z: 1}, Vector3{Z: 10})
	r := NewRay(0, Vector3{}, Vector3{Z: 2})
	out := r.PropagateToPlane(p)
	assert.InDelta(t, 10.0, out.P.Z, 1e-9)
	assert.InDelta(t, 5.0, out.T, 1e-9)
}

func TestRotationAboutAxisPreservesLength(t *testing.T) {
	t.Parallel()
	r := RotationAboutAxis(Vector3{Z: 1}, math.Pi/3)
	v := Vector3{X: 1, Y: 2, Z: 3}
	out := r.Apply(v)
	assert.InDelta(t, v.Mag(), out.Mag(), 1e-9)
}

func TestRotationInverseUndoesRotation(t *testing.T) {
	t.Parallel()
	r := RotationAboutAxis(Vector3{X: 1, Y: 1}.Unit(), 0.77)
	v := Vector3{X: -1, Y: 0.5, Z: 2}
	out := r.Inverse().Apply(r.Apply(v))
	assert.InDelta(t, v.X, out.X, 1e-9)
	assert.InDelta(t, v.Y, out.Y, 1e-9)
	assert.InDelta(t, v.Z, out.Z, 1e-9)
}

func TestRotationFromPlaneNormalZAxisMatchesNormal(t *testing.T) {
	t.Parallel()
	normal := Vector3{X: 1, Y: 1, Z: 1}.Unit()
	r := RotationFromPlaneNormal(normal)
	z := r.Z()
	assert.InDelta(t, normal.X, z.X, 1e-9)
	assert.InDelta(t, normal.Y, z.Y, 1e-9)
	assert.InDelta(t, normal.Z, z.Z, 1e-9)
	// x-axis must lie in the world horizontal plane (world y is vertical)
	assert.InDelta(t, 0.0, r.X().Dot(Vector3{Y: 1}), 1e-9)
}

func TestMakeRotationElevationZero(t *testing.T) {
	t.Parallel()
	r := MakeRotation(0)
	v := Vector3{X: 1, Y: 2, Z: 3}
	out := r.Apply(v)
	assert.InDelta(t, v.X, out.X, 1e-9)
	assert.InDelta(t, v.Y, out.Y, 1e-9)
	assert.InDelta(t, v.Z, out.Z, 1e-9)
}
