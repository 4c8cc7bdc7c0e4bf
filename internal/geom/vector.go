// Package geom provides the vector, rotation, plane and ray primitives
// shared by the shower generator, simulator and reconstructor. All
// quantities are in cgs units unless noted otherwise.
package geom

import "math"

// Vector3 is a Euclidean vector in either the detector or world frame.
// Which frame a given Vector3 belongs to is tracked by the caller, not by
// the type.
type Vector3 struct {
	X, Y, Z float64
}

// Zero is the additive identity.
var Zero = Vector3{}

// UnitX is the canonical axis returned for degenerate inputs.
var UnitX = Vector3{X: 1}

func (v Vector3) Add(w Vector3) Vector3 { return Vector3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }
func (v Vector3) Sub(w Vector3) Vector3 { return Vector3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Dot(w Vector3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

func (v Vector3) Mag() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vector3) Mag2() float64 { return v.Dot(v) }

// Unit returns v normalized. A zero vector returns UnitX, matching the
// original simulator's RandNormal degenerate-input convention.
func (v Vector3) Unit() Vector3 {
	m := v.Mag()
	if m == 0 {
		return UnitX
	}
	return v.Scale(1 / m)
}

func (v Vector3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Angle returns the unsigned angle in radians between v and w.
func (v Vector3) Angle(w Vector3) float64 {
	cos := v.Unit().Dot(w.Unit())
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// RandNormal returns the unit vector at angle theta on the circle of
// directions normal to v; a theta drawn uniformly from [0, 2π) gives a
// uniform draw from that circle. A zero v returns the canonical axis UnitX rather
// than an arbitrary direction, per original_source/cherenkov_lib/Utility.cpp.
func RandNormal(v Vector3, theta float64) Vector3 {
	if v.IsZero() {
		return UnitX
	}
	n := v.Unit()

	// Build an orthonormal basis {e1, e2} spanning the plane normal to n.
	ref := UnitX
	if math.Abs(n.Dot(ref)) > 0.9 {
		ref = Vector3{Y: 1}
	}
	e1 := n.Cross(ref).Unit()
	e2 := n.Cross(e1).Unit()

	return e1.Scale(math.Cos(theta)).Add(e2.Scale(math.Sin(theta)))
}
