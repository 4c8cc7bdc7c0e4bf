package geom

import "math"

// Ray is a (time, position, velocity) tuple. Velocity magnitude is whatever
// the caller assigns (speed of light for photons, shower speed for showers)
// and is preserved by every method here: SetDirection rescales the new
// direction to the prior speed, and Reflect changes only the direction.
type Ray struct {
	T float64
	P Vector3
	V Vector3
}

// NewRay constructs a ray; velocity must be non-zero.
func NewRay(t float64, position, velocity Vector3) Ray {
	return Ray{T: t, P: position, V: velocity}
}

// Speed returns |V|.
func (r Ray) Speed() float64 { return r.V.Mag() }

// IncrementPosition advances the ray by dt, consistently updating both time
// and position. Calling IncrementPosition(dt) then IncrementPosition(-dt)
// restores the original position to floating-point tolerance.
func (r Ray) IncrementPosition(dt float64) Ray {
	r.T += dt
	r.P = r.P.Add(r.V.Scale(dt))
	return r
}

// TimeToPlane returns the signed time to intersection with p: negative if
// the plane lies behind the ray's direction of travel, +Inf if the ray is
// parallel to the plane.
func (r Ray) TimeToPlane(p Plane) float64 {
	denom := p.Normal().Dot(r.V)
	if denom == 0 {
		return math.Inf(1)
	}
	return (p.Coefficient() - p.Normal().Dot(r.P)) / denom
}

// PropagateToPlane advances the ray to its intersection with p. If the ray
// is parallel to p, the ray is returned unchanged.
func (r Ray) PropagateToPlane(p Plane) Ray {
	dt := r.TimeToPlane(p)
	if math.IsInf(dt, 1) {
		return r
	}
	return r.IncrementPosition(dt)
}

// SetDirection reassigns the ray's direction to the unit vector toward dir,
// preserving the current speed, without advancing time or position. This
// mirrors Ray::SetDirection in the original simulator, used when a photon's
// direction must be fixed before it is advanced.
func (r Ray) SetDirection(dir Vector3) Ray {
	speed := r.Speed()
	r.V = dir.Unit().Scale(speed)
	return r
}

// PropagateToPoint points the ray at x and advances until it reaches x's
// plane-of-closest approach along that new direction; used to send a photon
// from its emission point directly toward a target point.
func (r Ray) PropagateToPoint(x Vector3) Ray {
	r = r.SetDirection(x.Sub(r.P))
	dist := x.Sub(r.P).Mag()
	speed := r.Speed()
	if speed == 0 {
		return r
	}
	return r.IncrementPosition(dist / speed)
}

// Reflect mirrors the ray's velocity about the plane whose unit normal is n:
// v' = v - 2(v.n)n. Speed is preserved exactly.
func (r Ray) Reflect(n Vector3) Ray {
	nHat := n.Unit()
	r.V = r.V.Sub(nHat.Scale(2 * r.V.Dot(nHat)))
	return r
}
