// Package optics ray-traces a single photon through the Schmidt corrector,
// spherical mirror and camera, per spec.md §4.4. All geometry here is in
// the detector's local frame: the corrector/stop plane is z=0, the mirror
// is a sphere of radius MirrorRadius centered at the origin (the stop sits
// at the mirror's center of curvature, as in a true Schmidt design), and
// the focal/camera sphere has radius MirrorRadius/2, also centered at the
// origin. A ray traveling along the boresight (0,0,-1) lands on the mirror
// near (0,0,-MirrorRadius) and focuses near (0,0,-MirrorRadius/2).
package optics

import (
	"math"
	"math/rand"

	"github.com/horizon-array/airshower/internal/geom"
)

// Config holds the detector's optical dimensions, per spec.md §6.
type Config struct {
	MirrorRadius       float64
	StopDiameter       float64
	MainMirrorSize     float64
	PMTClusterSize     float64
	CheckBackCollision bool
}

// RandomStopImpact returns a uniformly-distributed point on the disk of
// radius StopDiameter/2 lying in the corrector plane (z=0).
func RandomStopImpact(cfg Config, rng *rand.Rand) geom.Vector3 {
	radius := cfg.StopDiameter / 2
	r := radius * math.Sqrt(rng.Float64())
	theta := 2 * math.Pi * rng.Float64()
	return geom.Vector3{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: 0}
}

// schmidtCoefficient sets the strength of the thin-corrector radial kick so
// that the correction is a small fraction of a radian at the stop edge,
// the standard Schmidt aspheric profile's slope being proportional to r^3.
func schmidtCoefficient(cfg Config) float64 {
	return 1.0 / (4 * cfg.MirrorRadius * cfg.MirrorRadius)
}

// DeflectFromLens refracts photon across the thin Schmidt corrector: a
// radial angular kick proportional to r^3 where r is the photon's distance
// from the optical axis at the stop. Returns false if the resulting
// deflection is unphysical (greater than π/4 radians, which would
// indicate a misconfigured mirror radius).
func DeflectFromLens(photon geom.Ray, cfg Config) (geom.Ray, bool) {
	r := math.Hypot(photon.P.X, photon.P.Y)
	if r == 0 {
		return photon, true
	}
	kick := schmidtCoefficient(cfg) * r * r * r
	if math.IsNaN(kick) || math.Abs(kick) > math.Pi/4 {
		return photon, false
	}

	radial := geom.Vector3{X: photon.P.X / r, Y: photon.P.Y / r}
	axis := radial.Cross(geom.Vector3{Z: 1})
	deflected := geom.RotationAboutAxis(axis, kick).Apply(photon.V)
	return geom.Ray{T: photon.T, P: photon.P, V: deflected.Scale(photon.V.Mag() / deflected.Mag())}, true
}

// negSphereImpact finds the intersection of ray with the sphere of the
// given radius centered at the origin, choosing the root with the smaller
// (more negative) z, matching the original's NegSphereImpact. Returns false
// if there is no real intersection.
func negSphereImpact(ray geom.Ray, radius float64) (geom.Vector3, bool) {
	d := ray.V.Unit()
	a := 1.0
	b := 2 * ray.P.Dot(d)
	c := ray.P.Dot(ray.P) - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return geom.Vector3{}, false
	}
	sq := math.Sqrt(disc)
	t1 := (-b + sq) / (2 * a)
	t2 := (-b - sq) / (2 * a)

	p1 := ray.P.Add(d.Scale(t1))
	p2 := ray.P.Add(d.Scale(t2))
	if p1.Z < p2.Z {
		return p1, true
	}
	return p2, true
}

// MirrorImpactPoint solves for where ray strikes the spherical mirror,
// failing if the intersection falls outside the mirror's physical disk of
// diameter MainMirrorSize or if there is no real root.
func MirrorImpactPoint(ray geom.Ray, cfg Config) (geom.Vector3, bool) {
	p, ok := negSphereImpact(ray, cfg.MirrorRadius)
	if !ok {
		return geom.Vector3{}, false
	}
	if math.Hypot(p.X, p.Y) > cfg.MainMirrorSize/2 {
		return geom.Vector3{}, false
	}
	return p, true
}

// MirrorNormal returns the outward mirror normal at point: the unit vector
// from the sphere's center (the origin) to point.
func MirrorNormal(point geom.Vector3) geom.Vector3 {
	return point.Unit()
}

// CameraImpactPoint intersects ray with the focal sphere (radius
// MirrorRadius/2, centered at the origin), failing if the intersection
// falls outside the camera cluster's disk of diameter PMTClusterSize.
func CameraImpactPoint(ray geom.Ray, cfg Config) (geom.Vector3, bool) {
	p, ok := negSphereImpact(ray, cfg.MirrorRadius/2)
	if !ok {
		return geom.Vector3{}, false
	}
	if math.Hypot(p.X, p.Y) > cfg.PMTClusterSize/2 {
		return geom.Vector3{}, false
	}
	return p, true
}

// SegmentBlockedByCamera reports whether the segment from stop to mirror
// passes through the camera cluster disk at the focal surface (z =
// -MirrorRadius/2). If CheckBackCollision is false, rays that would strike
// the back of the camera are not rejected (spec.md §4.4 step 4).
func SegmentBlockedByCamera(stop, mirror geom.Vector3, cfg Config) bool {
	focalZ := -cfg.MirrorRadius / 2
	if mirror.Z == stop.Z {
		return false
	}
	t := (focalZ - stop.Z) / (mirror.Z - stop.Z)
	if t < 0 || t > 1 {
		return false
	}
	if !cfg.CheckBackCollision {
		return false
	}
	x := stop.X + t*(mirror.X-stop.X)
	y := stop.Y + t*(mirror.Y-stop.Y)
	return math.Hypot(x, y) <= cfg.PMTClusterSize/2
}

// Trace runs the full Schmidt ray trace of spec.md §4.4 steps 1-6 starting
// from a photon already advanced to the stop (photon.P.Z == 0). On success
// it returns the camera impact point as a detector-frame unit direction
// (suitable for photoncount.Cube.AddPhoton) and true.
func Trace(photon geom.Ray, cfg Config) (geom.Vector3, bool) {
	deflected, ok := DeflectFromLens(photon, cfg)
	if !ok {
		return geom.Vector3{}, false
	}

	mirrorPoint, ok := MirrorImpactPoint(deflected, cfg)
	if !ok {
		return geom.Vector3{}, false
	}

	if SegmentBlockedByCamera(deflected.P, mirrorPoint, cfg) {
		return geom.Vector3{}, false
	}

	toMirror := geom.Ray{T: deflected.T, P: deflected.P, V: mirrorPoint.Sub(deflected.P).Unit().Scale(deflected.V.Mag())}
	reflected := geom.Ray{T: toMirror.T, P: mirrorPoint, V: toMirror.V}.Reflect(MirrorNormal(mirrorPoint))

	cameraPoint, ok := CameraImpactPoint(reflected, cfg)
	if !ok {
		return geom.Vector3{}, false
	}

	return cameraPoint.Unit(), true
}
