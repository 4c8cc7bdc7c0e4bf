package reconstruct

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/horizon-array/airshower/internal/geom"
	"github.com/horizon-array/airshower/internal/shower"
)

// Result is the outcome of one Reconstruct call, per spec.md §6/§7:
// whether the cube triggered, the monocular fit (sentinel Rp ≤ 0 if the
// plane fit or nonlinear fit failed to converge), and, if a Cherenkov
// ground impact was visible, the hybrid fit that fixes geometry from it.
type Result struct {
	RunID     uuid.UUID
	Triggered bool
	ChkvTried bool
	MonoRecon shower.Shower
	ChkvRecon shower.Shower
}

// Header returns the comma-separated column names matching ToString's row,
// per spec.md §6 "Result rendering".
func Header() string {
	return strings.Join([]string{
		"run_id", "triggered", "mono_axis_x", "mono_axis_y", "mono_axis_z",
		"mono_rp", "mono_psi", "mono_t0", "chkv_tried", "chkv_axis_x",
		"chkv_axis_y", "chkv_axis_z", "chkv_rp", "chkv_psi", "chkv_t0",
		"impact_x", "impact_y", "impact_z",
	}, ",")
}

// ToString renders r as one CSV row. groundPlane is used to report the
// monocular fit's axis/impact-param intersection with the ground, giving a
// human-comparable ground impact alongside the fitted geometry.
func (r Result) ToString(groundPlane geom.Plane) string {
	if !r.Triggered {
		return fmt.Sprintf("%s,false,,,,,,,false,,,,,,,,,", r.RunID)
	}

	monoAxis := r.MonoRecon.Axis()
	impact := groundImpactOf(r.MonoRecon, groundPlane)

	chkvAxis := geom.Vector3{}
	var chkvRp, chkvPsi, chkvT0 float64
	if r.ChkvTried {
		chkvAxis = r.ChkvRecon.Axis()
		chkvRp = Rp(r.ChkvRecon)
		chkvPsi = PsiOf(r.ChkvRecon)
		chkvT0 = r.ChkvRecon.StartTime
	}

	return fmt.Sprintf("%s,true,%g,%g,%g,%g,%g,%g,%t,%g,%g,%g,%g,%g,%g,%g,%g,%g",
		r.RunID,
		monoAxis.X, monoAxis.Y, monoAxis.Z,
		Rp(r.MonoRecon), PsiOf(r.MonoRecon), r.MonoRecon.StartTime,
		r.ChkvTried,
		chkvAxis.X, chkvAxis.Y, chkvAxis.Z,
		chkvRp, chkvPsi, chkvT0,
		impact.X, impact.Y, impact.Z,
	)
}

// groundImpactOf intersects s's axis ray with groundPlane, returning the
// zero vector if the axis never reaches it.
func groundImpactOf(s shower.Shower, groundPlane geom.Plane) geom.Vector3 {
	ray := geom.NewRay(s.StartTime, s.StartPosition, s.Axis())
	dt := ray.TimeToPlane(groundPlane)
	if dt < 0 {
		return geom.Vector3{}
	}
	return ray.IncrementPosition(dt).P
}
