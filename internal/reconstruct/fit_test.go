package reconstruct

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizon-array/airshower/internal/config"
	"github.com/horizon-array/airshower/internal/geom"
)

func TestTimeModelAtChiEqualsPiMinusPsiGivesT0(t *testing.T) {
	t.Parallel()
	t0, rp, psi := 1.5, 1e5, math.Pi/3
	got := timeModel([]float64{t0, rp, psi}, math.Pi-psi)
	assert.InDelta(t, t0, got, 1e-9)
}

func TestMakeShowerRecoversRpAndPsi(t *testing.T) {
	t.Parallel()
	sdpToWorld := geom.RotationFromPlaneNormal(geom.Vector3{X: 1, Y: 2, Z: 3}.Unit())
	const rp, psi = 3.7e5, 1.1

	s, err := MakeShower(42, rp, psi, sdpToWorld)
	require.NoError(t, err)
	assert.InDelta(t, rp, Rp(s), 1e-6)
	assert.InDelta(t, psi, PsiOf(s), 1e-6)
	assert.InDelta(t, 42, s.StartTime, 1e-9)
}

func TestMakeShowerAxisIsOrthogonalToStartPosition(t *testing.T) {
	t.Parallel()
	sdpToWorld := geom.RotationFromPlaneNormal(geom.Vector3{Y: 1})
	s, err := MakeShower(0, 1e5, 0.7, sdpToWorld)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, s.Axis().Dot(s.StartPosition), 1e-6)
}

func TestRpIsZeroForInvalidShower(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, Rp(invalidShower()))
}

func TestMonocularFitRecoversKnownGeometryFromSyntheticProfile(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	r := testReconstructor(t, cfg)
	cube := testCube(cfg)

	sdpToWorld := geom.RotationFromPlaneNormal(geom.Vector3{Y: 1})
	const wantT0, wantRp, wantPsi = 0.0, 5e5, math.Pi / 2

	// Deposit 1000 counts in each valid pixel on the center row at the time
	// bin closest to the synthetic light-front model's prediction.
	centerY := cfg.NPMTAcross / 2
	for x := 0; x < cfg.NPMTAcross; x++ {
		if !cube.Valid(x, centerY) {
			continue
		}
		dir := cube.Direction(x, centerY)
		local := sdpToWorld.Inverse().Apply(dir)
		chi := math.Atan2(local.Y, local.X)
		t := timeModel([]float64{wantT0, wantRp, wantPsi}, chi)
		bin := int(math.Floor((t - cube.StartTime()) / cube.BinWidth()))
		if bin < 0 {
			bin = 0
		}
		cube.SetBin(x, centerY, bin, 1000)
	}

	s := r.MonocularFit(cube, sdpToWorld)
	require.Greater(t, Rp(s), 0.0)
	assert.InDelta(t, wantRp, Rp(s), wantRp*0.25)
}

func TestMonocularFitReturnsSentinelWithoutEnoughPoints(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	r := testReconstructor(t, cfg)
	cube := testCube(cfg)
	sdpToWorld := geom.RotationFromPlaneNormal(geom.Vector3{Y: 1})

	s := r.MonocularFit(cube, sdpToWorld)
	assert.Equal(t, 0.0, Rp(s))
}

func TestHybridFitFixesRpFromImpactPoint(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	r := testReconstructor(t, cfg)
	cube := testCube(cfg)
	sdpToWorld := geom.RotationFromPlaneNormal(geom.Vector3{Y: 1})

	impact := geom.Vector3{X: 4e5}
	centerY := cfg.NPMTAcross / 2
	cube.SetBin(5, centerY, 3, 1000)

	s := r.HybridFit(cube, impact, sdpToWorld)
	assert.InDelta(t, 4e5, Rp(s), 1e-3)
}

func TestHybridFitReturnsSentinelForZeroImpact(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	r := testReconstructor(t, cfg)
	cube := testCube(cfg)
	sdpToWorld := geom.RotationFromPlaneNormal(geom.Vector3{Y: 1})

	s := r.HybridFit(cube, geom.Vector3{}, sdpToWorld)
	assert.Equal(t, 0.0, Rp(s))
}
