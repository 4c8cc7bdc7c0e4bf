package atmosphere

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDensityDecaysWithHeight(t *testing.T) {
	t.Parallel()
	p := NewProfile(841300, 0.001225, 1.00029)
	assert.InDelta(t, p.RhoSea, p.Density(0), 1e-12)
	assert.Less(t, p.Density(1e6), p.Density(0))
}

func TestRefractiveIndexAtSeaLevel(t *testing.T) {
	t.Parallel()
	p := NewProfile(841300, 0.001225, 1.00029)
	assert.InDelta(t, 1.00029, p.RefractiveIndex(0), 1e-9)
}

func TestRefractiveIndexDecaysToOne(t *testing.T) {
	t.Parallel()
	p := NewProfile(841300, 0.001225, 1.00029)
	n := p.RefractiveIndex(1e8)
	assert.InDelta(t, 1.0, n, 1e-6)
}

func TestSlantDepthVerticalMatchesColumnIntegral(t *testing.T) {
	t.Parallel()
	p := NewProfile(841300, 0.001225, 1.00029)
	xFinite := p.SlantDepth(0, 1e9, 1)
	assert.Greater(t, xFinite, 0.0)
}

func TestSlantDepthHorizontalIsInfinite(t *testing.T) {
	t.Parallel()
	p := NewProfile(841300, 0.001225, 1.00029)
	assert.True(t, math.IsInf(p.SlantDepth(0, 1e6, 0), 1))
}
