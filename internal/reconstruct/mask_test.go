package reconstruct

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLargestComponentCountsAdjacentCluster(t *testing.T) {
	t.Parallel()
	m := newMask2D(10)
	for x := 0; x < 5; x++ {
		m.set(x, 5, true)
	}
	assert.Equal(t, 5, largestComponent(m))
}

func TestLargestComponentCountsDiagonalAsConnected(t *testing.T) {
	t.Parallel()
	m := newMask2D(5)
	m.set(1, 1, true)
	m.set(2, 2, true)
	m.set(3, 3, true)
	assert.Equal(t, 3, largestComponent(m))
}

func TestLargestComponentIgnoresDisconnectedCells(t *testing.T) {
	t.Parallel()
	m := newMask2D(10)
	m.set(0, 0, true)
	m.set(1, 0, true)
	m.set(9, 9, true)
	assert.Equal(t, 2, largestComponent(m))
}

func TestLargestComponentZeroWhenEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, largestComponent(newMask2D(4)))
}

func TestMask3DGetSetOutOfBoundsIsNoop(t *testing.T) {
	t.Parallel()
	m := newMask3D(4, 4)
	m.set(-1, 0, 0, true)
	m.set(0, -1, 0, true)
	m.set(0, 0, -1, true)
	assert.False(t, m.get(-1, 0, 0))
	assert.False(t, m.any())
}

func TestMask3DClearTimeOnlyAffectsThatBin(t *testing.T) {
	t.Parallel()
	m := newMask3D(3, 3)
	m.set(0, 0, 0, true)
	m.set(0, 0, 1, true)
	m.clearTime(0)
	assert.False(t, m.get(0, 0, 0))
	assert.True(t, m.get(0, 0, 1))
}

func TestMask3DClearPixelOnlyAffectsThatPixel(t *testing.T) {
	t.Parallel()
	m := newMask3D(3, 3)
	m.set(1, 1, 0, true)
	m.set(1, 1, 1, true)
	m.set(2, 2, 0, true)
	m.clearPixel(1, 1)
	assert.Equal(t, 0, m.countTrue(1, 1))
	assert.Equal(t, 1, m.countTrue(2, 2))
}

func TestMask3DCloneIsIndependent(t *testing.T) {
	t.Parallel()
	m := newMask3D(3, 3)
	m.set(0, 0, 0, true)
	clone := m.clone()
	clone.set(1, 1, 1, true)
	assert.False(t, m.get(1, 1, 1))
	assert.True(t, clone.get(0, 0, 0))
}
