// Package numeric is the seam between the domain packages and gonum: every
// eigensolve, Poisson/normal sample and nonlinear least-squares fit the
// simulator or reconstructor needs goes through here, so the rest of the
// tree never imports gonum directly.
package numeric

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sym3 is a symmetric 3x3 matrix, stored as the upper triangle.
type Sym3 struct {
	M00, M01, M02 float64
	M11, M12      float64
	M22           float64
}

// SmallestEigenvector returns the unit eigenvector of m associated with its
// smallest eigenvalue. Ties are broken toward the lowest index returned by
// gonum's ascending eigenvalue ordering, matching spec's tie-break rule.
func SmallestEigenvector(m Sym3) ([3]float64, error) {
	sym := mat.NewSymDense(3, []float64{
		m.M00, m.M01, m.M02,
		m.M01, m.M11, m.M12,
		m.M02, m.M12, m.M22,
	})

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return [3]float64{}, fmt.Errorf("numeric: symmetric eigendecomposition failed to converge")
	}

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	minIdx := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[minIdx] {
			minIdx = i
		}
	}

	return [3]float64{
		vectors.At(0, minIdx),
		vectors.At(1, minIdx),
		vectors.At(2, minIdx),
	}, nil
}
