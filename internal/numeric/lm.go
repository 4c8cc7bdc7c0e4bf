package numeric

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Bound clamps a parameter to [Min, Max]. A zero-value Bound (Min==Max==0)
// is treated as unconstrained.
type Bound struct {
	Min, Max float64
}

func (b Bound) clamp(v float64) float64 {
	if b.Min == 0 && b.Max == 0 {
		return v
	}
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Problem is a weighted nonlinear least-squares problem: fit Model(params,
// X[i]) to Y[i] with per-point uncertainty Sigma[i].
type Problem struct {
	X, Y, Sigma []float64
	Model       func(params []float64, x float64) float64
}

// FitResult is the outcome of a Levenberg-Marquardt fit.
type FitResult struct {
	Params     []float64
	Converged  bool
	Iterations int
	ChiSquare  float64
}

const (
	lmMaxLambda   = 1e12
	lmMinLambda   = 1e-12
	lmFDStep      = 1e-6
	lmCostEpsilon = 1e-12
)

// LevenbergMarquardt fits problem starting from init, projecting every trial
// step onto bounds (one Bound per parameter; pass nil for unconstrained).
// This is the Levenberg-Marquardt routine spec.md §9 calls for, built on
// gonum/mat for the per-iteration linear solve rather than on a turnkey
// gonum LM implementation (gonum/optimize has no general weighted nonlinear
// least-squares method — see DESIGN.md).
func LevenbergMarquardt(problem Problem, init []float64, bounds []Bound, maxIter int) FitResult {
	n := len(problem.X)
	p := len(init)

	params := append([]float64(nil), init...)
	if bounds == nil {
		bounds = make([]Bound, p)
	}
	for i := range params {
		params[i] = bounds[i].clamp(params[i])
	}

	residuals := func(params []float64) []float64 {
		r := make([]float64, n)
		for i := 0; i < n; i++ {
			sigma := problem.Sigma[i]
			if sigma <= 0 {
				sigma = 1
			}
			r[i] = (problem.Model(params, problem.X[i]) - problem.Y[i]) / sigma
		}
		return r
	}

	cost := func(r []float64) float64 {
		var sum float64
		for _, v := range r {
			sum += v * v
		}
		return sum
	}

	jacobian := func(params []float64) *mat.Dense {
		j := mat.NewDense(n, p, nil)
		base := residuals(params)
		for k := 0; k < p; k++ {
			step := lmFDStep * (math.Abs(params[k]) + lmFDStep)
			trial := append([]float64(nil), params...)
			trial[k] += step
			trial[k] = bounds[k].clamp(trial[k])
			perturbed := residuals(trial)
			for i := 0; i < n; i++ {
				j.Set(i, k, (perturbed[i]-base[i])/step)
			}
		}
		return j
	}

	lambda := 1e-3
	r := residuals(params)
	curCost := cost(r)

	result := FitResult{Params: params}
	for iter := 0; iter < maxIter; iter++ {
		result.Iterations = iter + 1
		j := jacobian(params)

		var jt mat.Dense
		jt.CloneFrom(j.T())

		var jtj mat.Dense
		jtj.Mul(&jt, j)

		for k := 0; k < p; k++ {
			jtj.Set(k, k, jtj.At(k, k)*(1+lambda)+lmMinLambda)
		}

		rv := mat.NewVecDense(n, r)
		var jtr mat.VecDense
		jtr.MulVec(&jt, rv)

		var delta mat.VecDense
		if err := delta.SolveVec(&jtj, &jtr); err != nil {
			lambda *= 10
			if lambda > lmMaxLambda {
				break
			}
			continue
		}

		trial := make([]float64, p)
		for k := 0; k < p; k++ {
			trial[k] = bounds[k].clamp(params[k] - delta.AtVec(k))
		}

		trialR := residuals(trial)
		trialCost := cost(trialR)

		if trialCost < curCost {
			params = trial
			r = trialR
			improvement := curCost - trialCost
			curCost = trialCost
			lambda = math.Max(lambda/10, lmMinLambda)
			if improvement < lmCostEpsilon {
				result.Converged = true
				break
			}
		} else {
			lambda *= 10
			if lambda > lmMaxLambda {
				break
			}
		}
	}

	result.Params = params
	result.ChiSquare = curCost
	return result
}
