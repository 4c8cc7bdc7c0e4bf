package numeric

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// randV2Source adapts a math/rand.Source to the math/rand/v2.Source
// interface required by gonum's distuv package.
type randV2Source struct {
	src rand.Source
}

func (s randV2Source) Uint64() uint64 {
	return uint64(s.src.Int63())<<1 | uint64(s.src.Int63()&1)
}

// PoissonSample draws a single sample from a Poisson distribution of mean
// lambda using src for reproducibility. lambda <= 0 always returns 0.
func PoissonSample(lambda float64, src rand.Source) int {
	if lambda <= 0 {
		return 0
	}
	p := distuv.Poisson{Lambda: lambda, Src: randV2Source{src: src}}
	return int(p.Rand())
}

// NormalJitter draws a single sample from Normal(mean, sigma) using src. A
// non-positive sigma returns mean unchanged.
func NormalJitter(mean, sigma float64, src rand.Source) float64 {
	if sigma <= 0 {
		return mean
	}
	n := distuv.Normal{Mu: mean, Sigma: sigma, Src: randV2Source{src: src}}
	return n.Rand()
}
