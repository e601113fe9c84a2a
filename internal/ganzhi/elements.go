package ganzhi

import (
	"math"
	"sort"
)

// Distribution is a percentage per element, in the order Metal, Wood,
// Water, Fire, Earth. A valid distribution always sums to exactly 100.
type Distribution [5]int

// Percent returns the percentage for one element.
func (d Distribution) Percent(e Element) int {
	return d[e]
}

// Weights controls how much a pillar's stem and branch contribute to
// the element accumulator. The two need not sum to 1; the result is
// renormalized regardless.
type Weights struct {
	Stem   float64
	Branch float64
}

// DefaultWeights is the standard 60/40 stem/branch split.
var DefaultWeights = Weights{Stem: 0.6, Branch: 0.4}

// ElementDistribution converts pillars into a five-element percentage
// distribution. Absent pillars contribute nothing; an hour pillar that
// could not be derived is simply passed as a zero Pillar.
func ElementDistribution(pillars []Pillar, w Weights) Distribution {
	var acc [5]float64
	for _, p := range pillars {
		if p.IsZero() {
			continue
		}
		acc[ElementOfStem(p.Stem)] += w.Stem
		acc[ElementOfBranch(p.Branch)] += w.Branch
	}

	sum := 0.0
	for _, v := range acc {
		sum += v
	}
	if sum == 0 {
		sum = 1
	}

	raw := make([]float64, len(acc))
	for i, v := range acc {
		raw[i] = v / sum * 100
	}

	var d Distribution
	copy(d[:], Apportion(raw, 100))
	return d
}

// Apportion rounds a raw percentage vector to integers summing to
// exactly total, using largest-remainder distribution: each value is
// rounded to nearest, then the residual is handed out one unit at a
// time in descending order of fractional remainder, cycling when the
// residual exceeds the vector length.
//
// The decrement path never pushes a value below zero; a zero entry is
// skipped and the unit taken from the next candidate instead.
func Apportion(raw []float64, total int) []int {
	rounded := make([]int, len(raw))
	sum := 0
	for i, v := range raw {
		rounded[i] = int(math.Round(v))
		sum += rounded[i]
	}

	diff := total - sum
	if diff == 0 || len(raw) == 0 {
		return rounded
	}

	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa := raw[order[a]] - math.Floor(raw[order[a]])
		fb := raw[order[b]] - math.Floor(raw[order[b]])
		return fa > fb
	})

	for i := 0; diff != 0; i++ {
		idx := order[i%len(order)]
		if diff > 0 {
			rounded[idx]++
			diff--
			continue
		}
		if rounded[idx] > 0 {
			rounded[idx]--
			diff++
		} else if !anyPositive(rounded) {
			// Nothing left to take units from.
			break
		}
	}

	return rounded
}

func anyPositive(values []int) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}
