package genetic

import (
	"sort"

	"ai2048/game"
)

// Individual is one weight vector with the results of its last evaluation.
// It is a value: copying an Individual copies everything it holds.
type Individual struct {
	Weights   game.Weights
	Fitness   float64
	BestScore int
	BestMoves int
}

// WithEvaluation returns a copy of ind carrying new evaluation results.
func (ind Individual) WithEvaluation(fitness float64, bestScore, bestMoves int) Individual {
	ind.Fitness = fitness
	ind.BestScore = bestScore
	ind.BestMoves = bestMoves
	return ind
}

// Population is an ordered set of individuals and the generation that
// produced them.
type Population struct {
	Generation  int
	Individuals []Individual
}

func (p Population) Size() int {
	return len(p.Individuals)
}

// Clone copies the individual slice so the result can be modified freely.
func (p Population) Clone() Population {
	return Population{
		Generation:  p.Generation,
		Individuals: append([]Individual(nil), p.Individuals...),
	}
}

// Sorted returns a copy ordered by descending fitness. Individuals with equal
// fitness keep their relative order.
func (p Population) Sorted() []Individual {
	sorted := append([]Individual(nil), p.Individuals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})
	return sorted
}

// Best returns the fittest individual, the first one on ties.
func (p Population) Best() (Individual, bool) {
	if len(p.Individuals) == 0 {
		return Individual{}, false
	}
	best := p.Individuals[0]
	for _, ind := range p.Individuals[1:] {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best, true
}

// MeanFitness is the average fitness, 0 for an empty population.
func (p Population) MeanFitness() float64 {
	if len(p.Individuals) == 0 {
		return 0
	}
	total := 0.0
	for _, ind := range p.Individuals {
		total += ind.Fitness
	}
	return total / float64(len(p.Individuals))
}
