package genetic

import (
	"fmt"
	"math"

	"ai2048/game"

	"golang.org/x/exp/rand"
)

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

func (r Range) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// GeneRanges are the intervals initial weights are drawn from, in gene order.
var GeneRanges = [game.NumGenes]Range{
	{Min: 50, Max: 300},     // empty
	{Min: 10, Max: 100},     // monotonic
	{Min: -10, Max: -1},     // smooth
	{Min: 5000, Max: 20000}, // corner max
	{Min: 10, Max: 200},     // merge
}

// MutationSteps bound the symmetric perturbation applied to a mutated gene.
var MutationSteps = [game.NumGenes]float64{20, 10, 3, 2000, 20}

type Option func(o *Optimizer)

func WithGeneRanges(ranges [game.NumGenes]Range) Option {
	return func(o *Optimizer) {
		o.geneRanges = ranges
	}
}

func WithMutationSteps(steps [game.NumGenes]float64) Option {
	return func(o *Optimizer) {
		o.mutationSteps = steps
	}
}

// Optimizer owns the random source for initialisation and reproduction. It is
// not safe for concurrent use.
type Optimizer struct {
	rng           *rand.Rand
	geneRanges    [game.NumGenes]Range
	mutationSteps [game.NumGenes]float64
}

func NewOptimizer(seed uint64, options ...Option) *Optimizer {
	o := &Optimizer{
		rng:           rand.New(rand.NewSource(seed)),
		geneRanges:    GeneRanges,
		mutationSteps: MutationSteps,
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// RandomWeights samples every gene independently from its range.
func (o *Optimizer) RandomWeights() game.Weights {
	var genes [game.NumGenes]float64
	for i, r := range o.geneRanges {
		genes[i] = r.sample(o.rng)
	}
	return game.WeightsFromGenes(genes)
}

// NewPopulation creates size individuals with random weights at generation 0.
func (o *Optimizer) NewPopulation(size int) Population {
	if size <= 0 {
		panic(fmt.Sprintf("population size must be positive, got %d", size))
	}
	individuals := make([]Individual, size)
	for i := range individuals {
		individuals[i] = Individual{Weights: o.RandomWeights()}
	}
	return Population{Individuals: individuals}
}

// Crossover takes each gene from a or b with equal probability.
func (o *Optimizer) Crossover(a, b game.Weights) game.Weights {
	ga, gb := a.Genes(), b.Genes()
	var child [game.NumGenes]float64
	for i := range child {
		if o.rng.Float64() < 0.5 {
			child[i] = ga[i]
		} else {
			child[i] = gb[i]
		}
	}
	return game.WeightsFromGenes(child)
}

// Mutate perturbs each gene with probability rate by a uniform delta in
// [-step, step] and returns the result.
func (o *Optimizer) Mutate(w game.Weights, rate float64) game.Weights {
	genes := w.Genes()
	for i := range genes {
		if o.rng.Float64() < rate {
			step := o.mutationSteps[i]
			genes[i] += -step + o.rng.Float64()*2*step
		}
	}
	return game.WeightsFromGenes(genes)
}

// EliteCount is the number of top individuals copied unchanged.
func EliteCount(size int, eliteRate float64) int {
	n := int(math.Round(float64(size) * eliteRate))
	if n < 1 {
		n = 1
	}
	if n > size {
		n = size
	}
	return n
}

// Evolve produces the next generation of the same size. The fittest
// individuals are copied verbatim; the rest are mutated uniform-crossover
// children of two parents, each parent being the best individual half the
// time and a uniformly drawn non-best individual otherwise.
func (o *Optimizer) Evolve(pop Population, eliteRate, mutationRate float64) Population {
	size := pop.Size()
	if size == 0 {
		panic("cannot evolve an empty population")
	}
	sorted := pop.Sorted()
	next := make([]Individual, 0, size)
	next = append(next, sorted[:EliteCount(size, eliteRate)]...)

	for len(next) < size {
		p1 := o.pickParent(sorted)
		p2 := o.pickParent(sorted)
		child := o.Mutate(o.Crossover(p1.Weights, p2.Weights), mutationRate)
		next = append(next, Individual{Weights: child})
	}

	return Population{
		Generation:  pop.Generation + 1,
		Individuals: next,
	}
}

func (o *Optimizer) pickParent(sorted []Individual) Individual {
	if len(sorted) == 1 || o.rng.Float64() < 0.5 {
		return sorted[0]
	}
	return sorted[1+o.rng.Intn(len(sorted)-1)]
}
