package knapsack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioProblem(t *testing.T, policy FitnessPolicy) *Problem {
	t.Helper()
	p, err := NewProblem(scenarioCatalog(t), policy)
	require.NoError(t, err)
	return p
}

func TestIndividualScenario(t *testing.T) {
	problem := scenarioProblem(t, SoftPenalty{Capacity: 5, ScoreScale: 2})

	atCapacity, err := NewIndividual(problem, Genome{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 16, atCapacity.Value())
	assert.Equal(t, 5, atCapacity.Weight())
	assert.Equal(t, 16.0, atCapacity.Fitness())

	overweight, err := NewIndividual(problem, Genome{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 25, overweight.Value())
	assert.Equal(t, 10, overweight.Weight())
	assert.Equal(t, 25-2.0*(10-5), overweight.Fitness())
}

func TestIndividualNegativeFitness(t *testing.T) {
	unclamped := scenarioProblem(t, SoftPenalty{Capacity: 5, ScoreScale: 8})
	ind, err := NewIndividual(unclamped, Genome{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, -15.0, ind.Fitness())

	clamped := scenarioProblem(t, SoftPenalty{Capacity: 5, ScoreScale: 8, ClampNegative: true})
	ind, err = NewIndividual(clamped, Genome{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, ind.Fitness())
}

func TestNewIndividualRejectsWrongLength(t *testing.T) {
	problem := scenarioProblem(t, SoftPenalty{Capacity: 5, ScoreScale: 2})

	_, err := NewIndividual(problem, Genome{1, 0})
	assert.ErrorIs(t, err, ErrInvalidGenomeLength)

	_, err = NewIndividual(problem, Genome{1, 0, 1, 1})
	assert.ErrorIs(t, err, ErrInvalidGenomeLength)

	_, err = NewIndividual(problem, Genome{1, 0, 2})
	assert.ErrorIs(t, err, ErrInvalidGenomeBit)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.NotErrorIs(t, err, ErrInvalidGenomeLength)
}

func TestNewProblemRequiresPolicy(t *testing.T) {
	_, err := NewProblem(scenarioCatalog(t), nil)
	assert.ErrorIs(t, err, ErrNilFitnessPolicy)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewProblem(nil, HardThreshold{Capacity: 5})
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestNewIndividualCopiesGenome(t *testing.T) {
	problem := scenarioProblem(t, SoftPenalty{Capacity: 5, ScoreScale: 2})
	genome := Genome{1, 0, 0}

	ind, err := NewIndividual(problem, genome)
	require.NoError(t, err)

	genome[2] = 1
	assert.Equal(t, "100", ind.Genome().String())

	out := ind.Genome()
	out[1] = 1
	assert.Equal(t, "100", ind.Genome().String())
	assert.Equal(t, 10, ind.Value())
}

func TestIndividualMetricsConsistent(t *testing.T) {
	catalog := randomCatalog(t, 3)
	problem, err := NewProblem(catalog, SoftPenalty{Capacity: 40, ScoreScale: 3})
	require.NoError(t, err)
	rng := newRand(11)

	check := func(ind *Individual) {
		value, weight := 0, 0
		for i, bit := range ind.Genome() {
			if bit == 1 {
				value += catalog.Item(i).Value
				weight += catalog.Item(i).Weight
			}
		}
		require.Equal(t, value, ind.Value())
		require.Equal(t, weight, ind.Weight())
		require.Equal(t, problem.policy.Fitness(value, weight), ind.Fitness())
	}

	for i := 0; i < 50; i++ {
		a := NewRandomIndividual(problem, rng)
		check(a)
		b := NewRandomIndividual(problem, rng)
		child, err := Crossover(a, b, rng.Intn(catalog.Len()))
		require.NoError(t, err)
		check(child)
		child.Mutate(3, rng)
		check(child)
	}
}

func TestMutateFlipsDistinctBits(t *testing.T) {
	catalog := randomCatalog(t, 5)
	problem, err := NewProblem(catalog, defaultParameters().Policy())
	require.NoError(t, err)
	rng := newRand(99)

	for count := 0; count <= catalog.Len(); count++ {
		ind := NewRandomIndividual(problem, rng)
		before := ind.Genome()
		ind.Mutate(count, rng)
		after := ind.Genome()

		diff := 0
		for i := range before {
			if before[i] != after[i] {
				diff++
			}
		}
		assert.Equal(t, count, diff)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	problem := scenarioProblem(t, SoftPenalty{Capacity: 5, ScoreScale: 2})
	orig, err := NewIndividual(problem, Genome{1, 1, 0})
	require.NoError(t, err)

	clone := orig.Copy()
	assert.Equal(t, orig.Genome(), clone.Genome())
	assert.Equal(t, orig.Fitness(), clone.Fitness())

	clone.Mutate(3, newRand(1))
	assert.Equal(t, "110", orig.Genome().String())
	assert.Equal(t, "001", clone.Genome().String())
	assert.Equal(t, 16.0, orig.Fitness())
	assert.Equal(t, 9, clone.Value())
}

func TestParseGenome(t *testing.T) {
	g, err := ParseGenome("1010")
	require.NoError(t, err)
	assert.Equal(t, Genome{1, 0, 1, 0}, g)
	assert.Equal(t, "1010", g.String())

	_, err = ParseGenome("10x")
	assert.Error(t, err)
}
