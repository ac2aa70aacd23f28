package knapsack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populationOf 直接用给定基因组构造种群，便于控制成员
func populationOf(t *testing.T, problem *Problem, params Parameters, genomes ...Genome) *Population {
	t.Helper()
	pop := &Population{problem: problem, parameters: params}
	for _, g := range genomes {
		ind, err := NewIndividual(problem, g)
		require.NoError(t, err)
		pop.members = append(pop.members, ind)
	}
	pop.Update()
	return pop
}

func TestNewPopulation(t *testing.T) {
	pop, err := NewPopulation(randomCatalog(t, 1), defaultParameters(), newRand(1))
	require.NoError(t, err)
	assert.Equal(t, 16, pop.Size())
	assert.Equal(t, 0, pop.GenerationNumber())

	sum := 0.0
	for i := 0; i < pop.Size(); i++ {
		sum += pop.Member(i).Fitness()
		assert.LessOrEqual(t, pop.Member(i).Fitness(), pop.BestFitness())
	}
	assert.InDelta(t, sum/16, pop.AvgFitness(), 1e-9)
}

func TestNewPopulationInvalidConfiguration(t *testing.T) {
	catalog := randomCatalog(t, 1)

	params := defaultParameters()
	params.PopulationSize = 0
	pop, err := NewPopulation(catalog, params, newRand(1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Nil(t, pop)

	params = defaultParameters()
	params.MutationCount = catalog.Len() + 1
	_, err = NewPopulation(catalog, params, newRand(1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewPopulation(nil, defaultParameters(), newRand(1))
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestUpdateAggregates(t *testing.T) {
	problem := scenarioProblem(t, SoftPenalty{Capacity: 5, ScoreScale: 2})
	params := Parameters{PopulationSize: 4, TournamentSize: 2, MaxParents: 1, MutationCount: 1, Capacity: 5, ScoreScale: 2}

	// 适应度：10, 16, 16, 15
	pop := populationOf(t, problem, params, Genome{1, 0, 0}, Genome{1, 1, 0}, Genome{1, 1, 0}, Genome{1, 1, 1})

	assert.Equal(t, 16.0, pop.BestFitness())
	assert.Equal(t, 1, pop.BestIndex())
	assert.InDelta(t, (10+16+16+15)/4.0, pop.AvgFitness(), 1e-9)
	assert.InDelta(t, (2+5+5+10)/4.0, pop.AvgWeight(), 1e-9)

	stats := pop.Stats()
	assert.Equal(t, 16, stats.BestValue)
	assert.Equal(t, 5, stats.BestWeight)
	assert.Equal(t, "110", stats.BestGenome)
}

func TestUpdateAllNegativeFitness(t *testing.T) {
	problem := scenarioProblem(t, SoftPenalty{Capacity: 0, ScoreScale: 10})
	params := Parameters{PopulationSize: 2, TournamentSize: 1, MaxParents: 1, Capacity: 0, ScoreScale: 10}

	pop := populationOf(t, problem, params, Genome{0, 0, 1}, Genome{0, 1, 0})
	assert.Equal(t, 1, pop.BestIndex())
	assert.Equal(t, 6.0-30, pop.BestFitness())
}

func TestSelectReturnsFittestSampledCopy(t *testing.T) {
	problem := scenarioProblem(t, SoftPenalty{Capacity: 5, ScoreScale: 2})
	params := Parameters{PopulationSize: 3, TournamentSize: 3, MaxParents: 1, Capacity: 5, ScoreScale: 2}
	pop := populationOf(t, problem, params, Genome{1, 0, 0}, Genome{1, 1, 0}, Genome{0, 0, 1})

	// 抽到下标 0, 2, 0，最优为下标 0（适应度 10）
	got := pop.Select(&scriptedSource{values: []int{0, 2, 0}})
	assert.Equal(t, "100", got.Genome().String())

	// 抽到 1，返回副本，修改它不影响种群
	got = pop.Select(&scriptedSource{values: []int{2, 1, 0}})
	assert.Equal(t, "110", got.Genome().String())
	got.Mutate(3, newRand(1))
	assert.Equal(t, "110", pop.Member(1).Genome().String())
	assert.Equal(t, 16.0, pop.BestFitness())
}

func TestSelectTieKeepsFirstSampled(t *testing.T) {
	params := Parameters{PopulationSize: 2, TournamentSize: 2, MaxParents: 1, Capacity: 5, ScoreScale: 2}

	// 两个物品完全相同，两个个体适应度相同但基因组不同
	catalog, err := NewCatalog([]Item{{Value: 5, Weight: 1}, {Value: 5, Weight: 1}})
	require.NoError(t, err)
	problem, err := NewProblem(catalog, SoftPenalty{Capacity: 5, ScoreScale: 2})
	require.NoError(t, err)
	pop := populationOf(t, problem, params, Genome{1, 0}, Genome{0, 1})

	got := pop.Select(&scriptedSource{values: []int{1, 0}})
	assert.Equal(t, "01", got.Genome().String())

	got = pop.Select(&scriptedSource{values: []int{0, 1}})
	assert.Equal(t, "10", got.Genome().String())
}

func TestSelectionBias(t *testing.T) {
	catalog := randomCatalog(t, 2)
	problem, err := NewProblem(catalog, SoftPenalty{Capacity: 1000, ScoreScale: 2})
	require.NoError(t, err)
	params := Parameters{PopulationSize: 8, TournamentSize: 3, MaxParents: 1, Capacity: 1000, ScoreScale: 2}

	genomes := make([]Genome, params.PopulationSize)
	for i := range genomes {
		genomes[i] = make(Genome, catalog.Len())
	}
	// 下标 5 选中所有物品，其余个体为空包
	for i := range genomes[5] {
		genomes[5][i] = 1
	}
	pop := populationOf(t, problem, params, genomes...)

	rng := newRand(2024)
	hits := 0
	const draws = 4000
	for i := 0; i < draws; i++ {
		if pop.Select(rng).Value() == catalog.TotalValue() {
			hits++
		}
	}

	// 随机选择的期望为 1/8，锦标赛规模 3 时约为 1-(7/8)^3 ≈ 0.33
	assert.Greater(t, float64(hits)/draws, 0.25)
}

func TestCrossover(t *testing.T) {
	catalog := randomCatalog(t, 4)
	problem, err := NewProblem(catalog, defaultParameters().Policy())
	require.NoError(t, err)
	rng := newRand(8)

	a := NewRandomIndividual(problem, rng)
	b := NewRandomIndividual(problem, rng)

	for cut := 0; cut <= catalog.Len(); cut++ {
		child, err := Crossover(a, b, cut)
		require.NoError(t, err)

		want := append(Genome{}, a.Genome()[:cut]...)
		want = append(want, b.Genome()[cut:]...)
		assert.Equal(t, want, child.Genome())
	}

	_, err = Crossover(a, b, catalog.Len()+1)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestCrossoverLengthMismatch(t *testing.T) {
	short := scenarioProblem(t, SoftPenalty{Capacity: 5, ScoreScale: 2})
	long, err := NewProblem(randomCatalog(t, 1), defaultParameters().Policy())
	require.NoError(t, err)

	_, err = Crossover(NewRandomIndividual(short, newRand(1)), NewRandomIndividual(long, newRand(1)), 1)
	assert.ErrorIs(t, err, ErrInvalidGenomeLength)
}

func TestGenerationInvariants(t *testing.T) {
	params := defaultParameters()
	params.Capacity = 40
	params.MaxParents = 24 // 超过种群大小时需要截断
	pop, err := NewPopulation(randomCatalog(t, 6), params, newRand(6))
	require.NoError(t, err)

	rng := newRand(60)
	for gen := 1; gen <= 200; gen++ {
		before := pop.BestFitness()
		elite := pop.Best().Genome()

		require.NoError(t, pop.Generation(rng))

		require.Equal(t, params.PopulationSize, pop.Size())
		require.Equal(t, gen, pop.GenerationNumber())
		require.GreaterOrEqual(t, pop.BestFitness(), before)
		require.Equal(t, elite, pop.Member(0).Genome())
	}
}

func TestGenerationWithUnboundedMaxParents(t *testing.T) {
	params := defaultParameters()
	params.MaxParents = math.MaxInt
	pop, err := NewPopulation(randomCatalog(t, 7), params, newRand(7))
	require.NoError(t, err)

	rng := newRand(70)
	for gen := 0; gen < 20; gen++ {
		elite := pop.Best().Genome()
		require.NoError(t, pop.Generation(rng))
		require.Equal(t, params.PopulationSize, pop.Size())
		require.Equal(t, elite, pop.Member(0).Genome())
	}
}

func TestGenerationDeterministic(t *testing.T) {
	run := func() []Snapshot {
		pop, err := NewPopulation(randomCatalog(t, 9), defaultParameters(), newRand(9))
		require.NoError(t, err)

		rng := newRand(90)
		stats := []Snapshot{pop.Stats()}
		for i := 0; i < 50; i++ {
			require.NoError(t, pop.Generation(rng))
			stats = append(stats, pop.Stats())
		}
		return stats
	}

	assert.Equal(t, run(), run())
}

func TestGenerationHardThreshold(t *testing.T) {
	params := defaultParameters()
	params.FitnessPolicy = PolicyHardThreshold
	params.Capacity = 30
	pop, err := NewPopulation(randomCatalog(t, 12), params, newRand(12))
	require.NoError(t, err)

	rng := newRand(120)
	for i := 0; i < 100; i++ {
		require.NoError(t, pop.Generation(rng))
	}

	best := pop.Best()
	if best.Fitness() > 0 {
		assert.LessOrEqual(t, best.Weight(), 30)
		assert.Equal(t, float64(best.Value()), best.Fitness())
	}
}
