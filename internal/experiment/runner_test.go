package experiment

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
)

func testSettings() domain.ExperimentSettings {
	return domain.ExperimentSettings{
		Parameters: knapsack.Parameters{
			PopulationSize: 16,
			TournamentSize: 3,
			MaxParents:     4,
			MutationCount:  1,
			Capacity:       64,
			ScoreScale:     2,
			FitnessPolicy:  knapsack.PolicySoftPenalty,
		},
		ItemCount:     16,
		MaxItemWeight: 32,
		ValueBias:     2,
		Trials:        6,
		Generations:   40,
		Seed:          17,
		Parallelism:   3,
	}
}

func TestRunReportShape(t *testing.T) {
	settings := testSettings()
	report, err := Run(context.Background(), settings, nil)
	require.NoError(t, err)

	assert.Len(t, report.Catalog, settings.ItemCount)
	assert.Equal(t, settings.Trials, report.Trials)
	require.Len(t, report.Generations, settings.Generations+1)
	for i, g := range report.Generations {
		assert.Equal(t, i, g.Generation)
	}
	assert.Len(t, report.Best.Genome, settings.ItemCount)
	assert.GreaterOrEqual(t, report.Best.Fitness, report.Final().BestFitness)
}

func TestRunAveragedBestIsMonotonic(t *testing.T) {
	report, err := Run(context.Background(), testSettings(), nil)
	require.NoError(t, err)

	for i := 1; i < len(report.Generations); i++ {
		assert.GreaterOrEqual(t, report.Generations[i].BestFitness, report.Generations[i-1].BestFitness)
	}
}

func TestRunDeterministicAcrossParallelism(t *testing.T) {
	serial := testSettings()
	serial.Parallelism = 1
	parallel := testSettings()
	parallel.Parallelism = 8

	a, err := Run(context.Background(), serial, nil)
	require.NoError(t, err)
	b, err := Run(context.Background(), parallel, nil)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRunMatchesSingleTrial(t *testing.T) {
	settings := testSettings()
	settings.Trials = 1

	report, err := Run(context.Background(), settings, nil)
	require.NoError(t, err)

	catalog, err := NewCatalog(settings)
	require.NoError(t, err)
	res, err := runTrial(context.Background(), catalog, settings, 0)
	require.NoError(t, err)

	for gen, s := range res.stats {
		assert.Equal(t, s.AvgFitness, report.Generations[gen].AvgFitness)
		assert.Equal(t, s.BestFitness, report.Generations[gen].BestFitness)
	}
}

func TestRunReportsProgress(t *testing.T) {
	var mu sync.Mutex
	var seen []int

	_, err := Run(context.Background(), testSettings(), func(completed int) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, completed)
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, seen)
}

func TestRunInvalidSettings(t *testing.T) {
	settings := testSettings()
	settings.Parameters.TournamentSize = 100
	_, err := Run(context.Background(), settings, nil)
	assert.ErrorIs(t, err, knapsack.ErrInvalidConfiguration)

	settings = testSettings()
	settings.Trials = 0
	_, err = Run(context.Background(), settings, nil)
	assert.ErrorIs(t, err, knapsack.ErrInvalidConfiguration)

	settings = testSettings()
	settings.ItemCount = 0
	_, err = Run(context.Background(), settings, nil)
	assert.ErrorIs(t, err, knapsack.ErrEmptyCatalog)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testSettings(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunZeroGenerations(t *testing.T) {
	settings := testSettings()
	settings.Generations = 0

	report, err := Run(context.Background(), settings, nil)
	require.NoError(t, err)
	require.Len(t, report.Generations, 1)
	assert.Equal(t, 0, report.Best.Generation)
}
