package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/experiment"
)

func TestGenerateRandomExperimentSettingsAreValid(t *testing.T) {
	for i := 0; i < 200; i++ {
		settings := GenerateRandomExperimentSettings()
		require.NoError(t, experiment.Validate(settings))
	}
}

func TestGenerateRandomID(t *testing.T) {
	id := GenerateRandomID(3, 4)
	assert.Len(t, id, 7)
	assert.Contains(t, digits, string(id[6]))
}

func TestValidateRunBudget(t *testing.T) {
	settings := GenerateRandomExperimentSettings()
	settings.Trials = 10
	settings.Generations = 99
	settings.Parameters.PopulationSize = 20

	assert.NoError(t, ValidateRunBudget(settings, 20000))
	assert.Error(t, ValidateRunBudget(settings, 19999))
}

func TestValidateReportWithSettings(t *testing.T) {
	settings := GenerateRandomExperimentSettings()
	settings.Trials = 2
	settings.Generations = 20

	report, err := experiment.Run(context.Background(), settings, nil)
	require.NoError(t, err)
	require.NoError(t, ValidateReportWithSettings(report, settings))

	settings.Trials = 3
	assert.Error(t, ValidateReportWithSettings(report, settings))
}
