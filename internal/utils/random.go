package utils

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
)

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
var digits = "0123456789"

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomExperimentName() string {
	return "实验" + GenerateRandomID(3, 3)
}

// GenerateRandomExperimentSettings 随机生成一组合法的实验设置，用于填充测试数据
func GenerateRandomExperimentSettings() domain.ExperimentSettings {
	itemCount := rand.Intn(57) + 8       // 8~64
	populationSize := rand.Intn(57) + 8  // 8~64
	maxItemWeight := rand.Intn(31) + 2   // 2~32
	capacity := itemCount * maxItemWeight / (rand.Intn(3) + 2)

	policy := knapsack.PolicySoftPenalty
	if rand.Intn(4) == 0 {
		policy = knapsack.PolicyHardThreshold
	}

	return domain.ExperimentSettings{
		Parameters: knapsack.Parameters{
			PopulationSize: populationSize,
			TournamentSize: rand.Intn(min(populationSize, 5)) + 1,
			MaxParents:     rand.Intn(populationSize) + 1,
			MutationCount:  rand.Intn(min(itemCount, 3)) + 1,
			Capacity:       capacity,
			ScoreScale:     float64(rand.Intn(4) + 2),
			FitnessPolicy:  policy,
			ClampNegative:  rand.Intn(2) == 0,
		},
		ItemCount:     itemCount,
		MaxItemWeight: maxItemWeight,
		ValueBias:     rand.Intn(4),
		Trials:        rand.Intn(10) + 1,
		Generations:   (rand.Intn(10) + 1) * 50,
		Seed:          rand.Int63(),
		Parallelism:   4,
	}
}
