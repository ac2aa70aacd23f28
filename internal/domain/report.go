package domain

import "github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"

// GenerationStats 为某一代在所有试验上的平均统计量
type GenerationStats struct {
	Generation  int     `json:"generation"`
	AvgFitness  float64 `json:"avgFitness"`
	AvgWeight   float64 `json:"avgWeight"`
	BestFitness float64 `json:"bestFitness"`
}

// BestSolution 为所有试验中出现过的最优个体
type BestSolution struct {
	Trial      int     `json:"trial"`
	Generation int     `json:"generation"`
	Value      int     `json:"value"`
	Weight     int     `json:"weight"`
	Fitness    float64 `json:"fitness"`
	Genome     string  `json:"genome"`
}

type ExperimentReport struct {
	Catalog     []knapsack.Item   `json:"catalog"`
	TotalValue  int               `json:"totalValue"`
	TotalWeight int               `json:"totalWeight"`
	Trials      int               `json:"trials"`
	Generations []GenerationStats `json:"generations"`
	Best        BestSolution      `json:"best"`
}

// Final 返回最后一代的平均统计量
func (r *ExperimentReport) Final() GenerationStats {
	if len(r.Generations) == 0 {
		return GenerationStats{}
	}
	return r.Generations[len(r.Generations)-1]
}
