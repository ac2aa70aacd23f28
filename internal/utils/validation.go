package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

// ValidateRunBudget 检查一次同步运行的计算量（试验次数 × 迭代次数 × 种群大小）是否超出上限
func ValidateRunBudget(settings domain.ExperimentSettings, budget int) error {
	cost := int64(settings.Trials) * int64(settings.Generations+1) * int64(settings.Parameters.PopulationSize)
	if cost > int64(budget) {
		return fmt.Errorf("计算量 %d 超过了同步运行的上限 %d，请改为创建实验", cost, budget)
	}
	return nil
}

// ValidateReportWithSettings 检查报告是否与实验设置相符
func ValidateReportWithSettings(report *domain.ExperimentReport, settings domain.ExperimentSettings) error {
	if report.Trials != settings.Trials {
		return fmt.Errorf("报告中的试验次数 %d 与设置 %d 不一致", report.Trials, settings.Trials)
	}
	if len(report.Generations) != settings.Generations+1 {
		return fmt.Errorf("报告中的代数 %d 与设置 %d 不一致", len(report.Generations), settings.Generations+1)
	}
	if len(report.Best.Genome) != len(report.Catalog) {
		return fmt.Errorf("最优个体的基因组长度 %d 与物品数量 %d 不一致", len(report.Best.Genome), len(report.Catalog))
	}

	// 精英保留保证了每一代的平均最优适应度单调不减
	for i := 1; i < len(report.Generations); i++ {
		if report.Generations[i].BestFitness < report.Generations[i-1].BestFitness {
			return fmt.Errorf("第 %d 代的最优适应度下降了", i)
		}
	}

	return nil
}
