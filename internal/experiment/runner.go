// Package experiment 负责多次试验的编排：每次试验使用独立的随机源和种群，
// 最后按代对统计量求平均
package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
	"golang.org/x/sync/errgroup"
)

// TrialDoneFunc 在每次试验完成后调用，completed 为已完成的试验数量。
// 并行执行时可能被多个 goroutine 同时调用
type TrialDoneFunc func(completed int)

type trialResult struct {
	stats []knapsack.Snapshot
}

// Validate 检查与物品目录无关的实验设置
func Validate(settings domain.ExperimentSettings) error {
	switch {
	case settings.ItemCount <= 0:
		return knapsack.ErrEmptyCatalog
	case settings.MaxItemWeight <= 0:
		return fmt.Errorf("%w: 物品最大重量必须为正数", knapsack.ErrInvalidConfiguration)
	case settings.ValueBias < 0:
		return fmt.Errorf("%w: 价值偏置不能为负数", knapsack.ErrInvalidConfiguration)
	case settings.Trials <= 0:
		return fmt.Errorf("%w: 试验次数必须为正数", knapsack.ErrInvalidConfiguration)
	case settings.Generations < 0:
		return fmt.Errorf("%w: 迭代次数不能为负数", knapsack.ErrInvalidConfiguration)
	}

	return settings.Parameters.Validate(settings.ItemCount)
}

// NewCatalog 根据实验设置中的种子生成物品目录，同一个种子总是得到同一份目录
func NewCatalog(settings domain.ExperimentSettings) (*knapsack.Catalog, error) {
	rng := rand.New(rand.NewSource(settings.Seed))
	return knapsack.GenerateCatalog(settings.ItemCount, settings.MaxItemWeight, settings.ValueBias, rng)
}

// Run 生成物品目录并执行全部试验
func Run(ctx context.Context, settings domain.ExperimentSettings, onTrialDone TrialDoneFunc) (*domain.ExperimentReport, error) {
	if err := Validate(settings); err != nil {
		return nil, err
	}

	catalog, err := NewCatalog(settings)
	if err != nil {
		return nil, err
	}

	return RunCatalog(ctx, catalog, settings, onTrialDone)
}

// RunCatalog 在给定的物品目录上执行全部试验，settings 中与目录生成相关的字段会被忽略。
// 结果按试验下标汇总，因此与并行度无关
func RunCatalog(ctx context.Context, catalog *knapsack.Catalog, settings domain.ExperimentSettings, onTrialDone TrialDoneFunc) (*domain.ExperimentReport, error) {
	if settings.Trials <= 0 {
		return nil, fmt.Errorf("%w: 试验次数必须为正数", knapsack.ErrInvalidConfiguration)
	}
	if settings.Generations < 0 {
		return nil, fmt.Errorf("%w: 迭代次数不能为负数", knapsack.ErrInvalidConfiguration)
	}
	if err := settings.Parameters.Validate(catalog.Len()); err != nil {
		return nil, err
	}

	parallelism := settings.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	results := make([]trialResult, settings.Trials)
	var completed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for trial := 0; trial < settings.Trials; trial++ {
		g.Go(func() error {
			res, err := runTrial(ctx, catalog, settings, trial)
			if err != nil {
				return fmt.Errorf("第 %d 次试验失败: %w", trial, err)
			}
			results[trial] = res

			done := completed.Add(1)
			if onTrialDone != nil {
				onTrialDone(int(done))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregate(catalog, settings, results), nil
}

// runTrial 使用独立的随机源执行一次完整的运行，记录第 0 代到最后一代的统计量
func runTrial(ctx context.Context, catalog *knapsack.Catalog, settings domain.ExperimentSettings, trial int) (trialResult, error) {
	rng := rand.New(rand.NewSource(TrialSeed(settings.Seed, trial)))

	pop, err := knapsack.NewPopulation(catalog, settings.Parameters, rng)
	if err != nil {
		return trialResult{}, err
	}

	stats := make([]knapsack.Snapshot, 0, settings.Generations+1)
	stats = append(stats, pop.Stats())

	for gen := 0; gen < settings.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return trialResult{}, err
		}
		if err := pop.Generation(rng); err != nil {
			return trialResult{}, err
		}
		stats = append(stats, pop.Stats())
	}

	return trialResult{stats: stats}, nil
}

// TrialSeed 返回第 trial 次试验使用的种子，种子本身留给物品目录
func TrialSeed(seed int64, trial int) int64 {
	return seed + 1 + int64(trial)
}

func aggregate(catalog *knapsack.Catalog, settings domain.ExperimentSettings, results []trialResult) *domain.ExperimentReport {
	report := &domain.ExperimentReport{
		Catalog:     catalog.Items(),
		TotalValue:  catalog.TotalValue(),
		TotalWeight: catalog.TotalWeight(),
		Trials:      len(results),
		Generations: make([]domain.GenerationStats, settings.Generations+1),
	}

	n := float64(len(results))
	bestSet := false

	for gen := range report.Generations {
		stats := domain.GenerationStats{Generation: gen}
		for trial, res := range results {
			s := res.stats[gen]
			stats.AvgFitness += s.AvgFitness
			stats.AvgWeight += s.AvgWeight
			stats.BestFitness += s.BestFitness

			// 相同适应度时保留更早出现的个体
			if !bestSet || s.BestFitness > report.Best.Fitness {
				bestSet = true
				report.Best = domain.BestSolution{
					Trial:      trial,
					Generation: gen,
					Value:      s.BestValue,
					Weight:     s.BestWeight,
					Fitness:    s.BestFitness,
					Genome:     s.BestGenome,
				}
			}
		}
		stats.AvgFitness /= n
		stats.AvgWeight /= n
		stats.BestFitness /= n
		report.Generations[gen] = stats
	}

	return report
}
