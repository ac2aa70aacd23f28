package knapsack

import "fmt"

type PolicyKind string

const (
	PolicySoftPenalty   PolicyKind = "soft"
	PolicyHardThreshold PolicyKind = "hard"
)

// 遗传算法参数，一次运行中保持不变
type Parameters struct {
	PopulationSize int        `json:"populationSize"` // 种群大小
	TournamentSize int        `json:"tournamentSize"` // 锦标赛规模
	MaxParents     int        `json:"maxParents"`     // 每代最多产生的子代数量
	MutationCount  int        `json:"mutationCount"`  // 每个子代翻转的基因位数
	Capacity       int        `json:"capacity"`       // 背包容量
	ScoreScale     float64    `json:"scoreScale"`     // 超重惩罚系数
	FitnessPolicy  PolicyKind `json:"fitnessPolicy"`
	ClampNegative  bool       `json:"clampNegative"` // 是否将负的适应度截断为 0
}

// Validate 检查参数在给定基因组长度下是否合法
func (p Parameters) Validate(genomeLength int) error {
	switch {
	case genomeLength <= 0:
		return ErrEmptyCatalog
	case p.PopulationSize <= 0:
		return fmt.Errorf("%w: 种群大小必须为正数", ErrInvalidConfiguration)
	case p.TournamentSize <= 0:
		return fmt.Errorf("%w: 锦标赛规模必须为正数", ErrInvalidConfiguration)
	case p.TournamentSize > p.PopulationSize:
		return fmt.Errorf("%w: 锦标赛规模 %d 超过了种群大小 %d", ErrInvalidConfiguration, p.TournamentSize, p.PopulationSize)
	case p.MaxParents <= 0:
		return fmt.Errorf("%w: 每代子代数量上限必须为正数", ErrInvalidConfiguration)
	case p.MutationCount < 0:
		return fmt.Errorf("%w: 变异位数不能为负数", ErrInvalidConfiguration)
	case p.MutationCount > genomeLength:
		return fmt.Errorf("%w: 变异位数 %d 超过了基因组长度 %d", ErrInvalidConfiguration, p.MutationCount, genomeLength)
	case p.Capacity < 0:
		return fmt.Errorf("%w: 背包容量不能为负数", ErrInvalidConfiguration)
	}

	switch p.FitnessPolicy {
	case PolicySoftPenalty, "":
		if p.ScoreScale <= 1 {
			return fmt.Errorf("%w: 软约束的惩罚系数必须大于 1", ErrInvalidConfiguration)
		}
	case PolicyHardThreshold:
	default:
		return fmt.Errorf("%w: 未知的适应度策略 %q", ErrInvalidConfiguration, p.FitnessPolicy)
	}

	return nil
}

// Policy 根据参数构造对应的适应度策略，空字符串视为软约束
func (p Parameters) Policy() FitnessPolicy {
	if p.FitnessPolicy == PolicyHardThreshold {
		return HardThreshold{Capacity: p.Capacity}
	}
	return SoftPenalty{
		Capacity:      p.Capacity,
		ScoreScale:    p.ScoreScale,
		ClampNegative: p.ClampNegative,
	}
}
