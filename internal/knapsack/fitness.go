package knapsack

// FitnessPolicy 根据个体的总价值和总重量计算适应度
type FitnessPolicy interface {
	Fitness(value, weight int) float64
}

/**
 * SoftPenalty 为软约束：
 * 		weight <= Capacity 时 fitness = value
 * 		否则 fitness = value - ScoreScale * (weight - Capacity)
 * ClampNegative 为 true 时，负的适应度会被截断为 0
 */
type SoftPenalty struct {
	Capacity      int
	ScoreScale    float64
	ClampNegative bool
}

func (p SoftPenalty) Fitness(value, weight int) float64 {
	if weight <= p.Capacity {
		return float64(value)
	}

	fitness := float64(value) - p.ScoreScale*float64(weight-p.Capacity)
	if p.ClampNegative && fitness < 0 {
		return 0
	}
	return fitness
}

// HardThreshold 为硬约束：超重的个体适应度直接为 0
type HardThreshold struct {
	Capacity int
}

func (p HardThreshold) Fitness(value, weight int) float64 {
	if weight > p.Capacity {
		return 0
	}
	return float64(value)
}
