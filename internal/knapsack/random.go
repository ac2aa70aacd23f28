package knapsack

// Source 是核心算法唯一依赖的随机数来源，*rand.Rand 即满足该接口
type Source interface {
	// Intn 返回 [0, n) 内均匀分布的整数
	Intn(n int) int
}
