package knapsack

import (
	"fmt"
	"strings"
)

// Genome 是定长的 0/1 序列
type Genome []uint8

func (g Genome) String() string {
	var sb strings.Builder
	sb.Grow(len(g))
	for _, bit := range g {
		if bit == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// ParseGenome 将形如 "1101" 的字符串解析为基因组
func ParseGenome(s string) (Genome, error) {
	g := make(Genome, len(s))
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			g[i] = 1
		default:
			return nil, fmt.Errorf("基因组中包含非法字符 %q", c)
		}
	}
	return g, nil
}

// Individual 持有一个基因组以及由它推导出的价值、重量与适应度，
// 任何公开方法返回之前这些指标都已经重新计算
type Individual struct {
	problem *Problem
	genome  Genome
	value   int
	weight  int
	fitness float64
}

// NewRandomIndividual 随机初始化一个个体，每一位独立地取 0 或 1
func NewRandomIndividual(problem *Problem, rng Source) *Individual {
	genome := make(Genome, problem.GenomeLength())
	for i := range genome {
		genome[i] = uint8(rng.Intn(2))
	}

	ind := &Individual{
		problem: problem,
		genome:  genome,
	}
	ind.Update()
	return ind
}

// NewIndividual 使用给定的基因组构造个体，基因组会被复制，长度必须与物品数量一致
func NewIndividual(problem *Problem, genome Genome) (*Individual, error) {
	if len(genome) != problem.GenomeLength() {
		return nil, fmt.Errorf("%w: 期望 %d 位，实际 %d 位", ErrInvalidGenomeLength, problem.GenomeLength(), len(genome))
	}

	g := make(Genome, len(genome))
	for i, bit := range genome {
		if bit > 1 {
			return nil, fmt.Errorf("%w: 第 %d 位的取值为 %d", ErrInvalidGenomeBit, i, bit)
		}
		g[i] = bit
	}

	ind := &Individual{
		problem: problem,
		genome:  g,
	}
	ind.Update()
	return ind, nil
}

// Mutate 翻转 count 个不同的随机位（不放回抽样），随后重新计算指标
func (ind *Individual) Mutate(count int, rng Source) {
	n := len(ind.genome)
	if count > n {
		count = n
	}

	// 部分 Fisher-Yates 洗牌，只打乱前 count 个位置
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + rng.Intn(n-i)
		positions[i], positions[j] = positions[j], positions[i]
		ind.genome[positions[i]] ^= 1
	}

	ind.Update()
}

// Copy 深拷贝个体，指标重新计算而不是直接复制
func (ind *Individual) Copy() *Individual {
	clone := &Individual{
		problem: ind.problem,
		genome:  make(Genome, len(ind.genome)),
	}
	copy(clone.genome, ind.genome)
	clone.Update()
	return clone
}

// Update 根据基因组和物品目录重新计算价值、重量和适应度
func (ind *Individual) Update() {
	ind.value = 0
	ind.weight = 0

	for i, bit := range ind.genome {
		if bit == 1 {
			item := ind.problem.catalog.items[i]
			ind.value += item.Value
			ind.weight += item.Weight
		}
	}

	ind.fitness = ind.problem.policy.Fitness(ind.value, ind.weight)
}

func (ind *Individual) Value() int {
	return ind.value
}

func (ind *Individual) Weight() int {
	return ind.weight
}

func (ind *Individual) Fitness() float64 {
	return ind.fitness
}

// Genome 返回基因组的副本
func (ind *Individual) Genome() Genome {
	g := make(Genome, len(ind.genome))
	copy(g, ind.genome)
	return g
}

func (ind *Individual) String() string {
	return fmt.Sprintf("%d %d %g %s", ind.value, ind.weight, ind.fitness, ind.genome)
}
