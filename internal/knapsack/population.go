package knapsack

import "fmt"

// Population 持有一代个体以及它们的聚合统计量
type Population struct {
	problem    *Problem
	parameters Parameters
	members    []*Individual
	generation int

	avgFitness  float64
	avgWeight   float64
	bestFitness float64
	bestIndex   int
}

// Snapshot 是某一代种群统计量的只读快照
type Snapshot struct {
	Generation  int     `json:"generation"`
	AvgFitness  float64 `json:"avgFitness"`
	AvgWeight   float64 `json:"avgWeight"`
	BestFitness float64 `json:"bestFitness"`
	BestValue   int     `json:"bestValue"`
	BestWeight  int     `json:"bestWeight"`
	BestGenome  string  `json:"bestGenome"`
}

// NewPopulation 校验参数并生成 PopulationSize 个随机个体，参数不合法时不会返回任何种群
func NewPopulation(catalog *Catalog, parameters Parameters, rng Source) (*Population, error) {
	if catalog == nil {
		return nil, ErrEmptyCatalog
	}
	if err := parameters.Validate(catalog.Len()); err != nil {
		return nil, err
	}

	problem, err := NewProblem(catalog, parameters.Policy())
	if err != nil {
		return nil, err
	}

	pop := &Population{
		problem:    problem,
		parameters: parameters,
		members:    make([]*Individual, parameters.PopulationSize),
	}
	for i := range pop.members {
		pop.members[i] = NewRandomIndividual(problem, rng)
	}
	pop.Update()

	return pop, nil
}

// Select 锦标赛选择：有放回地抽取 TournamentSize 个下标，返回其中适应度最高者的副本，
// 适应度相同时保留最先抽到的个体
func (pop *Population) Select(rng Source) *Individual {
	best := -1
	for i := 0; i < pop.parameters.TournamentSize; i++ {
		idx := rng.Intn(len(pop.members))
		if best == -1 || pop.members[idx].fitness > pop.members[best].fitness {
			best = idx
		}
	}

	return pop.members[best].Copy()
}

// Crossover 单点交叉：子代基因组为 a[0:cut] 拼接 b[cut:]
func Crossover(a, b *Individual, cut int) (*Individual, error) {
	length := len(a.genome)
	if len(b.genome) != length {
		return nil, fmt.Errorf("%w: 父代长度分别为 %d 和 %d", ErrInvalidGenomeLength, length, len(b.genome))
	}
	if cut < 0 || cut > length {
		return nil, fmt.Errorf("%w: 交叉点 %d 超出范围 [0, %d]", ErrInvalidConfiguration, cut, length)
	}

	genome := make(Genome, 0, length)
	genome = append(genome, a.genome[:cut]...)
	genome = append(genome, b.genome[cut:]...)

	return NewIndividual(a.problem, genome)
}

/**
 * Generation 将种群推进一代：
 * 		1. 精英个体的副本作为新一代的第一个成员
 * 		2. 随机产生 [1, MaxParents] 个子代，每个子代由两次锦标赛选择的父代单点交叉后变异得到
 * 		3. 子代数量达到 PopulationSize 后不再产生，不足时用随机个体补齐
 * 		4. 替换成员并重新计算统计量
 */
func (pop *Population) Generation(rng Source) error {
	size := pop.parameters.PopulationSize
	length := pop.problem.GenomeLength()

	next := make([]*Individual, 0, size)

	// 保留精英，这里必须拷贝，防止之后对其他个体的修改影响到精英
	next = append(next, pop.members[pop.bestIndex].Copy())

	// 超出种群大小的子代最终会被截断，因此不必产生
	offspring := rng.Intn(pop.parameters.MaxParents) + 1
	for i := 0; i < offspring && len(next) < size; i++ {
		p1 := pop.Select(rng)
		p2 := pop.Select(rng)

		child, err := Crossover(p1, p2, rng.Intn(length))
		if err != nil {
			return err
		}
		child.Mutate(pop.parameters.MutationCount, rng)

		next = append(next, child)
	}

	for len(next) < size {
		next = append(next, NewRandomIndividual(pop.problem, rng))
	}

	pop.members = next
	pop.generation++
	pop.Update()

	return nil
}

// Update 单次遍历重新计算平均适应度、平均重量以及最优个体（相同适应度取下标最小者）
func (pop *Population) Update() {
	pop.avgFitness = 0
	pop.avgWeight = 0
	pop.bestIndex = -1

	for i, member := range pop.members {
		pop.avgFitness += member.fitness
		pop.avgWeight += float64(member.weight)
		if pop.bestIndex == -1 || member.fitness > pop.bestFitness {
			pop.bestFitness = member.fitness
			pop.bestIndex = i
		}
	}

	n := float64(len(pop.members))
	pop.avgFitness /= n
	pop.avgWeight /= n
}

func (pop *Population) Size() int {
	return len(pop.members)
}

func (pop *Population) GenerationNumber() int {
	return pop.generation
}

func (pop *Population) Parameters() Parameters {
	return pop.parameters
}

func (pop *Population) Catalog() *Catalog {
	return pop.problem.catalog
}

func (pop *Population) AvgFitness() float64 {
	return pop.avgFitness
}

func (pop *Population) AvgWeight() float64 {
	return pop.avgWeight
}

func (pop *Population) BestFitness() float64 {
	return pop.bestFitness
}

func (pop *Population) BestIndex() int {
	return pop.bestIndex
}

// Best 返回当前最优个体的副本
func (pop *Population) Best() *Individual {
	return pop.members[pop.bestIndex].Copy()
}

// Member 返回第 i 个成员的副本
func (pop *Population) Member(i int) *Individual {
	return pop.members[i].Copy()
}

func (pop *Population) Stats() Snapshot {
	best := pop.members[pop.bestIndex]
	return Snapshot{
		Generation:  pop.generation,
		AvgFitness:  pop.avgFitness,
		AvgWeight:   pop.avgWeight,
		BestFitness: pop.bestFitness,
		BestValue:   best.value,
		BestWeight:  best.weight,
		BestGenome:  best.genome.String(),
	}
}

func (pop *Population) String() string {
	return fmt.Sprintf("Avg: %g Best: %g Best Ind: %d", pop.avgFitness, pop.bestFitness, pop.bestIndex)
}
