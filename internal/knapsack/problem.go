package knapsack

// Problem 将物品目录和适应度策略绑定在一起，同一次运行中的所有个体共享同一个 Problem
type Problem struct {
	catalog *Catalog
	policy  FitnessPolicy
}

func NewProblem(catalog *Catalog, policy FitnessPolicy) (*Problem, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	if policy == nil {
		return nil, ErrNilFitnessPolicy
	}

	return &Problem{
		catalog: catalog,
		policy:  policy,
	}, nil
}

func (p *Problem) Catalog() *Catalog {
	return p.catalog
}

func (p *Problem) GenomeLength() int {
	return p.catalog.Len()
}
