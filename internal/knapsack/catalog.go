package knapsack

import "fmt"

// 物品价值在 weight + bias 的基础上额外附加 [0, maxValueJitter] 的随机扰动
const maxValueJitter = 3

type Item struct {
	Value  int `json:"value"`
	Weight int `json:"weight"`
}

// Catalog 是一次运行中只读的物品列表，基因组的第 i 位对应第 i 个物品
type Catalog struct {
	items []Item
}

func NewCatalog(items []Item) (*Catalog, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}

	for i, item := range items {
		if item.Value < 0 || item.Weight < 0 {
			return nil, fmt.Errorf("%w: 第 %d 个物品的价值或重量为负数", ErrInvalidConfiguration, i)
		}
	}

	// 复制一份，防止调用者在外部修改
	c := &Catalog{items: make([]Item, len(items))}
	copy(c.items, items)

	return c, nil
}

// GenerateCatalog 随机生成 count 个物品，重量在 [1, maxItemWeight] 内均匀分布，
// 价值为重量加上 valueBias 以及一个小的随机扰动
func GenerateCatalog(count, maxItemWeight, valueBias int, rng Source) (*Catalog, error) {
	if count <= 0 {
		return nil, ErrEmptyCatalog
	}
	if maxItemWeight <= 0 {
		return nil, fmt.Errorf("%w: 物品最大重量必须为正数", ErrInvalidConfiguration)
	}
	if valueBias < 0 {
		return nil, fmt.Errorf("%w: 价值偏置不能为负数", ErrInvalidConfiguration)
	}

	items := make([]Item, count)
	for i := range items {
		weight := rng.Intn(maxItemWeight) + 1
		items[i] = Item{
			Value:  weight + valueBias + rng.Intn(maxValueJitter+1),
			Weight: weight,
		}
	}

	return &Catalog{items: items}, nil
}

func (c *Catalog) Len() int {
	return len(c.items)
}

func (c *Catalog) Item(i int) Item {
	return c.items[i]
}

// Items 返回物品列表的副本
func (c *Catalog) Items() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Catalog) TotalWeight() int {
	total := 0
	for _, item := range c.items {
		total += item.Weight
	}
	return total
}

func (c *Catalog) TotalValue() int {
	total := 0
	for _, item := range c.items {
		total += item.Value
	}
	return total
}
