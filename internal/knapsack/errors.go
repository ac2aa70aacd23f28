package knapsack

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("无效的遗传算法配置")
	ErrInvalidGenomeLength  = errors.New("基因组长度与物品数量不一致")
	// 空目录与非法基因位都属于配置错误
	ErrEmptyCatalog     = fmt.Errorf("%w: 物品目录为空", ErrInvalidConfiguration)
	ErrInvalidGenomeBit = fmt.Errorf("%w: 基因位只能是 0 或 1", ErrInvalidConfiguration)
	ErrNilFitnessPolicy = fmt.Errorf("%w: 未指定适应度策略", ErrInvalidConfiguration)
)
