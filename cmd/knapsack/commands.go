package main

import (
	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
)

// newRootCmd 组装所有子命令，ga 中的值作为参数默认值并接收命令行覆盖
func newRootCmd(ga *config.GA) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "knapsack",
		Short:         "使用遗传算法求解 0/1 背包问题",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newRunCmd(ga))
	rootCmd.AddCommand(newCatalogCmd(ga))
	rootCmd.AddCommand(newEvalCmd(ga))

	return rootCmd
}

// 物品目录相关的参数，run / catalog / eval 共用
func addCatalogFlags(cmd *cobra.Command, ga *config.GA) {
	flags := cmd.Flags()
	flags.IntVar(&ga.ItemCount, "item-count", ga.ItemCount, "物品数量")
	flags.IntVar(&ga.MaxItemWeight, "max-item-weight", ga.MaxItemWeight, "单个物品的最大重量")
	flags.IntVar(&ga.ValueBias, "value-bias", ga.ValueBias, "物品价值相对重量的偏置")
	flags.Int64Var(&ga.Seed, "seed", ga.Seed, "随机种子，物品目录由该种子生成")
}

// 种群与适应度相关的参数
func addParameterFlags(cmd *cobra.Command, ga *config.GA) {
	flags := cmd.Flags()
	flags.IntVar(&ga.Capacity, "capacity", ga.Capacity, "背包容量")
	flags.IntVar(&ga.PopSize, "pop-size", ga.PopSize, "种群大小")
	flags.IntVar(&ga.TournSize, "tourn-size", ga.TournSize, "锦标赛大小")
	flags.IntVar(&ga.MaxParents, "max-parents", ga.MaxParents, "每代最多产生的子代数量")
	flags.IntVar(&ga.MutationCount, "mutation-count", ga.MutationCount, "每个子代翻转的基因位数")
	flags.Float64Var(&ga.ScoreScale, "score-scale", ga.ScoreScale, "超重惩罚系数")
	flags.StringVar(&ga.FitnessPolicy, "fitness-policy", ga.FitnessPolicy, "适应度策略 (soft / hard)")
	flags.BoolVar(&ga.ClampNegative, "clamp-negative", ga.ClampNegative, "将负的适应度截断为 0")
}
