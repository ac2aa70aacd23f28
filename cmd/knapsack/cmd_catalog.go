package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/dataset"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/experiment"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
)

func newCatalogCmd(ga *config.GA) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "根据种子生成物品目录并以 CSV 格式输出",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := experiment.NewCatalog(ga.Settings())
			if err != nil {
				return err
			}

			if outPath == "" {
				return dataset.WriteCatalog(cmd.OutOrStdout(), catalog)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()

			return dataset.WriteCatalog(f, catalog)
		},
	}

	addCatalogFlags(cmd, ga)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "写入的 CSV 文件，为空时输出到标准输出")

	return cmd
}

func newEvalCmd(ga *config.GA) *cobra.Command {
	var itemsPath string

	cmd := &cobra.Command{
		Use:   "eval <genome>",
		Short: "计算给定基因组在物品目录上的价值、重量与适应度",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genome, err := knapsack.ParseGenome(args[0])
			if err != nil {
				return err
			}

			settings := ga.Settings()
			var catalog *knapsack.Catalog
			if itemsPath != "" {
				catalog, err = readCatalogFile(itemsPath)
			} else {
				catalog, err = experiment.NewCatalog(settings)
			}
			if err != nil {
				return err
			}

			if err := settings.Parameters.Validate(catalog.Len()); err != nil {
				return err
			}
			problem, err := knapsack.NewProblem(catalog, settings.Parameters.Policy())
			if err != nil {
				return err
			}
			ind, err := knapsack.NewIndividual(problem, genome)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ind.String())
			return nil
		},
	}

	addCatalogFlags(cmd, ga)
	addParameterFlags(cmd, ga)
	cmd.Flags().StringVar(&itemsPath, "items", "", "从 CSV 文件读取物品目录，而不是随机生成")

	return cmd
}
