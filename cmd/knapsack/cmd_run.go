package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/dataset"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/experiment"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
)

type runOptions struct {
	itemsPath string
	csvPath   string
	verbose   bool
}

func newRunCmd(ga *config.GA) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "在本地执行多次试验并输出按代平均的统计量",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrials(cmd, ga, opts)
		},
	}

	addCatalogFlags(cmd, ga)
	addParameterFlags(cmd, ga)

	flags := cmd.Flags()
	flags.IntVar(&ga.Trials, "trials", ga.Trials, "试验次数")
	flags.IntVar(&ga.Generations, "generations", ga.Generations, "每次试验的迭代次数")
	flags.IntVar(&ga.Parallelism, "parallelism", ga.Parallelism, "同时执行的试验数量，<= 0 表示使用全部 CPU")
	flags.StringVar(&opts.itemsPath, "items", "", "从 CSV 文件读取物品目录，而不是随机生成")
	flags.StringVar(&opts.csvPath, "csv", "", "将每一代的统计量写入 CSV 文件")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "打印每一代的统计量")

	return cmd
}

func runTrials(cmd *cobra.Command, ga *config.GA, opts *runOptions) error {
	settings := ga.Settings()

	var catalog *knapsack.Catalog
	var err error
	if opts.itemsPath != "" {
		catalog, err = readCatalogFile(opts.itemsPath)
	} else if err = experiment.Validate(settings); err == nil {
		catalog, err = experiment.NewCatalog(settings)
	}
	if err != nil {
		return err
	}
	settings.ItemCount = catalog.Len()

	start := time.Now()
	report, err := experiment.RunCatalog(cmd.Context(), catalog, settings, nil)
	if err != nil {
		return err
	}
	slog.Info("试验执行完成",
		slog.Int("trials", settings.Trials),
		slog.Int("generations", settings.Generations),
		slog.Duration("elapsed", time.Since(start)),
	)

	out := cmd.OutOrStdout()
	if opts.verbose {
		if err := printGenerations(out, report); err != nil {
			return err
		}
	}
	printSummary(out, report)

	if opts.csvPath != "" {
		f, err := os.Create(opts.csvPath)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := dataset.WriteGenerations(f, report); err != nil {
			return err
		}
		slog.Info("统计量已写入文件", slog.String("path", opts.csvPath))
	}

	return nil
}

func readCatalogFile(path string) (*knapsack.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return dataset.ReadCatalog(f)
}

func printGenerations(w io.Writer, report *domain.ExperimentReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "generation\tavg_fitness\tavg_weight\tbest_fitness\t")
	for _, g := range report.Generations {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%.3f\t\n", g.Generation, g.AvgFitness, g.AvgWeight, g.BestFitness)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, report *domain.ExperimentReport) {
	final := report.Final()
	best := report.Best

	fmt.Fprintf(w, "物品总价值: %d, 物品总重量: %d\n", report.TotalValue, report.TotalWeight)
	fmt.Fprintf(w, "末代平均适应度: %.3f, 平均重量: %.3f, 平均最优适应度: %.3f\n",
		final.AvgFitness, final.AvgWeight, final.BestFitness)
	fmt.Fprintf(w, "最优个体: %s (价值 %d, 重量 %d, 适应度 %.3f, 第 %d 次试验第 %d 代)\n",
		best.Genome, best.Value, best.Weight, best.Fitness, best.Trial, best.Generation)
}
