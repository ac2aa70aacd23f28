// Package dataset 负责物品目录与实验统计量的 CSV 导入导出
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
)

var catalogHeader = []string{"value", "weight"}

// ReadCatalog 读取形如 "value,weight" 的 CSV，表头可选，空行会被忽略
func ReadCatalog(r io.Reader) (*knapsack.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var items []knapsack.Item
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		// 第一行可能是表头
		if line == 1 && strings.EqualFold(record[0], catalogHeader[0]) {
			continue
		}

		value, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("第 %d 行的价值无效: %w", line, err)
		}
		weight, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("第 %d 行的重量无效: %w", line, err)
		}

		items = append(items, knapsack.Item{Value: value, Weight: weight})
	}

	return knapsack.NewCatalog(items)
}

func WriteCatalog(w io.Writer, catalog *knapsack.Catalog) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(catalogHeader); err != nil {
		return err
	}

	for _, item := range catalog.Items() {
		if err := writer.Write([]string{strconv.Itoa(item.Value), strconv.Itoa(item.Weight)}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteGenerations 导出每一代的平均统计量，供绘图工具使用
func WriteGenerations(w io.Writer, report *domain.ExperimentReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"generation", "avg_fitness", "avg_weight", "best_fitness"}); err != nil {
		return err
	}

	for _, g := range report.Generations {
		record := []string{
			strconv.Itoa(g.Generation),
			strconv.FormatFloat(g.AvgFitness, 'f', -1, 64),
			strconv.FormatFloat(g.AvgWeight, 'f', -1, 64),
			strconv.FormatFloat(g.BestFitness, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
