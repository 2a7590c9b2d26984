/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/packagewjx/iotdb-bench/internal/compare"
	"github.com/packagewjx/iotdb-bench/internal/report"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出一次运行的全部报告文件",
	Long: "对一次运行重新计算比较结果，在输出目录生成ranking.csv、categories.csv、\n" +
		"details.csv三个表格文件，以及report.md与summary.txt两份报告。",
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, resolvedRunID, err := loadSamples()
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			return fmt.Errorf("RunID %s没有任何样本", resolvedRunID)
		}

		if err := os.MkdirAll(exportDir, 0755); err != nil {
			return errors.Wrap(err, "创建输出目录出错")
		}

		r := report.Build(compare.Run(resolvedRunID, samples))
		files := []struct {
			name  string
			write func(io.Writer) error
		}{
			{"ranking.csv", func(w io.Writer) error { return report.WriteRankingCSV(w, r.Ranking) }},
			{"categories.csv", func(w io.Writer) error { return report.WriteCategoryCSV(w, r.CategoryPerformance) }},
			{"details.csv", func(w io.Writer) error { return report.WriteDetailCSV(w, r.Details) }},
			{"report.md", func(w io.Writer) error { return report.WriteMarkdown(w, r) }},
			{"summary.txt", func(w io.Writer) error { return report.WriteExecutiveSummary(w, r) }},
		}
		for _, file := range files {
			path := filepath.Join(exportDir, file.name)
			f, err := os.Create(path)
			if err != nil {
				return errors.Wrapf(err, "创建%s出错", path)
			}
			err = file.write(f)
			_ = f.Close()
			if err != nil {
				return err
			}
			fmt.Println("已生成", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&runID, FlagRunID, "", "要导出的RunID，为空或latest时取仓库中最新的一次运行")
	exportCmd.Flags().StringVar(&compareFromFile, FlagFromFile, "", "从CSV文件读取样本，而不是结果仓库")
	exportCmd.Flags().StringVarP(&exportDir, FlagOutput, "o", "benchmark-report", "报告文件的输出目录")
}
