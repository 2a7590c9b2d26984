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
	"os"

	"github.com/packagewjx/iotdb-bench/internal/compare"
	"github.com/packagewjx/iotdb-bench/internal/report"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "打印一次运行的Markdown报告",
	Long:  "对一次运行重新计算比较结果，将完整的Markdown报告打印到标准输出。",
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, resolvedRunID, err := loadSamples()
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			return fmt.Errorf("RunID %s没有任何样本", resolvedRunID)
		}
		return report.WriteMarkdown(os.Stdout, report.Build(compare.Run(resolvedRunID, samples)))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&runID, FlagRunID, "", "要生成报告的RunID，为空或latest时取仓库中最新的一次运行")
	reportCmd.Flags().StringVar(&compareFromFile, FlagFromFile, "", "从CSV文件读取样本，而不是结果仓库")
}
