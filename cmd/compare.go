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
	"github.com/packagewjx/iotdb-bench/internal/ingest"
	"github.com/packagewjx/iotdb-bench/internal/report"
	"github.com/packagewjx/iotdb-bench/internal/server"
	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	FlagFromFile = "from-file"
)

var (
	compareFromFile string
	compareSave     bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "计算归一化分数、类别分数与总分排名",
	Long: "对一次运行的指标样本执行完整的比较流水线：按指标归一化到0到100，\n" +
		"按类别取平均，再按固定权重（写入0.25、查询0.25、存储0.20、索引0.20、\n" +
		"安全0.10）加权求总分，并列排名使用竞赛排名法。样本默认取自结果仓库，\n" +
		"--from-file可改为从CSV文件读取。计算结果打印摘要，加--save时写回仓库。",
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, resolvedRunID, err := loadSamples()
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			return fmt.Errorf("RunID %s没有任何样本", resolvedRunID)
		}

		result := compare.Run(resolvedRunID, samples)
		if compareSave {
			dao, err := server.NewDao(warehouseDSN())
			if err != nil {
				return err
			}
			if err := dao.SaveComparison(result); err != nil {
				return err
			}
			fmt.Println("比较结果已保存到结果仓库")
		}

		return report.WriteExecutiveSummary(os.Stdout, report.Build(result))
	},
}

// loadSamples 按参数决定样本来源，返回样本与实际使用的RunID
func loadSamples() ([]core.MetricSample, core.RunID, error) {
	if compareFromFile != "" {
		f, err := os.Open(compareFromFile)
		if err != nil {
			return nil, "", errors.Wrapf(err, "打开%s出错", compareFromFile)
		}
		defer func() { _ = f.Close() }()
		samples, rowErrors, err := ingest.ReadSamples(f)
		if err != nil {
			return nil, "", errors.Wrapf(err, "读取%s出错", compareFromFile)
		}
		for _, rowError := range rowErrors {
			fmt.Printf("%s：%v，跳过该行\n", compareFromFile, rowError)
		}
		if runID == "" {
			runID = defaultRunID()
		}
		return samples, core.RunID(runID), nil
	}

	dao, err := server.NewDao(warehouseDSN())
	if err != nil {
		return nil, "", err
	}
	id := core.RunID(runID)
	if runID == "" || runID == "latest" {
		id, err = dao.QueryLatestRunID()
		if err != nil {
			return nil, "", err
		}
	}
	samples, err := dao.QueryMetricSamples(id)
	return samples, id, err
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&runID, FlagRunID, "", "要比较的RunID，为空或latest时取仓库中最新的一次运行")
	compareCmd.Flags().StringVar(&compareFromFile, FlagFromFile, "", "从CSV文件读取样本，而不是结果仓库")
	compareCmd.Flags().BoolVar(&compareSave, FlagSave, false, "将比较结果保存到结果仓库")
}
