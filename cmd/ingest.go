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

	"github.com/packagewjx/iotdb-bench/internal/ingest"
	"github.com/packagewjx/iotdb-bench/internal/server"
	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest file...",
	Short: "将外部基准测试结果CSV导入结果仓库",
	Long: "读取一个或多个指标CSV文件（列为database,category,metric,value,unit,weight），\n" +
		"合并后以给定RunID保存到结果仓库。同一RunID的旧样本会被整体替换。\n" +
		"格式有误的行会打印警告并跳过，不会中断整个导入。",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runID == "" {
			runID = defaultRunID()
		}

		samples := make([]core.MetricSample, 0)
		for _, file := range args {
			f, err := os.Open(file)
			if err != nil {
				return errors.Wrapf(err, "打开%s出错", file)
			}
			fileSamples, rowErrors, err := ingest.ReadSamples(f)
			_ = f.Close()
			if err != nil {
				return errors.Wrapf(err, "读取%s出错", file)
			}
			for _, rowError := range rowErrors {
				fmt.Printf("%s：%v，跳过该行\n", file, rowError)
			}
			samples = append(samples, fileSamples...)
		}
		if len(samples) == 0 {
			return fmt.Errorf("没有读取到任何有效样本")
		}

		dao, err := server.NewDao(warehouseDSN())
		if err != nil {
			return err
		}
		if err := dao.SaveMetricSamples(core.RunID(runID), samples); err != nil {
			return err
		}
		fmt.Printf("已将%d条样本以RunID %s保存到结果仓库\n", len(samples), runID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&runID, FlagRunID, "", "导入数据的RunID，为空则按当前时间生成")
}
