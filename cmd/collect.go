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
	"context"
	"fmt"
	"os"

	"github.com/packagewjx/iotdb-bench/internal/collector"
	"github.com/packagewjx/iotdb-bench/internal/ingest"
	"github.com/packagewjx/iotdb-bench/internal/server"
	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	FlagPostgresDSN  = "postgres-dsn"
	FlagInfluxURL    = "influx-url"
	FlagInfluxToken  = "influx-token"
	FlagInfluxOrg    = "influx-org"
	FlagInfluxBucket = "influx-bucket"
	FlagMongoURI     = "mongo-uri"
	FlagMongoDB      = "mongo-db"
	FlagNumRows      = "num-rows"
	FlagOutput       = "output"
	FlagSave         = "save"
)

var (
	collectOutput string
	collectSave   bool
	collectRows   int
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "对配置的数据库执行基准测试并收集原始指标",
	Long: "依次对PostgreSQL、InfluxDB、MongoDB执行写入、查询、存储、索引与安全\n" +
		"五类基准测试，收集原始指标样本。某个数据库的连接信息缺失或测试失败时\n" +
		"跳过该数据库，其余数据库照常收集。结果写入CSV文件，加--save时同时保存\n" +
		"到结果仓库。连接信息可写在配置文件中，如postgres-dsn、influx-url等。",
	RunE: func(cmd *cobra.Command, args []string) error {
		collectors, err := buildCollectors(cmd)
		if err != nil {
			return err
		}
		if len(collectors) == 0 {
			return fmt.Errorf("没有配置任何数据库的连接信息，无事可做")
		}

		if runID == "" {
			runID = defaultRunID()
		}
		samples := collector.CollectAll(context.Background(), core.RunID(runID), collectors)
		if len(samples) == 0 {
			return fmt.Errorf("没有收集到任何指标")
		}

		outFile, err := os.Create(collectOutput)
		if err != nil {
			return errors.Wrap(err, "创建输出文件出错")
		}
		defer func() { _ = outFile.Close() }()
		if err := ingest.WriteSamples(outFile, samples); err != nil {
			return err
		}
		fmt.Printf("已将%d条指标样本写入%s，RunID为%s\n", len(samples), collectOutput, runID)

		if collectSave {
			dao, err := server.NewDao(warehouseDSN())
			if err != nil {
				return err
			}
			if err := dao.SaveMetricSamples(core.RunID(runID), samples); err != nil {
				return err
			}
			fmt.Println("已保存到结果仓库")
		}
		return nil
	},
}

// buildCollectors 仅为给出连接信息的数据库构造收集器
func buildCollectors(cmd *cobra.Command) ([]collector.Collector, error) {
	collectors := make([]collector.Collector, 0, 3)

	if dsn := stringOption(cmd, FlagPostgresDSN); dsn != "" {
		c, err := collector.NewPostgres(&collector.PostgresConfig{DSN: dsn, NumRows: collectRows})
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	if url := stringOption(cmd, FlagInfluxURL); url != "" {
		c, err := collector.NewInflux(&collector.InfluxConfig{
			URL:       url,
			Token:     stringOption(cmd, FlagInfluxToken),
			Org:       stringOption(cmd, FlagInfluxOrg),
			Bucket:    stringOption(cmd, FlagInfluxBucket),
			NumPoints: collectRows,
		})
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	if uri := stringOption(cmd, FlagMongoURI); uri != "" {
		c, err := collector.NewMongo(&collector.MongoConfig{
			URI:      uri,
			Database: stringOption(cmd, FlagMongoDB),
			NumDocs:  collectRows,
		})
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	return collectors, nil
}

// stringOption 命令行优先，没有指定时再查配置文件
func stringOption(cmd *cobra.Command, name string) string {
	if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
		return v
	}
	return viper.GetString(name)
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().String(FlagPostgresDSN, "", "PostgreSQL连接串，为空则跳过该数据库")
	collectCmd.Flags().String(FlagInfluxURL, "", "InfluxDB服务地址，为空则跳过该数据库")
	collectCmd.Flags().String(FlagInfluxToken, "", "InfluxDB的访问令牌")
	collectCmd.Flags().String(FlagInfluxOrg, "", "InfluxDB的组织名")
	collectCmd.Flags().String(FlagInfluxBucket, "", "InfluxDB的Bucket名")
	collectCmd.Flags().String(FlagMongoURI, "", "MongoDB连接串，为空则跳过该数据库")
	collectCmd.Flags().String(FlagMongoDB, "", "MongoDB数据库名")
	collectCmd.Flags().IntVar(&collectRows, FlagNumRows, 0, "写入测试的数据量，0使用默认值")
	collectCmd.Flags().StringVarP(&collectOutput, FlagOutput, "o", "samples.csv", "指标样本CSV的输出路径")
	collectCmd.Flags().BoolVar(&collectSave, FlagSave, false, "收集完成后保存到结果仓库")
	collectCmd.Flags().StringVar(&runID, FlagRunID, "", "本次运行的RunID，为空则按当前时间生成")
}
