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
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	FlagConfig   = "config"
	FlagMysqlDSN = "mysql-dsn"
	FlagRunID    = "run-id"
)

var (
	cfgFile  string
	mysqlDSN string
	runID    string
)

var rootCmd = &cobra.Command{
	Use:   "iotdb-bench",
	Short: "健康物联网数据库基准测试与比较工具",
	Long: "本工具对PostgreSQL、InfluxDB与MongoDB三个数据库执行同一套基准测试，\n" +
		"将各数据库的原始指标归一化到0到100的统一尺度（区分方向：延迟越小越好，\n" +
		"吞吐越大越好），按类别加权汇总成总分并排名。每次运行的数据以RunID标识，\n" +
		"重算时整体替换，结果可保存到MySQL仓库并通过HTTP接口查询。",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, FlagConfig, "",
		"配置文件（默认为$HOME/.iotdb-bench.yaml）")
	rootCmd.PersistentFlags().StringVar(&mysqlDSN, FlagMysqlDSN, "",
		"结果仓库的MySQL DSN。若为空则依次读取配置文件与环境变量MYSQL_DSN")
	_ = viper.BindPFlag(FlagMysqlDSN, rootCmd.PersistentFlags().Lookup(FlagMysqlDSN))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".iotdb-bench" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".iotdb-bench")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// warehouseDSN 解析结果仓库的DSN，优先级：命令行、配置文件、环境变量
func warehouseDSN() string {
	if mysqlDSN != "" {
		return mysqlDSN
	}
	if dsn := viper.GetString(FlagMysqlDSN); dsn != "" {
		return dsn
	}
	return os.Getenv("MYSQL_DSN")
}

// defaultRunID 与结果文件同款的时间戳RunID
func defaultRunID() string {
	return "run_" + time.Now().Format("20060102_150405")
}
