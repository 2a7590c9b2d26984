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
	"github.com/packagewjx/iotdb-bench/internal/server"
	"github.com/spf13/cobra"
)

const (
	FlagPort = "port"
)

var port uint16

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "基准测试结果仓库服务器",
	Long: "本服务器对外提供基准测试结果的查询接口。结果保存在MySQL仓库中，以RunID区分\n" +
		"每次运行。用户可通过接口查看各次运行的排名与报告，也可以在修改样本后触发\n" +
		"重算，重算会整体替换该RunID旧的比较结果。",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := server.NewServer(&server.ServerConfig{
			Port:     port,
			MysqlDSN: warehouseDSN(),
		})
		if err != nil {
			return err
		}

		return s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().Uint16VarP(&port, FlagPort, "p", server.DefaultPort,
		"服务端口号")
}
