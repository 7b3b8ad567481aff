// Package cmd 提供dag-engine的命令行入口
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// 全局参数
	dbType string
	dbDSN  string
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "dag-engine",
	Short: "DAG Engine CLI - 依赖图任务执行引擎命令行工具",
	Long: `DAG Engine CLI 是依赖图任务执行引擎的命令行工具。

支持的功能：
  - 运行YAML定义的Graph（run）
  - 校验Graph定义（validate）
  - 启动HTTP API服务（server）

使用示例：
  # 运行Graph定义文件
  dag-engine run graph.yaml

  # 校验Graph定义文件
  dag-engine validate graph.yaml

  # 启动HTTP服务并持久化运行报告
  dag-engine server start --port 8080 --db-type sqlite --db-dsn reports.db`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVar(&dbType, "db-type", "", "报告持久化数据库类型（sqlite/mysql/postgres，留空不持久化）")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db-dsn", "", "报告持久化数据库DSN")

	// 添加子命令
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}
