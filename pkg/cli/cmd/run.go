package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	internalstorage "github.com/LENAX/dag-engine/internal/storage"
	"github.com/LENAX/dag-engine/pkg/cli/output"
	"github.com/LENAX/dag-engine/pkg/config"
	"github.com/LENAX/dag-engine/pkg/core/engine"
	"github.com/LENAX/dag-engine/pkg/core/executor"
	"github.com/LENAX/dag-engine/pkg/core/scheduler"
)

var runMaxWorkers int

// runCmd run命令：加载YAML定义并同步运行
var runCmd = &cobra.Command{
	Use:   "run <graph.yaml>",
	Short: "运行Graph定义文件",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}

		registry := config.NewHandlerRegistry()
		g, err := config.BuildGraph(cfg, registry)
		if err != nil {
			return err
		}

		opts := make([]engine.Option, 0)
		if runMaxWorkers > 0 {
			pool, poolErr := executor.NewPoolExecutor(runMaxWorkers)
			if poolErr != nil {
				return poolErr
			}
			opts = append(opts, engine.WithExecutor(pool))
		}
		if dbType != "" {
			repo, repoErr := internalstorage.OpenReportRepo(dbType, dbDSN)
			if repoErr != nil {
				return repoErr
			}
			defer repo.Close()
			opts = append(opts, engine.WithReportRepository(repo))
		}

		eng := engine.NewEngine(opts...)
		eng.Start()
		defer func() {
			if shutdownErr := eng.Shutdown(); shutdownErr != nil {
				log.Printf("关闭引擎失败: %v", shutdownErr)
			}
		}()

		report, err := eng.RunOnce(context.Background(), g, config.BuildEnv(cfg))
		if err != nil {
			return err
		}

		printReport(report)
		return nil
	},
}

// printReport 以表格形式展示运行报告
func printReport(report *scheduler.RunReport) {
	fmt.Printf("RunID:  %s\n", report.RunID)
	fmt.Printf("Graph:  %s\n", report.GraphName)
	fmt.Printf("Status: %s\n", output.StatusColor(report.Status))
	fmt.Printf("耗时:   %s\n\n", report.Duration())

	table := output.NewTable([]string{"TASK", "STATUS", "DETAIL"})
	for _, id := range report.CompletedIDs() {
		detail := ""
		if content := report.Outputs[id]; content != nil && content.Value() != nil {
			detail = fmt.Sprintf("%v", content.Value())
		}
		table.AddRow([]string{id, output.StatusColor("COMPLETED"), detail})
	}
	for _, id := range report.FailedIDs() {
		table.AddRow([]string{id, output.StatusColor("FAILED"), report.Failed[id].Error()})
	}
	for _, id := range report.SkippedIDs() {
		detail := "上游失败: " + strings.Join(report.Skipped[id], ", ")
		table.AddRow([]string{id, output.StatusColor("SKIPPED"), detail})
	}
	table.Render()
}

func init() {
	runCmd.Flags().IntVar(&runMaxWorkers, "max-workers", 0, "最大并发数（0表示不限制）")
}
