package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LENAX/dag-engine/pkg/config"
	"github.com/LENAX/dag-engine/pkg/core/graph"
)

// validateCmd validate命令：校验Graph定义（含循环依赖检测）
var validateCmd = &cobra.Command{
	Use:   "validate <graph.yaml>",
	Short: "校验Graph定义文件",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}

		if _, err := config.BuildGraph(cfg, config.NewHandlerRegistry()); err != nil {
			if ce, ok := graph.IsCycleError(err); ok {
				return fmt.Errorf("循环依赖: %v", ce.Members)
			}
			return err
		}

		color.Green("✅ Graph定义合法: %s（%d个Task）", cfg.Graph.Name, len(cfg.Graph.Tasks))
		return nil
	},
}
