package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate 校验Graph定义合法性（对外导出）
// 循环依赖不在这里检测，由Graph.Finalize统一负责
func Validate(cfg *GraphConfig) error {
	if cfg == nil {
		return fmt.Errorf("配置不能为空")
	}
	if cfg.Graph.Name == "" {
		return fmt.Errorf("graph.name不能为空")
	}
	if len(cfg.Graph.Tasks) == 0 {
		return fmt.Errorf("graph.tasks不能为空")
	}

	seen := make(map[string]bool, len(cfg.Graph.Tasks))
	for i, t := range cfg.Graph.Tasks {
		if t.ID == "" {
			return fmt.Errorf("第%d个task的id不能为空", i+1)
		}
		if seen[t.ID] {
			return fmt.Errorf("task id重复: %s", t.ID)
		}
		seen[t.ID] = true
		if t.Handler == "" {
			return fmt.Errorf("task %s 的handler不能为空", t.ID)
		}
	}

	// 依赖引用校验
	for _, t := range cfg.Graph.Tasks {
		for _, depID := range t.DependsOn {
			if !seen[depID] {
				return fmt.Errorf("task %s 依赖了不存在的task: %s", t.ID, depID)
			}
		}
	}

	// Cron表达式校验（可选字段）
	if cfg.Graph.Cron != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(cfg.Graph.Cron); err != nil {
			return fmt.Errorf("graph.cron表达式无效: %w", err)
		}
	}
	return nil
}
