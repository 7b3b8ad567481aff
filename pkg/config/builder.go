package config

import (
	"fmt"

	"github.com/LENAX/dag-engine/pkg/core/env"
	"github.com/LENAX/dag-engine/pkg/core/graph"
	"github.com/LENAX/dag-engine/pkg/core/task"
)

// BuildGraph 从配置构建并Finalize一个Graph（对外导出）
// handler名称通过registry解析；返回的Graph可以直接交给调度器运行
func BuildGraph(cfg *GraphConfig, registry *HandlerRegistry) (*graph.Graph, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = NewHandlerRegistry()
	}

	g := graph.New(cfg.Graph.Name)
	for _, spec := range cfg.Graph.Tasks {
		capability, err := registry.Resolve(spec.Handler, spec.Params)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", spec.ID, err)
		}

		name := spec.Name
		if name == "" {
			name = spec.ID
		}
		t := task.NewTask(spec.ID, name, capability).
			WithDescription(spec.Description).
			DependsOn(spec.DependsOn...)
		for key, value := range spec.Params {
			t.WithParam(key, value)
		}
		if err := g.AddTask(t); err != nil {
			return nil, err
		}
	}

	if err := g.Finalize(); err != nil {
		return nil, err
	}
	return g, nil
}

// BuildEnv 从配置生成运行环境变量（对外导出）
func BuildEnv(cfg *GraphConfig) *env.EnvVar {
	environment := env.New()
	for key, value := range cfg.Graph.Env {
		environment.Set(key, value)
	}
	return environment
}
