// Package config 提供声明式Graph定义的加载、校验和构建
// 调用方用YAML描述Task集合与依赖关系，handler名称通过HandlerRegistry解析为Capability
package config

// GraphConfig Graph定义配置（对外导出）
type GraphConfig struct {
	Graph GraphSpec `yaml:"graph"`
}

// GraphSpec Graph描述（对外导出）
type GraphSpec struct {
	Name        string            `yaml:"name"`        // Graph名称
	Description string            `yaml:"description"` // 描述
	Cron        string            `yaml:"cron"`        // Cron表达式（可选，设置后可注册定时运行）
	Env         map[string]string `yaml:"env"`         // 运行环境变量默认值
	Tasks       []TaskSpec        `yaml:"tasks"`       // Task定义列表
}

// TaskSpec Task描述（对外导出）
type TaskSpec struct {
	ID          string         `yaml:"id"`          // 唯一标识
	Name        string         `yaml:"name"`        // 名称（可选，默认同ID）
	Description string         `yaml:"description"` // 描述
	Handler     string         `yaml:"handler"`     // 已注册的handler名称
	Params      map[string]any `yaml:"params"`      // handler参数
	DependsOn   []string       `yaml:"depends_on"`  // 前置Task ID列表
}
