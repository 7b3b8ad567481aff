package task

import (
	"context"

	"github.com/LENAX/dag-engine/pkg/core/env"
)

// Capability Task执行能力接口（对外导出）
// 这是引擎唯一的扩展点：引擎把Task视为不透明的执行单元，
// 只通过本接口调用业务逻辑，不关心内部实现
// inputs: 前置Task ID -> 前置Task产出的Content映射
// 调用时所有前置Task都已完成，inputs中的值对当前goroutine完全可见
// 返回Content表示成功，返回error表示失败（失败会触发下游跳过级联）
type Capability interface {
	Execute(ctx context.Context, environment *env.EnvVar, inputs map[string]*Content) (*Content, error)
}

// CapabilityFunc 函数适配器（对外导出）
// 允许普通函数直接作为Capability使用
type CapabilityFunc func(ctx context.Context, environment *env.EnvVar, inputs map[string]*Content) (*Content, error)

// Execute 实现Capability接口
func (f CapabilityFunc) Execute(ctx context.Context, environment *env.EnvVar, inputs map[string]*Content) (*Content, error) {
	return f(ctx, environment, inputs)
}
