package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LENAX/dag-engine/pkg/core/env"
	"github.com/LENAX/dag-engine/pkg/core/task"
)

// HandlerFactory handler工厂函数（对外导出）
// 按Task定义中的params实例化一个Capability
type HandlerFactory func(params map[string]any) (task.Capability, error)

// HandlerRegistry handler注册中心（对外导出）
// 把配置文件里的handler名称解析为可执行的Capability
type HandlerRegistry struct {
	mu        sync.RWMutex
	factories map[string]HandlerFactory
}

// NewHandlerRegistry 创建注册中心并登记内置handler（对外导出的工厂方法）
func NewHandlerRegistry() *HandlerRegistry {
	r := &HandlerRegistry{
		factories: make(map[string]HandlerFactory),
	}
	r.registerBuiltins()
	return r
}

// Register 注册handler（对外导出）
// 名称重复时返回错误
func (r *HandlerRegistry) Register(name string, factory HandlerFactory) error {
	if name == "" {
		return fmt.Errorf("handler名称不能为空")
	}
	if factory == nil {
		return fmt.Errorf("handler工厂函数不能为空")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("handler %s 已注册", name)
	}
	r.factories[name] = factory
	return nil
}

// Resolve 解析handler名称（对外导出）
func (r *HandlerRegistry) Resolve(name string, params map[string]any) (task.Capability, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("handler %s 未注册", name)
	}
	return factory(params)
}

// Names 获取所有已注册handler名称（对外导出）
func (r *HandlerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// registerBuiltins 登记内置handler
// echo: 把message参数作为产出返回
// sleep: 睡眠duration参数指定的时长（如"100ms"），无产出
// fail: 总是失败，用于验证跳过级联
func (r *HandlerRegistry) registerBuiltins() {
	r.factories["echo"] = func(params map[string]any) (task.Capability, error) {
		message := fmt.Sprintf("%v", params["message"])
		return task.CapabilityFunc(func(_ context.Context, _ *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
			return task.NewContent(message), nil
		}), nil
	}

	r.factories["sleep"] = func(params map[string]any) (task.Capability, error) {
		raw, exists := params["duration"]
		if !exists {
			return nil, fmt.Errorf("sleep handler需要duration参数")
		}
		duration, err := time.ParseDuration(fmt.Sprintf("%v", raw))
		if err != nil {
			return nil, fmt.Errorf("duration参数无效: %w", err)
		}
		return task.CapabilityFunc(func(ctx context.Context, _ *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
			select {
			case <-time.After(duration):
				return nil, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}), nil
	}

	r.factories["fail"] = func(params map[string]any) (task.Capability, error) {
		message := fmt.Sprintf("%v", params["message"])
		return task.CapabilityFunc(func(_ context.Context, _ *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
			return nil, fmt.Errorf("task失败: %s", message)
		}), nil
	}
}
