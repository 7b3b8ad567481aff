// Package env 提供运行期共享的环境变量表
// 所有Task在执行期间都可以读写同一个EnvVar实例，用于存放配置值和调用方注入的全局对象
package env

import (
	"fmt"
	"sync"
)

// EnvVar 共享环境变量表（对外导出）
// 并发安全：多个Task可以同时读写，同一key的并发写入遵循last-write-wins
// 不保证跨key的原子性，仅保证单key的可见性和内存安全
type EnvVar struct {
	mu   sync.RWMutex
	vars map[string]any
}

// New 创建EnvVar实例（对外导出的工厂方法）
func New() *EnvVar {
	return &EnvVar{
		vars: make(map[string]any),
	}
}

// Set 设置环境变量（对外导出）
func (e *EnvVar) Set(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[key] = value
}

// Get 获取环境变量（对外导出）
// 返回值和是否存在的标志
func (e *EnvVar) Get(key string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[key]
	return v, ok
}

// GetString 获取字符串环境变量（对外导出）
// 不存在或类型不匹配时返回空字符串
func (e *EnvVar) GetString(key string) string {
	v, ok := e.Get(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// GetInt 获取整数环境变量（对外导出）
func (e *EnvVar) GetInt(key string) (int, error) {
	v, ok := e.Get(key)
	if !ok {
		return 0, fmt.Errorf("环境变量 %s 不存在", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("环境变量 %s 类型不是整数，当前类型: %T", key, v)
	}
}

// GetBool 获取布尔环境变量（对外导出）
func (e *EnvVar) GetBool(key string) (bool, error) {
	v, ok := e.Get(key)
	if !ok {
		return false, fmt.Errorf("环境变量 %s 不存在", key)
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("环境变量 %s 类型不是布尔值，当前类型: %T", key, v)
}

// Delete 删除环境变量（对外导出）
func (e *EnvVar) Delete(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.vars, key)
}

// Keys 获取所有key（对外导出）
func (e *EnvVar) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	return keys
}

// Len 获取环境变量数量（对外导出）
func (e *EnvVar) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.vars)
}

// Clone 复制EnvVar（对外导出）
// 浅拷贝：value本身不复制
func (e *EnvVar) Clone() *EnvVar {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cloned := New()
	for k, v := range e.vars {
		cloned.vars[k] = v
	}
	return cloned
}
