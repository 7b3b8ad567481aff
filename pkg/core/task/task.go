package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TaskStatusPending   = "PENDING"
	TaskStatusRunning   = "RUNNING"
	TaskStatusCompleted = "COMPLETED"
	TaskStatusFailed    = "FAILED"
	TaskStatusSkipped   = "SKIPPED"
)

// Task 图中的基本调度单元（对外导出）
// 持有唯一标识、前置依赖和执行能力
// 加入Graph后由Graph独占所有权，拓扑在Finalize后不可再修改
type Task struct {
	id           string
	Name         string
	Description  string
	Params       map[string]any
	CreateTime   time.Time
	dependencies []string
	capability   Capability
}

// NewTask 创建Task实例（对外导出的工厂方法）
// id: 唯一标识，为空时自动生成UUID
func NewTask(id, name string, capability Capability) *Task {
	if id == "" {
		id = uuid.NewString()
	}
	return &Task{
		id:           id,
		Name:         name,
		CreateTime:   time.Now(),
		Params:       make(map[string]any),
		dependencies: make([]string, 0),
		capability:   capability,
	}
}

// ID 获取Task ID（对外导出，实现go-dag的Identifiable接口）
func (t *Task) ID() string {
	return t.id
}

// Dependencies 获取前置依赖ID列表（对外导出）
// 返回副本，保持内部状态不可变
func (t *Task) Dependencies() []string {
	deps := make([]string, len(t.dependencies))
	copy(deps, t.dependencies)
	return deps
}

// DependsOn 添加前置依赖（对外导出）
// 仅允许在Task加入Graph并Finalize之前调用
// 重复的依赖ID会被去重
func (t *Task) DependsOn(ids ...string) *Task {
	for _, id := range ids {
		exists := false
		for _, dep := range t.dependencies {
			if dep == id {
				exists = true
				break
			}
		}
		if !exists {
			t.dependencies = append(t.dependencies, id)
		}
	}
	return t
}

// WithParam 设置Task参数（对外导出）
func (t *Task) WithParam(key string, value any) *Task {
	t.Params[key] = value
	return t
}

// WithDescription 设置Task描述（对外导出）
func (t *Task) WithDescription(desc string) *Task {
	t.Description = desc
	return t
}

// Capability 获取执行能力（对外导出）
func (t *Task) Capability() Capability {
	return t.capability
}

// Validate 校验Task合法性（对外导出）
func (t *Task) Validate() error {
	if t.id == "" {
		return fmt.Errorf("Task ID不能为空")
	}
	if t.capability == nil {
		return fmt.Errorf("Task %s 的Capability不能为空", t.id)
	}
	return nil
}
