package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateIdentity Task ID重复（对外导出）
	ErrDuplicateIdentity = errors.New("Task ID已存在")
	// ErrNotFinalized Graph未完成Finalize（对外导出）
	ErrNotFinalized = errors.New("Graph尚未Finalize，不能执行")
	// ErrFinalized Graph已Finalize，拓扑不可再修改（对外导出）
	ErrFinalized = errors.New("Graph已Finalize，拓扑不可修改")
	// ErrUnknownDependency 依赖了不存在的Task（对外导出）
	ErrUnknownDependency = errors.New("依赖的Task不存在")
)

// CycleError 循环依赖错误（对外导出）
// Members是参与循环的Task ID集合（已排序），用于辅助调试
type CycleError struct {
	Members []string
}

// Error 实现error接口
func (e *CycleError) Error() string {
	return fmt.Sprintf("检测到循环依赖，涉及Task: [%s]", strings.Join(e.Members, ", "))
}

// IsCycleError 判断错误是否为循环依赖错误（对外导出）
func IsCycleError(err error) (*CycleError, bool) {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
