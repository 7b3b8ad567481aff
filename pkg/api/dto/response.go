// Package dto 定义API请求与响应结构
package dto

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// RunRequest 运行请求：内联的YAML格式Graph定义
type RunRequest struct {
	Definition string `json:"definition" binding:"required"` // YAML格式的Graph定义
}

// RunResponse 运行响应
type RunResponse struct {
	RunID     string              `json:"run_id"`
	GraphName string              `json:"graph_name"`
	Status    string              `json:"status"`
	Duration  string              `json:"duration"`
	Outputs   map[string]any      `json:"outputs"`
	Failed    map[string]string   `json:"failed"`
	Skipped   map[string][]string `json:"skipped"`
}

// GraphSummary 已注册Graph摘要
type GraphSummary struct {
	Name      string   `json:"name"`
	TaskCount int      `json:"task_count"`
	Roots     []string `json:"roots"`
}
