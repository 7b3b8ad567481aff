// Package events 提供运行生命周期的事件定义与事件总线
// 调度器在状态转换点产生事件，通过watermill的进程内pub/sub分发给订阅方
// （CLI进度展示、WebSocket推送、指标采集等）
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType 事件类型
type EventType string

const (
	// 运行级事件
	EventRunStarted  EventType = "run.started"  // 运行开始
	EventRunFinished EventType = "run.finished" // 运行结束

	// Task级事件
	EventTaskDispatched EventType = "task.dispatched" // Task已派发
	EventTaskCompleted  EventType = "task.completed"  // Task成功完成
	EventTaskFailed     EventType = "task.failed"     // Task失败
	EventTaskSkipped    EventType = "task.skipped"    // Task被跳过
)

// Event 运行事件基础结构（对外导出）
type Event struct {
	ID        string         `json:"id"`         // 事件ID（UUID）
	Type      EventType      `json:"type"`       // 事件类型
	RunID     string         `json:"run_id"`     // 关联运行ID
	GraphName string         `json:"graph_name"` // 关联Graph名称
	TaskID    string         `json:"task_id"`    // 关联Task ID（运行级事件为空）
	Timestamp time.Time      `json:"timestamp"`  // 事件时间
	Payload   map[string]any `json:"payload"`    // 事件负载
}

// NewEvent 创建事件（对外导出）
func NewEvent(eventType EventType, runID, taskID string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RunID:     runID,
		TaskID:    taskID,
		Timestamp: time.Now(),
		Payload:   make(map[string]any),
	}
}

// WithGraphName 设置Graph名称（对外导出）
func (e *Event) WithGraphName(name string) *Event {
	e.GraphName = name
	return e
}

// WithPayload 添加负载字段（对外导出）
func (e *Event) WithPayload(key string, value any) *Event {
	if e.Payload == nil {
		e.Payload = make(map[string]any)
	}
	e.Payload[key] = value
	return e
}
