package events

import (
	"log"
	"time"

	"github.com/LENAX/dag-engine/pkg/core/scheduler"
)

// BusListener 调度器监听器到事件总线的桥接（对外导出）
// 实现scheduler.Listener接口，把调度器的状态转换转发为总线事件
type BusListener struct {
	bus *EventBus
}

// NewBusListener 创建桥接监听器（对外导出的工厂方法）
func NewBusListener(bus *EventBus) *BusListener {
	return &BusListener{bus: bus}
}

// OnRunStarted 运行开始回调
func (l *BusListener) OnRunStarted(runID, graphName string, total int) {
	l.publish(NewEvent(EventRunStarted, runID, "").
		WithGraphName(graphName).
		WithPayload("total_tasks", total))
}

// OnTaskDispatched Task派发回调
func (l *BusListener) OnTaskDispatched(runID, taskID string) {
	l.publish(NewEvent(EventTaskDispatched, runID, taskID))
}

// OnTaskCompleted Task完成回调
func (l *BusListener) OnTaskCompleted(runID, taskID string, duration time.Duration) {
	l.publish(NewEvent(EventTaskCompleted, runID, taskID).
		WithPayload("duration_ms", duration.Milliseconds()))
}

// OnTaskFailed Task失败回调
func (l *BusListener) OnTaskFailed(runID, taskID string, cause error) {
	l.publish(NewEvent(EventTaskFailed, runID, taskID).
		WithPayload("error", cause.Error()))
}

// OnTaskSkipped Task跳过回调
func (l *BusListener) OnTaskSkipped(runID, taskID string, origins []string) {
	l.publish(NewEvent(EventTaskSkipped, runID, taskID).
		WithPayload("origin_failures", origins))
}

// OnRunFinished 运行结束回调
func (l *BusListener) OnRunFinished(runID string, report *scheduler.RunReport) {
	l.publish(NewEvent(EventRunFinished, runID, "").
		WithGraphName(report.GraphName).
		WithPayload("status", report.Status).
		WithPayload("completed", len(report.Outputs)).
		WithPayload("failed", len(report.Failed)).
		WithPayload("skipped", len(report.Skipped)).
		WithPayload("duration_ms", report.Duration().Milliseconds()))
}

// publish 发布事件，失败只记日志（事件丢失不影响调度正确性）
func (l *BusListener) publish(event *Event) {
	if l.bus == nil {
		return
	}
	if err := l.bus.Publish(event); err != nil {
		log.Printf("[EventBus] 发布事件失败: Type=%s, Error=%v", event.Type, err)
	}
}
