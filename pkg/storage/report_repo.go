// Package storage 提供运行报告的持久化接口与实现
package storage

import (
	"context"
	"errors"

	"github.com/LENAX/dag-engine/pkg/core/scheduler"
)

// ErrReportNotFound 报告不存在（对外导出）
var ErrReportNotFound = errors.New("运行报告不存在")

// StoredReport 持久化后的运行报告（对外导出）
// Content和error在存储边界被序列化为JSON/字符串，读取方拿到的是展平后的快照
type StoredReport struct {
	RunID      string            `db:"run_id" json:"run_id"`
	GraphName  string            `db:"graph_name" json:"graph_name"`
	Status     string            `db:"status" json:"status"`
	StartTime  int64             `db:"start_time" json:"start_time"` // Unix毫秒
	EndTime    int64             `db:"end_time" json:"end_time"`     // Unix毫秒
	DurationMS int64             `db:"duration_ms" json:"duration_ms"`
	Outputs    map[string]any    `json:"outputs"`
	Failed     map[string]string `json:"failed"`
	Skipped    map[string][]string `json:"skipped"`
}

// FromRunReport 把RunReport转换为可持久化形式（对外导出）
func FromRunReport(report *scheduler.RunReport) *StoredReport {
	outputs := make(map[string]any, len(report.Outputs))
	for id, content := range report.Outputs {
		outputs[id] = content.Value()
	}
	failed := make(map[string]string, len(report.Failed))
	for id, cause := range report.Failed {
		failed[id] = cause.Error()
	}
	skipped := make(map[string][]string, len(report.Skipped))
	for id, origins := range report.Skipped {
		copied := make([]string, len(origins))
		copy(copied, origins)
		skipped[id] = copied
	}
	return &StoredReport{
		RunID:      report.RunID,
		GraphName:  report.GraphName,
		Status:     report.Status,
		StartTime:  report.StartTime.UnixMilli(),
		EndTime:    report.EndTime.UnixMilli(),
		DurationMS: report.Duration().Milliseconds(),
		Outputs:    outputs,
		Failed:     failed,
		Skipped:    skipped,
	}
}

// RunReportRepository 运行报告仓储接口（对外导出）
type RunReportRepository interface {
	// SaveReport 保存运行报告
	SaveReport(ctx context.Context, report *scheduler.RunReport) error
	// GetReport 按RunID获取报告
	GetReport(ctx context.Context, runID string) (*StoredReport, error)
	// ListReports 按Graph名称列出报告（graphName为空表示全部），按开始时间倒序
	ListReports(ctx context.Context, graphName string, limit int) ([]*StoredReport, error)
}
