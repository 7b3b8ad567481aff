package scheduler

import (
	"sort"
	"time"

	"github.com/LENAX/dag-engine/pkg/core/task"
)

const (
	// RunStatusSuccess 全部Task成功完成
	RunStatusSuccess = "SUCCESS"
	// RunStatusPartialFailure 存在失败或被跳过的Task（正常终态，不是引擎错误）
	RunStatusPartialFailure = "PARTIAL_FAILURE"
)

// RunReport 一次运行的完整结果报告（对外导出）
// 每个Task ID恰好出现在Outputs/Failed/Skipped三者之一中
// 单个Task的失败不会让Run返回error：部分失败是被完整描述的正常终态
type RunReport struct {
	RunID     string
	GraphName string
	Status    string
	StartTime time.Time
	EndTime   time.Time
	Outputs   map[string]*task.Content // 成功完成的Task产出快照
	Failed    map[string]error         // 失败的Task ID -> 失败原因
	Skipped   map[string][]string      // 被跳过的Task ID -> 引发跳过的失败源Task ID列表（已排序）
}

// Ok 判断运行是否全部成功（对外导出）
func (r *RunReport) Ok() bool {
	return r.Status == RunStatusSuccess
}

// Duration 获取运行时长（对外导出）
func (r *RunReport) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// TerminalCount 获取进入终态的Task总数（对外导出）
func (r *RunReport) TerminalCount() int {
	return len(r.Outputs) + len(r.Failed) + len(r.Skipped)
}

// CompletedIDs 获取成功完成的Task ID列表（对外导出，已排序）
func (r *RunReport) CompletedIDs() []string {
	ids := make([]string, 0, len(r.Outputs))
	for id := range r.Outputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FailedIDs 获取失败的Task ID列表（对外导出，已排序）
func (r *RunReport) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SkippedIDs 获取被跳过的Task ID列表（对外导出，已排序）
func (r *RunReport) SkippedIDs() []string {
	ids := make([]string, 0, len(r.Skipped))
	for id := range r.Skipped {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
