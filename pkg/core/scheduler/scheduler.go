// Package scheduler 实现依赖图的并发调度执行
// 核心算法：初始派发所有入度为0的Task；每个Task完成时原子地减少后继入度，
// 归零的后继立即派发；失败的Task触发对其传递后继的跳过级联；
// 所有Task进入终态（完成/失败/跳过）后结束并返回RunReport
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/LENAX/dag-engine/pkg/core/env"
	"github.com/LENAX/dag-engine/pkg/core/executor"
	"github.com/LENAX/dag-engine/pkg/core/graph"
	"github.com/LENAX/dag-engine/pkg/core/task"
)

// Listener 运行事件监听接口（对外导出）
// 调度器在状态转换点回调，用于接入事件总线、日志或指标
// 回调在调度器goroutine内同步执行，实现方不应长时间阻塞
type Listener interface {
	OnRunStarted(runID, graphName string, total int)
	OnTaskDispatched(runID, taskID string)
	OnTaskCompleted(runID, taskID string, duration time.Duration)
	OnTaskFailed(runID, taskID string, cause error)
	OnTaskSkipped(runID, taskID string, origins []string)
	OnRunFinished(runID string, report *RunReport)
}

// nopListener 空监听器
type nopListener struct{}

func (nopListener) OnRunStarted(string, string, int)              {}
func (nopListener) OnTaskDispatched(string, string)               {}
func (nopListener) OnTaskCompleted(string, string, time.Duration) {}
func (nopListener) OnTaskFailed(string, string, error)            {}
func (nopListener) OnTaskSkipped(string, string, []string)        {}
func (nopListener) OnRunFinished(string, *RunReport)              {}

// Scheduler 依赖图调度器（对外导出）
// 消费一个已Finalize的Graph，驱动一次运行直到所有Task进入终态
// 同一个Scheduler可以串行或并行执行多次Run，运行状态互相隔离
type Scheduler struct {
	exec     executor.Executor
	listener Listener
}

// Option Scheduler配置函数（对外导出）
type Option func(*Scheduler)

// WithExecutor 指定执行基座（对外导出）
func WithExecutor(exec executor.Executor) Option {
	return func(s *Scheduler) {
		s.exec = exec
	}
}

// WithListener 指定事件监听器（对外导出）
func WithListener(listener Listener) Option {
	return func(s *Scheduler) {
		s.listener = listener
	}
}

// New 创建Scheduler实例（对外导出的工厂方法）
// 默认使用无界goroutine执行基座、空监听器
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		exec:     executor.NewGoroutineExecutor(),
		listener: nopListener{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run 执行一次已Finalize的Graph（对外导出）
// 对调用方呈现同步语义：所有Task进入终态后才返回
// 只有结构性问题（Graph为nil或未Finalize）返回error；
// Task级别的失败记录在RunReport中，不会成为Run的error
func (s *Scheduler) Run(ctx context.Context, g *graph.Graph, environment *env.EnvVar) (*RunReport, error) {
	if g == nil {
		return nil, fmt.Errorf("Graph不能为nil")
	}
	if !g.Finalized() {
		return nil, fmt.Errorf("%w: Graph %s", graph.ErrNotFinalized, g.Name())
	}
	if environment == nil {
		environment = env.New()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	runID := uuid.NewString()
	startTime := time.Now()
	state := newRunState(g)

	s.listener.OnRunStarted(runID, g.Name(), state.total)
	log.Printf("[Scheduler] 运行开始: RunID=%s, Graph=%s, Task数=%d", runID, g.Name(), state.total)

	if state.total == 0 {
		// 空图：直接返回空报告
		close(state.done)
	} else {
		// 初始就绪集：所有入度为0的Task并发派发
		for _, id := range g.Roots() {
			s.dispatch(ctx, runID, state, environment, id)
		}
	}

	<-state.done

	report := s.buildReport(runID, g.Name(), startTime, state)
	s.listener.OnRunFinished(runID, report)
	log.Printf("[Scheduler] 运行结束: RunID=%s, Status=%s, 完成=%d, 失败=%d, 跳过=%d",
		runID, report.Status, len(report.Outputs), len(report.Failed), len(report.Skipped))
	return report, nil
}

// dispatch 派发一个就绪Task到执行基座
// 调用时该Task的所有前置都已成功完成（入度不变量保证），
// 前置产出在OutputStore中完全可见
func (s *Scheduler) dispatch(ctx context.Context, runID string, state *runState, environment *env.EnvVar, id string) {
	t, exists := state.graph.GetTask(id)
	if !exists {
		// Finalize后的Graph不可能缺失节点，保底记录为失败
		s.finishFailed(ctx, runID, state, environment, id, fmt.Errorf("Task %s 不存在于Graph中", id))
		return
	}

	s.listener.OnTaskDispatched(runID, id)

	job := func() {
		inputs := state.outputs.Collect(t.Dependencies())
		taskStart := time.Now()

		content, err := s.invoke(ctx, t, environment, inputs)
		if err != nil {
			s.listener.OnTaskFailed(runID, id, err)
			s.finishFailed(ctx, runID, state, environment, id, err)
			return
		}

		s.listener.OnTaskCompleted(runID, id, time.Since(taskStart))
		ready, completeErr := state.complete(id, content)
		if completeErr != nil {
			log.Printf("[Scheduler] 记录Task完成状态失败: TaskID=%s, Error=%v", id, completeErr)
			return
		}
		// 锁外派发新就绪的后继
		for _, readyID := range ready {
			s.dispatch(ctx, runID, state, environment, readyID)
		}
	}

	if err := s.exec.Submit(job); err != nil {
		s.finishFailed(ctx, runID, state, environment, id, fmt.Errorf("提交Task到执行器失败: %w", err))
	}
}

// invoke 调用Task的Capability并兜住panic
// panic被转换为Task失败，避免单个Task的缺陷拖垮整个运行
func (s *Scheduler) invoke(ctx context.Context, t *task.Task, environment *env.EnvVar, inputs map[string]*task.Content) (content *task.Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Task %s 执行时发生panic: %v", t.ID(), r)
		}
	}()
	return t.Capability().Execute(ctx, environment, inputs)
}

// finishFailed 记录Task失败并通知跳过级联产生的事件
func (s *Scheduler) finishFailed(_ context.Context, runID string, state *runState, _ *env.EnvVar, id string, cause error) {
	newlySkipped := state.fail(id, cause)
	state.mu.Lock()
	origins := make(map[string][]string, len(newlySkipped))
	for _, skippedID := range newlySkipped {
		origins[skippedID] = state.skipped[skippedID]
	}
	state.mu.Unlock()
	for _, skippedID := range newlySkipped {
		s.listener.OnTaskSkipped(runID, skippedID, origins[skippedID])
	}
}

// buildReport 汇总运行状态生成报告
func (s *Scheduler) buildReport(runID, graphName string, startTime time.Time, state *runState) *RunReport {
	state.mu.Lock()
	defer state.mu.Unlock()

	failed := make(map[string]error, len(state.failed))
	for id, cause := range state.failed {
		failed[id] = cause
	}
	skipped := make(map[string][]string, len(state.skipped))
	for id, origins := range state.skipped {
		copied := make([]string, len(origins))
		copy(copied, origins)
		skipped[id] = copied
	}

	status := RunStatusSuccess
	if len(failed) > 0 || len(skipped) > 0 {
		status = RunStatusPartialFailure
	}

	return &RunReport{
		RunID:     runID,
		GraphName: graphName,
		Status:    status,
		StartTime: startTime,
		EndTime:   time.Now(),
		Outputs:   state.outputs.Snapshot(),
		Failed:    failed,
		Skipped:   skipped,
	}
}
