// Package engine 提供dag-engine的门面
// Engine组合调度器、执行基座、事件总线和报告仓储，
// 管理已注册的Graph并提供按名称运行、定时运行的入口
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/LENAX/dag-engine/pkg/core/env"
	"github.com/LENAX/dag-engine/pkg/core/events"
	"github.com/LENAX/dag-engine/pkg/core/executor"
	"github.com/LENAX/dag-engine/pkg/core/graph"
	"github.com/LENAX/dag-engine/pkg/core/scheduler"
	"github.com/LENAX/dag-engine/pkg/storage"
)

// Engine 调度引擎门面（对外导出）
type Engine struct {
	mu         sync.RWMutex
	sched      *scheduler.Scheduler
	exec       executor.Executor
	bus        *events.EventBus
	reportRepo storage.RunReportRepository
	graphs     map[string]*graph.Graph // Graph名称 -> 已Finalize的Graph
	cron       *CronScheduler
	running    bool
}

// Option Engine配置函数（对外导出）
type Option func(*Engine)

// WithExecutor 指定执行基座（对外导出）
// 默认使用无界goroutine基座；需要准入控制时注入PoolExecutor
func WithExecutor(exec executor.Executor) Option {
	return func(e *Engine) {
		e.exec = exec
	}
}

// WithEventBus 指定事件总线（对外导出）
func WithEventBus(bus *events.EventBus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithReportRepository 指定运行报告仓储（对外导出）
// 不指定时报告不持久化
func WithReportRepository(repo storage.RunReportRepository) Option {
	return func(e *Engine) {
		e.reportRepo = repo
	}
}

// NewEngine 创建Engine实例（对外导出的工厂方法）
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		graphs: make(map[string]*graph.Graph),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.exec == nil {
		e.exec = executor.NewGoroutineExecutor()
	}
	if e.bus == nil {
		e.bus = events.NewEventBus()
	}
	e.sched = scheduler.New(
		scheduler.WithExecutor(e.exec),
		scheduler.WithListener(events.NewBusListener(e.bus)),
	)
	e.cron = NewCronScheduler(e)
	return e
}

// Start 启动Engine（对外导出）
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.exec.Start()
	e.cron.Start()
	e.running = true
	log.Println("✅ 引擎已启动")
}

// Shutdown 关闭Engine（对外导出）
// 停止定时调度、等待在途任务完成、关闭事件总线
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	e.mu.Unlock()

	e.cron.Stop()
	if err := e.exec.Shutdown(); err != nil {
		return fmt.Errorf("关闭执行器失败: %w", err)
	}
	if err := e.bus.Close(); err != nil {
		return fmt.Errorf("关闭事件总线失败: %w", err)
	}
	log.Println("✅ 引擎已关闭")
	return nil
}

// EventBus 获取事件总线（对外导出）
func (e *Engine) EventBus() *events.EventBus {
	return e.bus
}

// Cron 获取定时调度器（对外导出）
func (e *Engine) Cron() *CronScheduler {
	return e.cron
}

// ReportRepository 获取报告仓储（对外导出，可能为nil）
func (e *Engine) ReportRepository() storage.RunReportRepository {
	return e.reportRepo
}

// RegisterGraph 注册已Finalize的Graph（对外导出）
// 同名Graph重复注册返回错误
func (e *Engine) RegisterGraph(g *graph.Graph) error {
	if g == nil {
		return fmt.Errorf("Graph不能为nil")
	}
	if !g.Finalized() {
		return fmt.Errorf("%w: Graph %s", graph.ErrNotFinalized, g.Name())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.graphs[g.Name()]; exists {
		return fmt.Errorf("Graph %s 已注册", g.Name())
	}
	e.graphs[g.Name()] = g
	return nil
}

// GetGraph 按名称获取已注册的Graph（对外导出）
func (e *Engine) GetGraph(name string) (*graph.Graph, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, exists := e.graphs[name]
	return g, exists
}

// GraphNames 获取所有已注册Graph的名称（对外导出）
func (e *Engine) GraphNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.graphs))
	for name := range e.graphs {
		names = append(names, name)
	}
	return names
}

// RunGraph 按名称运行已注册的Graph（对外导出）
func (e *Engine) RunGraph(ctx context.Context, name string, environment *env.EnvVar) (*scheduler.RunReport, error) {
	g, exists := e.GetGraph(name)
	if !exists {
		return nil, fmt.Errorf("Graph %s 未注册", name)
	}
	return e.RunOnce(ctx, g, environment)
}

// RunOnce 运行一个已Finalize的Graph（对外导出）
// 运行结束后按需持久化报告；持久化失败不影响运行结果
func (e *Engine) RunOnce(ctx context.Context, g *graph.Graph, environment *env.EnvVar) (*scheduler.RunReport, error) {
	report, err := e.sched.Run(ctx, g, environment)
	if err != nil {
		return nil, err
	}

	if e.reportRepo != nil {
		if saveErr := e.reportRepo.SaveReport(ctx, report); saveErr != nil {
			log.Printf("[Engine] 保存运行报告失败: RunID=%s, Error=%v", report.RunID, saveErr)
		}
	}
	return report, nil
}
