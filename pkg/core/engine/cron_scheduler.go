package engine

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// CronScheduler 定时调度器（对外导出）
// 把已注册的Graph绑定到Cron表达式上做周期性重复运行
// 同一个Finalize后的Graph每次触发都会创建隔离的运行状态
type CronScheduler struct {
	cron    *cron.Cron
	engine  *Engine
	entries map[string]cron.EntryID // Graph名称 -> cron.EntryID映射
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCronScheduler 创建定时调度器（对外导出）
func NewCronScheduler(eng *Engine) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron:    cron.New(cron.WithSeconds()), // 支持秒级精度
		engine:  eng,
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RegisterGraph 把已注册的Graph绑定到Cron表达式（对外导出）
func (cs *CronScheduler) RegisterGraph(graphName, cronExpr string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, exists := cs.entries[graphName]; exists {
		return fmt.Errorf("Graph %s 已注册到定时调度器", graphName)
	}
	if _, exists := cs.engine.GetGraph(graphName); !exists {
		return fmt.Errorf("Graph %s 未注册到引擎", graphName)
	}
	if cronExpr == "" {
		return fmt.Errorf("Graph %s 未设置Cron表达式", graphName)
	}

	// 验证Cron表达式（使用Parser支持秒级精度）
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cronExpr); err != nil {
		return fmt.Errorf("Graph %s 的Cron表达式无效: %w", graphName, err)
	}

	entryID, err := cs.cron.AddFunc(cronExpr, func() {
		cs.triggerRun(graphName)
	})
	if err != nil {
		return fmt.Errorf("添加Cron任务失败: %w", err)
	}

	cs.entries[graphName] = entryID
	log.Printf("✅ [Cron调度器] 已注册Graph: Name=%s, CronExpr=%s", graphName, cronExpr)
	return nil
}

// UnregisterGraph 解除Graph的定时调度（对外导出）
func (cs *CronScheduler) UnregisterGraph(graphName string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entryID, exists := cs.entries[graphName]
	if !exists {
		return fmt.Errorf("Graph %s 未注册到定时调度器", graphName)
	}
	cs.cron.Remove(entryID)
	delete(cs.entries, graphName)
	log.Printf("[Cron调度器] 已解除Graph: Name=%s", graphName)
	return nil
}

// triggerRun 触发一次运行
func (cs *CronScheduler) triggerRun(graphName string) {
	report, err := cs.engine.RunGraph(cs.ctx, graphName, nil)
	if err != nil {
		log.Printf("[Cron调度器] 触发运行失败: Graph=%s, Error=%v", graphName, err)
		return
	}
	log.Printf("[Cron调度器] 定时运行完成: Graph=%s, RunID=%s, Status=%s", graphName, report.RunID, report.Status)
}

// Start 启动定时调度器（对外导出）
func (cs *CronScheduler) Start() {
	cs.cron.Start()
}

// Stop 停止定时调度器（对外导出）
// 等待在途的定时运行结束
func (cs *CronScheduler) Stop() {
	cs.cancel()
	stopCtx := cs.cron.Stop()
	<-stopCtx.Done()
}

// Registered 获取已绑定定时调度的Graph名称列表（对外导出）
func (cs *CronScheduler) Registered() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	names := make([]string, 0, len(cs.entries))
	for name := range cs.entries {
		names = append(names, name)
	}
	return names
}
