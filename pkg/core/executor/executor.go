// Package executor 提供Task执行的底层并发基座
// 调度器只负责决定"何时就绪"，实际派发到哪个goroutine由Executor决定
package executor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Executor 执行基座接口（对外导出）
// 调度器通过Submit把就绪Task的执行闭包交给基座，基座决定并发策略
type Executor interface {
	// Start 启动执行器
	Start()
	// Shutdown 关闭执行器，等待在途任务完成
	Shutdown() error
	// Submit 提交一个执行单元
	Submit(job func()) error
}

// GoroutineExecutor 无界goroutine执行器（对外导出）
// 默认基座：每个就绪Task独立goroutine，瞬时并发数只受就绪集大小限制
// 引擎核心不施加并发上限，限流由PoolExecutor这类外部协作者承担
type GoroutineExecutor struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	running bool
}

// NewGoroutineExecutor 创建无界执行器（对外导出的工厂方法）
func NewGoroutineExecutor() *GoroutineExecutor {
	return &GoroutineExecutor{running: true}
}

// Start 启动执行器（对外导出）
func (e *GoroutineExecutor) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
}

// Shutdown 关闭执行器（对外导出）
// 等待所有在途任务完成
func (e *GoroutineExecutor) Shutdown() error {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	e.wg.Wait()
	return nil
}

// Submit 提交执行单元（对外导出）
func (e *GoroutineExecutor) Submit(job func()) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return fmt.Errorf("执行器已关闭，无法提交任务")
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		job()
	}()
	return nil
}

const maxPoolWorkers = 1000 // 池化执行器的最大并发数上限

// PoolExecutor 池化执行器（对外导出）
// 基于token池限制全局并发数，作为可选的准入控制协作者
type PoolExecutor struct {
	mu         sync.Mutex
	maxWorkers int
	workerPool chan struct{} // token池
	wg         sync.WaitGroup
	running    bool
}

// NewPoolExecutor 创建池化执行器（对外导出的工厂方法）
func NewPoolExecutor(maxWorkers int) (*PoolExecutor, error) {
	if maxWorkers <= 0 {
		maxWorkers = 10 // 默认值
	}
	if maxWorkers > maxPoolWorkers {
		return nil, fmt.Errorf("最大并发数不能超过 %d", maxPoolWorkers)
	}
	return &PoolExecutor{
		maxWorkers: maxWorkers,
		workerPool: make(chan struct{}, maxWorkers),
		running:    true,
	}, nil
}

// Start 启动执行器（对外导出）
func (e *PoolExecutor) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	log.Println("✅ 执行器已启动")
}

// Shutdown 关闭执行器（对外导出）
// 最多等待30秒让在途任务完成
func (e *PoolExecutor) Shutdown() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("✅ 执行器已关闭")
	case <-ctx.Done():
		log.Println("Executor: 关闭超时，强制终止")
	}
	return nil
}

// Submit 提交执行单元（对外导出）
// 池满时阻塞等待空闲worker，由此实现准入控制
func (e *PoolExecutor) Submit(job func()) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return fmt.Errorf("执行器已关闭，无法提交任务")
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		e.workerPool <- struct{}{} // 占用token
		defer func() { <-e.workerPool }()
		job()
	}()
	return nil
}

// MaxWorkers 获取最大并发数（对外导出）
func (e *PoolExecutor) MaxWorkers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxWorkers
}
