package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LENAX/dag-engine/pkg/core/env"
	"github.com/LENAX/dag-engine/pkg/core/graph"
	"github.com/LENAX/dag-engine/pkg/core/task"
)

// valueCapability 返回固定值的执行能力
func valueCapability(value any) task.Capability {
	return task.CapabilityFunc(func(_ context.Context, _ *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
		return task.NewContent(value), nil
	})
}

// failCapability 固定失败的执行能力
func failCapability(msg string) task.Capability {
	return task.CapabilityFunc(func(_ context.Context, _ *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
		return nil, errors.New(msg)
	})
}

// sumCapability 对所有前置产出求和
func sumCapability() task.Capability {
	return task.CapabilityFunc(func(_ context.Context, _ *env.EnvVar, inputs map[string]*task.Content) (*task.Content, error) {
		total := 0
		for id, content := range inputs {
			n, err := content.Int()
			if err != nil {
				return nil, fmt.Errorf("前置 %s 的产出不是整数: %w", id, err)
			}
			total += n
		}
		return task.NewContent(total), nil
	})
}

// buildGraph 构建并Finalize一个Graph
func buildGraph(t *testing.T, tasks ...*task.Task) *graph.Graph {
	t.Helper()
	g := graph.New("test-graph")
	for _, tk := range tasks {
		if err := g.AddTask(tk); err != nil {
			t.Fatalf("添加Task失败: %v", err)
		}
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize失败: %v", err)
	}
	return g
}

// TestScheduler_RunSuccess 测试全部成功的运行及报告划分
func TestScheduler_RunSuccess(t *testing.T) {
	g := buildGraph(t,
		task.NewTask("a", "a", valueCapability(1)),
		task.NewTask("b", "b", valueCapability(2)).DependsOn("a"),
		task.NewTask("c", "c", valueCapability(3)).DependsOn("a"),
		task.NewTask("d", "d", sumCapability()).DependsOn("b", "c"),
	)

	report, err := New().Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("Run失败: %v", err)
	}
	if !report.Ok() {
		t.Fatalf("Status应为SUCCESS，实际: %s", report.Status)
	}
	if len(report.Outputs) != 4 || len(report.Failed) != 0 || len(report.Skipped) != 0 {
		t.Fatalf("报告划分错误: 完成=%d, 失败=%d, 跳过=%d",
			len(report.Outputs), len(report.Failed), len(report.Skipped))
	}
	if report.TerminalCount() != g.Len() {
		t.Fatalf("终态Task总数应为 %d，实际: %d", g.Len(), report.TerminalCount())
	}

	// d收到b和c的产出: 2+3
	sum, err := report.Outputs["d"].Int()
	if err != nil {
		t.Fatalf("读取d的产出失败: %v", err)
	}
	if sum != 5 {
		t.Fatalf("d的产出应为5，实际: %d", sum)
	}
}

// TestScheduler_ResultPassing 测试前置产出按ID传递给下游
func TestScheduler_ResultPassing(t *testing.T) {
	var mu sync.Mutex
	var received map[string]*task.Content

	collect := task.CapabilityFunc(func(_ context.Context, _ *env.EnvVar, inputs map[string]*task.Content) (*task.Content, error) {
		mu.Lock()
		received = inputs
		mu.Unlock()
		return nil, nil
	})

	g := buildGraph(t,
		task.NewTask("x", "x", valueCapability("hello")),
		task.NewTask("y", "y", valueCapability(42)),
		task.NewTask("z", "z", collect).DependsOn("x", "y"),
	)

	if _, err := New().Run(context.Background(), g, env.New()); err != nil {
		t.Fatalf("Run失败: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("z应收到2个前置产出，实际: %d", len(received))
	}
	s, _ := received["x"].String()
	if s != "hello" {
		t.Errorf("x的产出应为hello，实际: %s", s)
	}
	n, _ := received["y"].Int()
	if n != 42 {
		t.Errorf("y的产出应为42，实际: %d", n)
	}
}

// TestScheduler_FailureCascade 测试失败触发的跳过级联及失败源归属
func TestScheduler_FailureCascade(t *testing.T) {
	// a失败 -> b、c直接跳过，d间接跳过；e与a无路径关系，正常完成
	g := buildGraph(t,
		task.NewTask("a", "a", failCapability("模拟失败")),
		task.NewTask("b", "b", valueCapability(1)).DependsOn("a"),
		task.NewTask("c", "c", valueCapability(2)).DependsOn("a"),
		task.NewTask("d", "d", valueCapability(3)).DependsOn("b", "c"),
		task.NewTask("e", "e", valueCapability(4)),
	)

	report, err := New().Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("Task失败不应成为Run的error: %v", err)
	}
	if report.Status != RunStatusPartialFailure {
		t.Fatalf("Status应为PARTIAL_FAILURE，实际: %s", report.Status)
	}

	if len(report.Failed) != 1 {
		t.Fatalf("应有1个失败Task，实际: %v", report.FailedIDs())
	}
	if report.Failed["a"] == nil || report.Failed["a"].Error() != "模拟失败" {
		t.Fatalf("a的失败原因应被保留，实际: %v", report.Failed["a"])
	}

	skippedIDs := report.SkippedIDs()
	if len(skippedIDs) != 3 {
		t.Fatalf("应有3个跳过Task，实际: %v", skippedIDs)
	}
	for _, id := range []string{"b", "c", "d"} {
		origins, exists := report.Skipped[id]
		if !exists {
			t.Errorf("Task %s 应被跳过", id)
			continue
		}
		if len(origins) != 1 || origins[0] != "a" {
			t.Errorf("Task %s 的失败源应为 [a]，实际: %v", id, origins)
		}
	}

	// 无关联的e正常完成
	if _, exists := report.Outputs["e"]; !exists {
		t.Fatal("与失败Task无路径关系的e应正常完成")
	}
	if report.TerminalCount() != 5 {
		t.Fatalf("全部Task应进入终态，实际: %d", report.TerminalCount())
	}
}

// TestScheduler_MultipleFailureOrigins 测试多个失败源汇聚到同一个跳过Task
func TestScheduler_MultipleFailureOrigins(t *testing.T) {
	g := buildGraph(t,
		task.NewTask("f1", "f1", failCapability("失败1")),
		task.NewTask("f2", "f2", failCapability("失败2")),
		task.NewTask("join", "join", valueCapability(0)).DependsOn("f1", "f2"),
	)

	report, err := New().Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("Run失败: %v", err)
	}
	if len(report.Failed) != 2 {
		t.Fatalf("应有2个失败Task，实际: %v", report.FailedIDs())
	}

	origins := report.Skipped["join"]
	if len(origins) != 2 || origins[0] != "f1" || origins[1] != "f2" {
		t.Fatalf("join的失败源应为 [f1 f2]（已排序），实际: %v", origins)
	}
}

// TestScheduler_OriginPropagationThroughSkipped 测试后到的失败源穿透已跳过的节点
// mid先因一个失败被跳过，另一个失败的归属也要传播到mid的后继
func TestScheduler_OriginPropagationThroughSkipped(t *testing.T) {
	g := buildGraph(t,
		task.NewTask("f1", "f1", failCapability("失败1")),
		task.NewTask("f2", "f2", failCapability("失败2")),
		task.NewTask("mid", "mid", valueCapability(0)).DependsOn("f1", "f2"),
		task.NewTask("leaf", "leaf", valueCapability(0)).DependsOn("mid"),
	)

	report, err := New().Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("Run失败: %v", err)
	}

	if origins := report.Skipped["mid"]; len(origins) != 2 || origins[0] != "f1" || origins[1] != "f2" {
		t.Fatalf("mid的失败源应为 [f1 f2]，实际: %v", origins)
	}
	// 两个失败的级联都经由mid到达leaf
	if origins := report.Skipped["leaf"]; len(origins) != 2 || origins[0] != "f1" || origins[1] != "f2" {
		t.Fatalf("leaf的失败源应为 [f1 f2]，实际: %v", origins)
	}
}

// TestScheduler_ConcurrentDispatch 测试独立Task的并发执行
// 两个根Task互相等待对方开始执行，只有并发派发才能双双完成
func TestScheduler_ConcurrentDispatch(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	rendezvous := func(_ context.Context, _ *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
		barrier.Done()
		bothArrived := make(chan struct{})
		go func() {
			barrier.Wait()
			close(bothArrived)
		}()
		select {
		case <-bothArrived:
			return task.NewContent(true), nil
		case <-time.After(3 * time.Second):
			return nil, errors.New("等待对方Task超时，派发不是并发的")
		}
	}

	g := buildGraph(t,
		task.NewTask("left", "left", task.CapabilityFunc(rendezvous)),
		task.NewTask("right", "right", task.CapabilityFunc(rendezvous)),
	)

	report, err := New().Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("Run失败: %v", err)
	}
	if !report.Ok() {
		t.Fatalf("两个独立Task应并发执行并全部完成，实际: %v", report.Failed)
	}
}

// TestScheduler_DependencyOrdering 测试依赖顺序约束
// 下游开始执行时前置产出必然可见
func TestScheduler_DependencyOrdering(t *testing.T) {
	g := buildGraph(t,
		task.NewTask("first", "first", valueCapability("ready")),
		task.NewTask("second", "second", task.CapabilityFunc(
			func(_ context.Context, _ *env.EnvVar, inputs map[string]*task.Content) (*task.Content, error) {
				s, err := inputs["first"].String()
				if err != nil {
					return nil, fmt.Errorf("前置产出不可见: %w", err)
				}
				if s != "ready" {
					return nil, fmt.Errorf("前置产出内容错误: %s", s)
				}
				return nil, nil
			})).DependsOn("first"),
	)

	// 多轮运行提高调度交错的覆盖
	for i := 0; i < 20; i++ {
		report, err := New().Run(context.Background(), g, env.New())
		if err != nil {
			t.Fatalf("第%d轮Run失败: %v", i, err)
		}
		if !report.Ok() {
			t.Fatalf("第%d轮运行失败: %v", i, report.Failed)
		}
	}
}

// TestScheduler_RerunIsolation 测试同一Graph多次运行的状态隔离
func TestScheduler_RerunIsolation(t *testing.T) {
	var counter int
	var mu sync.Mutex
	g := buildGraph(t,
		task.NewTask("a", "a", task.CapabilityFunc(
			func(_ context.Context, _ *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
				mu.Lock()
				counter++
				n := counter
				mu.Unlock()
				return task.NewContent(n), nil
			})),
	)

	s := New()
	first, err := s.Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("第一次Run失败: %v", err)
	}
	second, err := s.Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("第二次Run失败: %v", err)
	}

	if first.RunID == second.RunID {
		t.Fatal("两次运行的RunID应不同")
	}
	n1, _ := first.Outputs["a"].Int()
	n2, _ := second.Outputs["a"].Int()
	if n1 != 1 || n2 != 2 {
		t.Fatalf("两次运行应各自执行一次Task，实际: %d, %d", n1, n2)
	}
}

// TestScheduler_NotFinalized 测试未Finalize的Graph被拒绝
func TestScheduler_NotFinalized(t *testing.T) {
	g := graph.New("raw")
	if err := g.AddTask(task.NewTask("a", "a", valueCapability(1))); err != nil {
		t.Fatalf("添加Task失败: %v", err)
	}

	_, err := New().Run(context.Background(), g, env.New())
	if !errors.Is(err, graph.ErrNotFinalized) {
		t.Fatalf("未Finalize的Graph应返回ErrNotFinalized，实际: %v", err)
	}
}

// TestScheduler_NilGraph 测试nil Graph被拒绝
func TestScheduler_NilGraph(t *testing.T) {
	if _, err := New().Run(context.Background(), nil, env.New()); err == nil {
		t.Fatal("nil Graph应返回错误")
	}
}

// TestScheduler_EmptyGraph 测试空Graph的运行
func TestScheduler_EmptyGraph(t *testing.T) {
	g := graph.New("empty")
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize失败: %v", err)
	}

	report, err := New().Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("空Graph的Run应成功: %v", err)
	}
	if !report.Ok() || report.TerminalCount() != 0 {
		t.Fatalf("空Graph应返回空的成功报告，实际: %+v", report)
	}
}

// TestScheduler_PanicRecovery 测试Task panic被转换为失败
func TestScheduler_PanicRecovery(t *testing.T) {
	g := buildGraph(t,
		task.NewTask("boom", "boom", task.CapabilityFunc(
			func(_ context.Context, _ *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
				panic("意外崩溃")
			})),
		task.NewTask("after", "after", valueCapability(1)).DependsOn("boom"),
	)

	report, err := New().Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("panic不应成为Run的error: %v", err)
	}
	cause, exists := report.Failed["boom"]
	if !exists {
		t.Fatal("panic的Task应记录为失败")
	}
	if cause == nil {
		t.Fatal("失败原因不应为nil")
	}
	if origins := report.Skipped["after"]; len(origins) != 1 || origins[0] != "boom" {
		t.Fatalf("after应因boom被跳过，实际失败源: %v", origins)
	}
}

// TestScheduler_SharedEnvironment 测试Task间共享环境变量
func TestScheduler_SharedEnvironment(t *testing.T) {
	g := buildGraph(t,
		task.NewTask("writer", "writer", task.CapabilityFunc(
			func(_ context.Context, environment *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
				environment.Set("shared_key", "shared_value")
				return nil, nil
			})),
		task.NewTask("reader", "reader", task.CapabilityFunc(
			func(_ context.Context, environment *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
				return task.NewContent(environment.GetString("shared_key")), nil
			})).DependsOn("writer"),
	)

	report, err := New().Run(context.Background(), g, env.New())
	if err != nil {
		t.Fatalf("Run失败: %v", err)
	}
	value, _ := report.Outputs["reader"].String()
	if value != "shared_value" {
		t.Fatalf("reader应读到writer写入的环境变量，实际: %q", value)
	}
}

// TestScheduler_ListenerEvents 测试事件监听回调
type recordingListener struct {
	mu         sync.Mutex
	started    int
	dispatched []string
	completed  []string
	failed     []string
	skipped    []string
	finished   int
}

func (l *recordingListener) OnRunStarted(_, _ string, _ int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started++
}

func (l *recordingListener) OnTaskDispatched(_, taskID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dispatched = append(l.dispatched, taskID)
}

func (l *recordingListener) OnTaskCompleted(_, taskID string, _ time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed = append(l.completed, taskID)
}

func (l *recordingListener) OnTaskFailed(_, taskID string, _ error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = append(l.failed, taskID)
}

func (l *recordingListener) OnTaskSkipped(_, taskID string, _ []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.skipped = append(l.skipped, taskID)
}

func (l *recordingListener) OnRunFinished(_ string, _ *RunReport) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finished++
}

func TestScheduler_ListenerEvents(t *testing.T) {
	listener := &recordingListener{}
	g := buildGraph(t,
		task.NewTask("ok", "ok", valueCapability(1)),
		task.NewTask("bad", "bad", failCapability("失败")),
		task.NewTask("child", "child", valueCapability(2)).DependsOn("bad"),
	)

	if _, err := New(WithListener(listener)).Run(context.Background(), g, env.New()); err != nil {
		t.Fatalf("Run失败: %v", err)
	}

	listener.mu.Lock()
	defer listener.mu.Unlock()
	if listener.started != 1 || listener.finished != 1 {
		t.Fatalf("运行事件应各触发一次，实际: started=%d, finished=%d", listener.started, listener.finished)
	}
	if len(listener.completed) != 1 || listener.completed[0] != "ok" {
		t.Errorf("完成事件应为 [ok]，实际: %v", listener.completed)
	}
	if len(listener.failed) != 1 || listener.failed[0] != "bad" {
		t.Errorf("失败事件应为 [bad]，实际: %v", listener.failed)
	}
	if len(listener.skipped) != 1 || listener.skipped[0] != "child" {
		t.Errorf("跳过事件应为 [child]，实际: %v", listener.skipped)
	}
}

// TestOutputStore_WriteOnce 测试产出只写一次
func TestOutputStore_WriteOnce(t *testing.T) {
	store := NewOutputStore()
	if err := store.put("a", task.NewContent(1)); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}
	if err := store.put("a", task.NewContent(2)); err == nil {
		t.Fatal("重复写入应失败")
	}

	content, exists := store.Get("a")
	if !exists {
		t.Fatal("产出应存在")
	}
	n, _ := content.Int()
	if n != 1 {
		t.Fatalf("产出应保持首次写入的值，实际: %d", n)
	}
}

// TestOutputStore_Collect 测试按ID集合收集产出
func TestOutputStore_Collect(t *testing.T) {
	store := NewOutputStore()
	if err := store.put("a", task.NewContent("va")); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if err := store.put("b", task.NewContent("vb")); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	inputs := store.Collect([]string{"a", "b", "missing"})
	if len(inputs) != 2 {
		t.Fatalf("应只收集到存在的条目，实际: %d", len(inputs))
	}
	if store.Len() != 2 {
		t.Fatalf("产出数量应为2，实际: %d", store.Len())
	}
}
