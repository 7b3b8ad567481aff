package graph

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/LENAX/dag-engine/pkg/core/env"
	"github.com/LENAX/dag-engine/pkg/core/task"
)

// noopCapability 测试用的空执行能力
func noopCapability() task.Capability {
	return task.CapabilityFunc(func(_ context.Context, _ *env.EnvVar, _ map[string]*task.Content) (*task.Content, error) {
		return nil, nil
	})
}

// newTestTask 创建测试Task
func newTestTask(t *testing.T, id string, deps ...string) *task.Task {
	t.Helper()
	tk := task.NewTask(id, id, noopCapability())
	if len(deps) > 0 {
		tk.DependsOn(deps...)
	}
	return tk
}

// TestGraph_BuildAndFinalize 测试正常构建与Finalize
func TestGraph_BuildAndFinalize(t *testing.T) {
	g := New("test-graph")
	tasks := []*task.Task{
		newTestTask(t, "a"),
		newTestTask(t, "b", "a"),
		newTestTask(t, "c", "a"),
		newTestTask(t, "d", "b", "c"),
	}
	for _, tk := range tasks {
		if err := g.AddTask(tk); err != nil {
			t.Fatalf("添加Task失败: %v", err)
		}
	}

	if g.Finalized() {
		t.Fatal("Finalize之前Finalized()应为false")
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize失败: %v", err)
	}
	if !g.Finalized() {
		t.Fatal("Finalize之后Finalized()应为true")
	}

	roots := g.Roots()
	if len(roots) != 1 || roots[0] != "a" {
		t.Fatalf("根节点应为 [a]，实际: %v", roots)
	}

	succ := g.Successors("a")
	sort.Strings(succ)
	if len(succ) != 2 || succ[0] != "b" || succ[1] != "c" {
		t.Fatalf("a的后继应为 [b c]，实际: %v", succ)
	}

	degrees := g.InDegrees()
	expected := map[string]int{"a": 0, "b": 1, "c": 1, "d": 2}
	for id, deg := range expected {
		if degrees[id] != deg {
			t.Errorf("Task %s 入度应为 %d，实际: %d", id, deg, degrees[id])
		}
	}
}

// TestGraph_DuplicateIdentity 测试重复ID被拒绝且原Task不变
func TestGraph_DuplicateIdentity(t *testing.T) {
	g := New("test-graph")
	first := task.NewTask("a", "第一个", noopCapability())
	if err := g.AddTask(first); err != nil {
		t.Fatalf("添加Task失败: %v", err)
	}

	second := task.NewTask("a", "第二个", noopCapability())
	err := g.AddTask(second)
	if err == nil {
		t.Fatal("重复ID应返回错误")
	}
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("错误应为ErrDuplicateIdentity，实际: %v", err)
	}

	// 已注册的Task保持不变
	stored, exists := g.GetTask("a")
	if !exists {
		t.Fatal("Task a 应存在")
	}
	if stored.Name != "第一个" {
		t.Fatalf("原Task不应被覆盖，实际Name: %s", stored.Name)
	}
	if g.Len() != 1 {
		t.Fatalf("Graph应只有1个Task，实际: %d", g.Len())
	}
}

// TestGraph_CycleDetection 测试循环依赖检测及环成员集合
func TestGraph_CycleDetection(t *testing.T) {
	g := New("test-graph")
	// a -> b -> c -> a 构成环，d依赖a但不在环内
	for _, tk := range []*task.Task{
		newTestTask(t, "a", "c"),
		newTestTask(t, "b", "a"),
		newTestTask(t, "c", "b"),
		newTestTask(t, "d", "a"),
	} {
		if err := g.AddTask(tk); err != nil {
			t.Fatalf("添加Task失败: %v", err)
		}
	}

	err := g.Finalize()
	if err == nil {
		t.Fatal("存在环时Finalize应失败")
	}
	ce, ok := IsCycleError(err)
	if !ok {
		t.Fatalf("错误应为CycleError，实际: %v", err)
	}
	// 环成员a/b/c；d虽然依赖环上的a，入度同样无法归零，也会留在剩余集合里
	members := map[string]bool{}
	for _, id := range ce.Members {
		members[id] = true
	}
	for _, id := range []string{"a", "b", "c"} {
		if !members[id] {
			t.Errorf("环成员应包含 %s，实际: %v", id, ce.Members)
		}
	}
	if g.Finalized() {
		t.Fatal("Finalize失败后Finalized()应为false")
	}
}

// TestGraph_SelfDependency 测试自依赖被视为环
func TestGraph_SelfDependency(t *testing.T) {
	g := New("test-graph")
	if err := g.AddTask(newTestTask(t, "a", "a")); err != nil {
		t.Fatalf("添加Task失败: %v", err)
	}
	err := g.Finalize()
	ce, ok := IsCycleError(err)
	if !ok {
		t.Fatalf("自依赖应返回CycleError，实际: %v", err)
	}
	if len(ce.Members) != 1 || ce.Members[0] != "a" {
		t.Fatalf("环成员应为 [a]，实际: %v", ce.Members)
	}
}

// TestGraph_UnknownDependency 测试依赖不存在的Task
func TestGraph_UnknownDependency(t *testing.T) {
	g := New("test-graph")
	if err := g.AddTask(newTestTask(t, "a", "ghost")); err != nil {
		t.Fatalf("添加Task失败: %v", err)
	}
	err := g.Finalize()
	if !errors.Is(err, ErrUnknownDependency) {
		t.Fatalf("错误应为ErrUnknownDependency，实际: %v", err)
	}
}

// TestGraph_AddAfterFinalize 测试Finalize后拓扑冻结
func TestGraph_AddAfterFinalize(t *testing.T) {
	g := New("test-graph")
	if err := g.AddTask(newTestTask(t, "a")); err != nil {
		t.Fatalf("添加Task失败: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize失败: %v", err)
	}

	err := g.AddTask(newTestTask(t, "b"))
	if !errors.Is(err, ErrFinalized) {
		t.Fatalf("Finalize后添加Task应返回ErrFinalized，实际: %v", err)
	}
}

// TestGraph_FinalizeIdempotent 测试Finalize的幂等性
func TestGraph_FinalizeIdempotent(t *testing.T) {
	g := New("test-graph")
	if err := g.AddTask(newTestTask(t, "a")); err != nil {
		t.Fatalf("添加Task失败: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("第一次Finalize失败: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("重复Finalize应直接成功: %v", err)
	}
}

// TestGraph_MultipleRootsAndOrphans 测试多根节点和孤立节点
func TestGraph_MultipleRootsAndOrphans(t *testing.T) {
	g := New("test-graph")
	for _, tk := range []*task.Task{
		newTestTask(t, "a"),
		newTestTask(t, "b"),
		newTestTask(t, "c", "a"),
		newTestTask(t, "orphan"),
	} {
		if err := g.AddTask(tk); err != nil {
			t.Fatalf("添加Task失败: %v", err)
		}
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize失败: %v", err)
	}

	roots := g.Roots()
	if len(roots) != 3 {
		t.Fatalf("应有3个根节点，实际: %v", roots)
	}
	expected := []string{"a", "b", "orphan"}
	for i, id := range expected {
		if roots[i] != id {
			t.Errorf("根节点[%d]应为 %s，实际: %s", i, id, roots[i])
		}
	}
}

// TestGraph_EmptyGraph 测试空Graph可以Finalize
func TestGraph_EmptyGraph(t *testing.T) {
	g := New("empty")
	if err := g.Finalize(); err != nil {
		t.Fatalf("空Graph的Finalize应成功: %v", err)
	}
	if len(g.Roots()) != 0 {
		t.Fatalf("空Graph不应有根节点，实际: %v", g.Roots())
	}
}

// TestGraph_TopologyQueries 测试Finalize后邻接查询的完整性
func TestGraph_TopologyQueries(t *testing.T) {
	g := New("test-graph")
	for _, tk := range []*task.Task{
		newTestTask(t, "a"),
		newTestTask(t, "b", "a"),
		newTestTask(t, "c", "a"),
		newTestTask(t, "d", "c", "b"),
	} {
		if err := g.AddTask(tk); err != nil {
			t.Fatalf("添加Task失败: %v", err)
		}
	}

	// Finalize之前邻接存储尚未构建
	if g.Roots() != nil || g.Successors("a") != nil || g.Predecessors("d") != nil {
		t.Fatal("Finalize之前拓扑查询应返回nil")
	}

	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize失败: %v", err)
	}

	// 后继和前置都按字典序返回
	if succ := g.Successors("a"); len(succ) != 2 || succ[0] != "b" || succ[1] != "c" {
		t.Fatalf("a的后继应为 [b c]，实际: %v", succ)
	}
	if preds := g.Predecessors("d"); len(preds) != 2 || preds[0] != "b" || preds[1] != "c" {
		t.Fatalf("d的前置应为 [b c]，实际: %v", preds)
	}
	if succ := g.Successors("d"); len(succ) != 0 {
		t.Fatalf("末端Task不应有后继，实际: %v", succ)
	}

	// 不存在的Task返回nil
	if g.Successors("ghost") != nil || g.Predecessors("ghost") != nil {
		t.Fatal("不存在的Task的邻接查询应返回nil")
	}
}

// TestGraph_Predecessors 测试前置查询
func TestGraph_Predecessors(t *testing.T) {
	g := New("test-graph")
	for _, tk := range []*task.Task{
		newTestTask(t, "a"),
		newTestTask(t, "b"),
		newTestTask(t, "c", "a", "b"),
	} {
		if err := g.AddTask(tk); err != nil {
			t.Fatalf("添加Task失败: %v", err)
		}
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize失败: %v", err)
	}

	preds := g.Predecessors("c")
	sort.Strings(preds)
	if len(preds) != 2 || preds[0] != "a" || preds[1] != "b" {
		t.Fatalf("c的前置应为 [a b]，实际: %v", preds)
	}
	if g.Predecessors("ghost") != nil {
		t.Fatal("不存在的Task的前置应为nil")
	}
}
