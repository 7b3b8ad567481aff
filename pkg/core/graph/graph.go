// Package graph 提供有向无环图的构建与校验
// Graph持有全部Task及其依赖边，Finalize时通过拓扑遍历检测循环依赖，
// 之后构建go-dag邻接存储，后继/前置/根节点查询都由它提供
package graph

import (
	"fmt"
	"sort"
	"sync"

	dag "github.com/begmaroman/go-dag"

	"github.com/LENAX/dag-engine/pkg/core/task"
)

// Graph 有向无环图（对外导出）
// 调用方构建并持有Graph；调度器在一次运行期间借用Graph，不会修改其拓扑
// Finalize一次之后可以被多次运行
type Graph struct {
	mu        sync.RWMutex
	name      string
	tasks     map[string]*task.Task
	dag       *dag.DAG[*task.Task] // 邻接存储，Finalize时构建，拓扑查询由它提供
	inDegrees map[string]int       // Task ID -> 入度（go-dag不提供入度表，Finalize时派生）
	finalized bool
}

// New 创建Graph实例（对外导出的工厂方法）
func New(name string) *Graph {
	return &Graph{
		name:      name,
		tasks:     make(map[string]*task.Task),
		inDegrees: make(map[string]int),
	}
}

// Name 获取Graph名称（对外导出）
func (g *Graph) Name() string {
	return g.name
}

// AddTask 添加Task到Graph（对外导出）
// ID重复时返回ErrDuplicateIdentity，已注册的Task保持不变
// Finalize之后不允许再添加
func (g *Graph) AddTask(t *task.Task) error {
	if t == nil {
		return fmt.Errorf("Task不能为nil")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finalized {
		return ErrFinalized
	}
	if _, exists := g.tasks[t.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, t.ID())
	}
	g.tasks[t.ID()] = t
	return nil
}

// Finalize 完成Graph构建（对外导出）
// 1. 校验所有依赖引用的Task都存在
// 2. 派生入度表，用Kahn算法做拓扑遍历检测循环依赖，
//    遍历后仍有剩余节点说明存在环，返回CycleError并带上环成员集合
// 3. 构建go-dag实例作为只读邻接存储，之后的拓扑查询都走它
// Finalize是幂等的，重复调用直接返回成功
func (g *Graph) Finalize() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finalized {
		return nil
	}

	// 1. 依赖引用校验
	for id, t := range g.tasks {
		for _, depID := range t.Dependencies() {
			if _, exists := g.tasks[depID]; !exists {
				return fmt.Errorf("%w: Task %s 依赖 %s", ErrUnknownDependency, id, depID)
			}
			if depID == id {
				return &CycleError{Members: []string{id}}
			}
		}
	}

	// 2. 派生入度表和Kahn遍历用的临时邻接表
	successors := make(map[string][]string, len(g.tasks))
	inDegrees := make(map[string]int, len(g.tasks))
	for id := range g.tasks {
		successors[id] = make([]string, 0)
		inDegrees[id] = 0
	}
	for id, t := range g.tasks {
		for _, depID := range t.Dependencies() {
			successors[depID] = append(successors[depID], id)
			inDegrees[id]++
		}
	}

	// Kahn拓扑遍历检测循环
	remaining := make(map[string]int, len(inDegrees))
	for id, deg := range inDegrees {
		remaining[id] = deg
	}
	queue := make([]string, 0)
	for id, deg := range remaining {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	processed := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		processed++
		for _, succID := range successors[current] {
			remaining[succID]--
			if remaining[succID] == 0 {
				queue = append(queue, succID)
			}
		}
	}
	if processed != len(g.tasks) {
		// 入度未归零的节点就是环的成员
		members := make([]string, 0)
		for id, deg := range remaining {
			if deg > 0 {
				members = append(members, id)
			}
		}
		sort.Strings(members)
		return &CycleError{Members: members}
	}

	// 3. 构建go-dag实例（已确认无环，AddEdge不会失败）
	d := dag.NewDAG[*task.Task]()
	for _, t := range g.tasks {
		if _, err := d.AddVertex(t); err != nil {
			return fmt.Errorf("添加节点失败: Task ID=%s, Error=%w", t.ID(), err)
		}
	}
	for id, t := range g.tasks {
		for _, depID := range t.Dependencies() {
			if err := d.AddEdge(depID, id); err != nil {
				return fmt.Errorf("添加边失败: %s -> %s, Error=%w", depID, id, err)
			}
		}
	}

	g.dag = d
	g.inDegrees = inDegrees
	g.finalized = true
	return nil
}

// Finalized 判断Graph是否已Finalize（对外导出）
func (g *Graph) Finalized() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.finalized
}

// Roots 获取所有入度为0的Task ID（对外导出，已排序）
// 即一次运行的初始就绪集，Finalize之前返回nil
func (g *Graph) Roots() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.dag == nil {
		return nil
	}
	roots := make([]string, 0)
	for id := range g.dag.GetRoots() {
		roots = append(roots, id)
	}
	sort.Strings(roots)
	return roots
}

// Successors 获取指定Task的后继Task ID列表（对外导出，已排序）
// Task不存在或Graph未Finalize时返回nil
func (g *Graph) Successors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.dag == nil {
		return nil
	}
	children, err := g.dag.GetChildren(id)
	if err != nil {
		return nil
	}
	succ := make([]string, 0, len(children))
	for childID := range children {
		succ = append(succ, childID)
	}
	sort.Strings(succ)
	return succ
}

// Predecessors 获取指定Task的前置Task ID列表（对外导出，已排序）
// Task不存在或Graph未Finalize时返回nil
func (g *Graph) Predecessors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.dag == nil {
		return nil
	}
	parents, err := g.dag.GetParents(id)
	if err != nil {
		return nil
	}
	preds := make([]string, 0, len(parents))
	for parentID := range parents {
		preds = append(preds, parentID)
	}
	sort.Strings(preds)
	return preds
}

// InDegrees 获取入度表的副本（对外导出）
// 每次运行用它初始化各Task的剩余入度计数
func (g *Graph) InDegrees() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	degrees := make(map[string]int, len(g.inDegrees))
	for id, deg := range g.inDegrees {
		degrees[id] = deg
	}
	return degrees
}

// GetTask 获取指定Task（对外导出）
func (g *Graph) GetTask(id string) (*task.Task, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, exists := g.tasks[id]
	return t, exists
}

// Tasks 获取所有Task的副本映射（对外导出）
func (g *Graph) Tasks() map[string]*task.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	tasks := make(map[string]*task.Task, len(g.tasks))
	for id, t := range g.tasks {
		tasks[id] = t
	}
	return tasks
}

// Len 获取Task数量（对外导出）
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.tasks)
}
