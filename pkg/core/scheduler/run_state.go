package scheduler

import (
	"sort"
	"sync"

	"github.com/LENAX/dag-engine/pkg/core/graph"
	"github.com/LENAX/dag-engine/pkg/core/task"
)

// runState 单次运行的簿记状态（每次Run独立创建，运行间不共享）
// remaining入度计数和completed/failed/skipped集合是唯一需要互斥保护的共享状态，
// 减入度并检测归零的转换在锁内完成，保证每个Task的派发触发是线性化的
type runState struct {
	mu        sync.Mutex
	graph     *graph.Graph
	remaining map[string]int      // Task ID -> 剩余入度
	completed map[string]struct{} // 已成功完成的Task ID
	failed    map[string]error    // 失败的Task ID -> 失败原因
	skipped   map[string][]string // 被跳过的Task ID -> 引发跳过的失败源Task ID列表
	outputs   *OutputStore
	total     int
	terminal  int           // 已进入终态的Task数量
	done      chan struct{} // 所有Task进入终态时关闭
}

// newRunState 创建运行状态（入度计数从Graph拷贝）
func newRunState(g *graph.Graph) *runState {
	return &runState{
		graph:     g,
		remaining: g.InDegrees(),
		completed: make(map[string]struct{}),
		failed:    make(map[string]error),
		skipped:   make(map[string][]string),
		outputs:   NewOutputStore(),
		total:     g.Len(),
		done:      make(chan struct{}),
	}
}

// markTerminalLocked 记录一个Task进入终态，全部到齐时关闭done
// 调用方必须持有s.mu
func (s *runState) markTerminalLocked() {
	s.terminal++
	if s.terminal == s.total {
		close(s.done)
	}
}

// complete 记录Task成功完成并减少后继入度
// 返回因本次完成而入度归零的后继ID列表（调用方负责派发）
func (s *runState) complete(id string, content *task.Content) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 先写产出再减入度：下游派发时产出必然可见
	if err := s.outputs.put(id, content); err != nil {
		return nil, err
	}
	s.completed[id] = struct{}{}

	ready := make([]string, 0)
	for _, succID := range s.graph.Successors(id) {
		// 已被跳过的后继不再参与入度计数
		if _, isSkipped := s.skipped[succID]; isSkipped {
			continue
		}
		s.remaining[succID]--
		if s.remaining[succID] == 0 {
			ready = append(ready, succID)
		}
	}
	s.markTerminalLocked()
	return ready, nil
}

// fail 记录Task失败并对其全部传递后继做跳过级联
// 级联是一次BFS遍历：每个节点对同一个失败源只处理一次，
// 已标记为跳过的节点若本次失败源是新的，归属继续向其后继传播，
// 与失败Task无路径关系的Task不受影响
// 返回本次新标记为跳过的ID列表（用于事件通知）
func (s *runState) fail(id string, cause error) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failed[id] = cause
	s.markTerminalLocked()

	newlySkipped := make([]string, 0)
	queue := s.graph.Successors(id)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if _, isCompleted := s.completed[current]; isCompleted {
			// 后继不可能先于失败的前置完成，保底跳过
			continue
		}
		if origins, isSkipped := s.skipped[current]; isSkipped {
			// 已标记过：补充失败源归属；只有新归属才继续向下传播
			merged, added := appendOrigin(origins, id)
			s.skipped[current] = merged
			if added {
				queue = append(queue, s.graph.Successors(current)...)
			}
			continue
		}
		s.skipped[current] = []string{id}
		s.markTerminalLocked()
		newlySkipped = append(newlySkipped, current)
		queue = append(queue, s.graph.Successors(current)...)
	}
	return newlySkipped
}

// appendOrigin 追加失败源ID并保持有序去重
// 返回合并后的列表和本次是否实际新增
func appendOrigin(origins []string, id string) ([]string, bool) {
	for _, o := range origins {
		if o == id {
			return origins, false
		}
	}
	origins = append(origins, id)
	sort.Strings(origins)
	return origins, true
}
