package scheduler

import (
	"fmt"
	"sync"

	"github.com/LENAX/dag-engine/pkg/core/task"
)

// OutputStore 单次运行的结果存储（对外导出）
// Task ID -> 该Task产出的Content映射
// 每个key只会被写入一次（写入方是持有该ID的Task，且仅在成功完成时写入）
// 读取方是下游Task：入度归零后才会派发，写入happens-before读取由调度器的
// "先写结果、再减入度、归零才派发"顺序保证，这里的锁只保护map本身
type OutputStore struct {
	mu      sync.RWMutex
	outputs map[string]*task.Content
}

// NewOutputStore 创建OutputStore实例（对外导出的工厂方法）
func NewOutputStore() *OutputStore {
	return &OutputStore{
		outputs: make(map[string]*task.Content),
	}
}

// put 写入Task产出（内部方法，仅调度器在Task成功完成时调用）
// 同一ID重复写入视为调度器缺陷
func (s *OutputStore) put(id string, content *task.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.outputs[id]; exists {
		return fmt.Errorf("Task %s 的产出已存在，不允许重复写入", id)
	}
	s.outputs[id] = content
	return nil
}

// Get 读取指定Task的产出（对外导出）
func (s *OutputStore) Get(id string) (*task.Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, exists := s.outputs[id]
	return content, exists
}

// Collect 收集指定ID集合的产出（对外导出）
// 用于为下游Task组装前置产出映射，只包含实际存在的条目
func (s *OutputStore) Collect(ids []string) map[string]*task.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inputs := make(map[string]*task.Content, len(ids))
	for _, id := range ids {
		if content, exists := s.outputs[id]; exists {
			inputs[id] = content
		}
	}
	return inputs
}

// Snapshot 获取全部产出的副本（对外导出）
func (s *OutputStore) Snapshot() map[string]*task.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]*task.Content, len(s.outputs))
	for id, content := range s.outputs {
		snapshot[id] = content
	}
	return snapshot
}

// Len 获取产出数量（对外导出）
func (s *OutputStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outputs)
}
