package health

import "sync"

// Readiness 启动阶段的就绪标记（DB、Redis、HTTP 等）
type Readiness struct {
	mu    sync.RWMutex
	parts map[string]bool
}

// New 创建就绪标记，components 为需要全部就绪的组件名
func New(components ...string) *Readiness {
	r := &Readiness{parts: make(map[string]bool, len(components))}
	for _, c := range components {
		r.parts[c] = false
	}
	return r
}

// Set 更新组件就绪状态
func (r *Readiness) Set(component string, ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts[component] = ready
}

// Ready 总体就绪：各组件均为 true
func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ok := range r.parts {
		if !ok {
			return false
		}
	}
	return true
}
