// Package statusstore 保存最近一次健康快照，供 /status 和其他进程读取。
package statusstore

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/taoyao-code/mcp-status/internal/healthpoll"
)

// ErrNotFound 尚无快照
var ErrNotFound = errors.New("statusstore: no snapshot")

// Store 单槽快照存储
type Store interface {
	Save(ctx context.Context, st healthpoll.Status) error
	Load(ctx context.Context) (healthpoll.Status, error)
}

// MemoryStore 进程内存储
type MemoryStore struct {
	mu  sync.RWMutex
	st  healthpoll.Status
	set bool
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Save(_ context.Context, st healthpoll.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st, m.set = st.Clone(), true
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (healthpoll.Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return healthpoll.Status{}, ErrNotFound
	}
	return m.st.Clone(), nil
}

// Sink 将存储适配为轮询回调。保存失败只记录日志，不影响轮询。
func Sink(ctx context.Context, store Store, log *zap.Logger) healthpoll.UpdateFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(st healthpoll.Status) {
		if err := store.Save(ctx, st); err != nil {
			log.Warn("save health snapshot failed", zap.Error(err))
		}
	}
}

// Fanout 依次调用多个回调
func Fanout(fns ...healthpoll.UpdateFunc) healthpoll.UpdateFunc {
	return func(st healthpoll.Status) {
		for _, fn := range fns {
			if fn != nil {
				fn(st)
			}
		}
	}
}
