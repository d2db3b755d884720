package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"school-health/internal/model"
)

// memoryBackend 进程内存中的桶，重启即丢失
type memoryBackend struct {
	mu   sync.RWMutex
	rows map[model.Collection][]byte
}

// NewMemory 内存存储，用于开发与测试
func NewMemory(logger *zap.Logger) *BucketStore {
	s, _ := newBucketStore(context.Background(), &memoryBackend{rows: map[model.Collection][]byte{}}, nil, logger)
	return s
}

func (b *memoryBackend) load(_ context.Context) (map[model.Collection][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[model.Collection][]byte, len(b.rows))
	for k, v := range b.rows {
		out[k] = v
	}
	return out, nil
}

func (b *memoryBackend) save(_ context.Context, rows map[model.Collection][]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range rows {
		b.rows[k] = v
	}
	return nil
}

func (b *memoryBackend) close() error { return nil }
