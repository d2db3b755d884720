package store

import (
	"context"
	"sync"
)

// Notifier 多实例之间的集合变更广播
// *redis.Client 实现了该接口；单实例部署可不配置
type Notifier interface {
	PublishChange(ctx context.Context, msg string) error
	SubscribeChanges(ctx context.Context, fn func(msg string)) (func(), error)
}

// LocalNotifier 进程内广播，用于同一进程内多个 Store 共享一个后端
type LocalNotifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(string)
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[int]func(string))}
}

func (n *LocalNotifier) PublishChange(_ context.Context, msg string) error {
	n.mu.RLock()
	fns := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(msg)
	}
	return nil
}

func (n *LocalNotifier) SubscribeChanges(_ context.Context, fn func(string)) (func(), error) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}, nil
}
