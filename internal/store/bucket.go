package store

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-health/internal/model"
)

var _ Store = (*BucketStore)(nil)

type subscriber struct {
	onSnapshot func(model.Snapshot)
	onError    func(error)
}

// BucketStore 在 backend 之上实现 Store：订阅、整集合写入与推送
// 快照在锁外同步推送，订阅回调内可以再次写入
type BucketStore struct {
	be       backend
	notifier Notifier
	origin   string
	logger   *zap.Logger

	mu       sync.Mutex
	subs     map[int]*subscriber
	nextID   int
	closed   bool
	revision atomic.Int64

	stopNotify func()
}

func newBucketStore(ctx context.Context, be backend, notifier Notifier, logger *zap.Logger) (*BucketStore, error) {
	s := &BucketStore{
		be:       be,
		notifier: notifier,
		origin:   uuid.NewString(),
		logger:   logger,
		subs:     make(map[int]*subscriber),
	}
	if notifier != nil {
		stop, err := notifier.SubscribeChanges(ctx, s.onRemoteChange)
		if err != nil {
			return nil, err
		}
		s.stopNotify = stop
	}
	return s, nil
}

func (s *BucketStore) Subscribe(ctx context.Context, onSnapshot func(model.Snapshot), onError func(error)) (func(), error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	id := s.nextID
	s.nextID++
	sub := &subscriber{onSnapshot: onSnapshot, onError: onError}
	s.subs[id] = sub
	s.mu.Unlock()

	s.deliver(ctx, []*subscriber{sub})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

func (s *BucketStore) ReadAll(ctx context.Context) (model.Snapshot, error) {
	rows, err := s.be.load(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	return decodeSnapshot(rows)
}

func (s *BucketStore) WriteCollection(ctx context.Context, name model.Collection, value any) error {
	rows, err := encodeCollection(name, value)
	if err != nil {
		return err
	}
	return s.write(ctx, rows, string(name))
}

func (s *BucketStore) WriteRoot(ctx context.Context, snap model.Snapshot) error {
	rows, err := encodeRoot(snap)
	if err != nil {
		return err
	}
	return s.write(ctx, rows, "root")
}

func (s *BucketStore) write(ctx context.Context, rows map[model.Collection][]byte, what string) error {
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.be.save(ctx, rows); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.PublishChange(ctx, s.origin+"|"+what); err != nil {
			s.logger.Warn("广播集合变更失败", zap.String("collection", what), zap.Error(err))
		}
	}

	s.broadcast(ctx)
	return nil
}

// onRemoteChange 其他实例写入后重新读取并推送；自身发出的消息忽略
func (s *BucketStore) onRemoteChange(msg string) {
	origin, what, _ := strings.Cut(msg, "|")
	if origin == s.origin {
		return
	}
	s.logger.Debug("收到远端集合变更", zap.String("collection", what))
	s.broadcast(context.Background())
}

func (s *BucketStore) broadcast(ctx context.Context) {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	if len(subs) > 0 {
		s.deliver(ctx, subs)
	}
}

// deliver 读取最新快照并推送；Revision 单调递增，订阅者据此丢弃过期快照
func (s *BucketStore) deliver(ctx context.Context, subs []*subscriber) {
	rev := s.revision.Add(1)
	snap, err := s.ReadAll(ctx)
	for _, sub := range subs {
		if err != nil {
			if sub.onError != nil {
				sub.onError(err)
			}
			continue
		}
		out := snap.Clone()
		out.Revision = rev
		sub.onSnapshot(out)
	}
}

func (s *BucketStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *BucketStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.subs = map[int]*subscriber{}
	s.mu.Unlock()

	if s.stopNotify != nil {
		s.stopNotify()
	}
	return s.be.close()
}
