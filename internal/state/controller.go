// Package state 应用状态控制器
//
// 控制器持有五个集合的本地镜像。本地状态只在收到存储推送时改变，
// 所有更新函数都只写存储，由推送回流到本地，保证各实例收敛到同一状态。
package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"school-health/internal/model"
	"school-health/internal/store"
	pkgerrors "school-health/pkg/errors"
	"school-health/pkg/metrics"
)

// Notification 全局通知，没有具体发起方的错误（如订阅失败）走这里
type Notification struct {
	Level   string    `json:"level"` // info | error
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

const (
	LevelInfo  = "info"
	LevelError = "error"

	msgLoadFailed = "Không thể tải dữ liệu từ máy chủ."
	msgSeedFailed = "Không thể khởi tạo dữ liệu mặc định."
)

// Controller 状态控制器
type Controller struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	seedFn  func() model.Snapshot

	mu       sync.RWMutex
	snap     model.Snapshot
	loaded   bool
	revision int64
	ctx      context.Context
	unsub    func()

	lmu      sync.RWMutex
	onChange []func(model.Snapshot)
	onNotify []func(Notification)
}

// NewController m 可以为 nil
func NewController(st store.Store, logger *zap.Logger, m *metrics.Metrics) *Controller {
	return &Controller{
		store:   st,
		logger:  logger,
		metrics: m,
		seedFn:  DefaultSnapshot,
		snap:    model.Snapshot{}.Normalize(),
		ctx:     context.Background(),
	}
}

// ────────────────────── 生命周期 ──────────────────────

// Start 订阅存储根，每个控制器只订阅一次
// 返回时至少已处理过一次推送（或一次错误）
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.unsub != nil {
		c.mu.Unlock()
		return nil
	}
	c.ctx = ctx
	c.mu.Unlock()

	unsub, err := c.store.Subscribe(ctx, c.handleSnapshot, c.handleError)
	if err != nil {
		return fmt.Errorf("订阅存储失败: %w", err)
	}

	c.mu.Lock()
	c.unsub = unsub
	c.mu.Unlock()

	c.logger.Info("状态控制器已启动", zap.Bool("loaded", c.Loaded()))
	return nil
}

// Stop 取消订阅
func (c *Controller) Stop() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
		c.logger.Info("状态控制器已停止")
	}
}

func (c *Controller) handleSnapshot(snap model.Snapshot) {
	c.metrics.IncSnapshot()

	if snap.Empty() {
		c.logger.Info("存储为空，写入默认数据")
		if err := c.seed(c.baseContext()); err != nil {
			c.logger.Error("写入默认数据失败", zap.Error(err))
			c.notify(LevelError, msgSeedFailed)
		}
		return
	}

	c.mu.Lock()
	if snap.Revision != 0 && snap.Revision < c.revision {
		c.mu.Unlock()
		c.logger.Debug("丢弃过期快照", zap.Int64("revision", snap.Revision))
		return
	}
	c.revision = snap.Revision
	c.snap = snap.Normalize()
	c.loaded = true
	c.mu.Unlock()

	c.logger.Debug("已应用快照",
		zap.Int64("revision", snap.Revision),
		zap.Int("schools", len(snap.Schools)),
		zap.Int("records", len(snap.HealthRecords)),
	)

	c.lmu.RLock()
	listeners := append([]func(model.Snapshot){}, c.onChange...)
	c.lmu.RUnlock()
	for _, fn := range listeners {
		fn(snap.Clone())
	}
}

// handleError 订阅错误：记录并广播；从未加载成功时尝试写入默认数据
func (c *Controller) handleError(err error) {
	c.metrics.IncSubscriptionError()
	c.logger.Error("读取存储快照失败", zap.Error(err))
	c.notify(LevelError, msgLoadFailed)

	if !c.Loaded() {
		if err := c.seed(c.baseContext()); err != nil {
			c.logger.Error("写入默认数据失败", zap.Error(err))
		}
	}
}

func (c *Controller) seed(ctx context.Context) error {
	c.metrics.IncSeed()
	err := c.store.WriteRoot(ctx, c.seedFn())
	c.metrics.ObserveStoreWrite("root", err)
	if err != nil {
		return fmt.Errorf("%w: %w", pkgerrors.ErrStoreWrite, err)
	}
	return nil
}

// Reset 用默认数据覆盖整个存储
func (c *Controller) Reset(ctx context.Context) error {
	c.logger.Warn("重置全部数据")
	return c.seed(ctx)
}

func (c *Controller) baseContext() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctx
}

// ────────────────────── 读取 ──────────────────────

// Snapshot 当前状态的深拷贝
func (c *Controller) Snapshot() model.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Clone()
}

// Current 未加载时返回 ErrStateNotLoaded
func (c *Controller) Current() (model.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return model.Snapshot{}, pkgerrors.ErrStateNotLoaded
	}
	return c.snap.Clone(), nil
}

func (c *Controller) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// ────────────────────── 整集合写入 ──────────────────────

func (c *Controller) UpdateSchools(ctx context.Context, v []model.School) error {
	return c.write(ctx, model.CollectionSchools, nonNil(v))
}

func (c *Controller) UpdateUsers(ctx context.Context, v []model.User) error {
	return c.write(ctx, model.CollectionUsers, nonNil(v))
}

func (c *Controller) UpdateHealthRecords(ctx context.Context, v []model.HealthRecord) error {
	return c.write(ctx, model.CollectionHealthRecords, nonNil(v))
}

func (c *Controller) UpdateSchoolYears(ctx context.Context, v []model.SchoolYear) error {
	return c.write(ctx, model.CollectionSchoolYears, nonNil(v))
}

func (c *Controller) UpdateDynamicFields(ctx context.Context, v []model.DynamicField) error {
	return c.write(ctx, model.CollectionDynamicFields, nonNil(v))
}

// write 失败时不重试，本地状态不变
func (c *Controller) write(ctx context.Context, name model.Collection, value any) error {
	err := c.store.WriteCollection(ctx, name, value)
	c.metrics.ObserveStoreWrite(string(name), err)
	if err != nil {
		c.logger.Error("写入集合失败", zap.String("collection", string(name)), zap.Error(err))
		return fmt.Errorf("%w: %w", pkgerrors.ErrStoreWrite, err)
	}
	return nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// ────────────────────── 监听 ──────────────────────

// OnChange 每次应用快照后回调
func (c *Controller) OnChange(fn func(model.Snapshot)) {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// OnNotify 全局通知回调
func (c *Controller) OnNotify(fn func(Notification)) {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	c.onNotify = append(c.onNotify, fn)
}

// Notify 向全局通知通道发送消息
func (c *Controller) Notify(level, message string) {
	c.notify(level, message)
}

func (c *Controller) notify(level, message string) {
	n := Notification{Level: level, Message: message, Time: time.Now()}
	c.lmu.RLock()
	fns := append([]func(Notification){}, c.onNotify...)
	c.lmu.RUnlock()
	for _, fn := range fns {
		fn(n)
	}
}
