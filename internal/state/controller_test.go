package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"school-health/internal/model"
	"school-health/internal/store"
	pkgerrors "school-health/pkg/errors"
	"school-health/pkg/metrics"
)

// failingStore 写入集合总是失败
type failingStore struct {
	store.Store
	err error
}

func (f *failingStore) WriteCollection(context.Context, model.Collection, any) error { return f.err }

// errorStore 订阅时推送错误，记录 WriteRoot 调用
type errorStore struct {
	store.Store
	mu        sync.Mutex
	rootCalls int
}

func (e *errorStore) Subscribe(_ context.Context, _ func(model.Snapshot), onError func(error)) (func(), error) {
	onError(errors.New("permission denied"))
	return func() {}, nil
}

func (e *errorStore) WriteRoot(context.Context, model.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rootCalls++
	return nil
}

func newStartedController(t *testing.T) (*Controller, *store.BucketStore) {
	t.Helper()
	st := store.NewMemory(zap.NewNop())
	c := NewController(st, zap.NewNop(), metrics.New())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	t.Cleanup(func() {
		c.Stop()
		_ = st.Close()
	})
	return c, st
}

func TestStart_SeedsEmptyStore(t *testing.T) {
	c, st := newStartedController(t)

	if !c.Loaded() {
		t.Fatal("空库写入默认数据后应已加载")
	}
	snap := c.Snapshot()
	if len(snap.Schools) != 61 {
		t.Errorf("期望 61 所学校，实际 %d", len(snap.Schools))
	}
	if len(snap.DynamicFields) != 15 {
		t.Errorf("期望 15 个字段，实际 %d", len(snap.DynamicFields))
	}
	if len(snap.Users) != 4 || len(snap.SchoolYears) != 4 {
		t.Errorf("默认用户/学年数量不正确: %d/%d", len(snap.Users), len(snap.SchoolYears))
	}
	if y, ok := snap.CurrentYear(); !ok || y.Year != "2024-2025" {
		t.Errorf("当前学年应为 2024-2025，实际 %+v", y)
	}

	stored, _ := st.ReadAll(context.Background())
	if len(stored.Schools) != 61 {
		t.Error("默认数据应写入存储")
	}
}

func TestStart_DoesNotSeedNonEmptyStore(t *testing.T) {
	st := store.NewMemory(zap.NewNop())
	defer st.Close()
	ctx := context.Background()
	_ = st.WriteRoot(ctx, model.Snapshot{Schools: []model.School{{ID: 7, Name: "Riêng"}}})

	c := NewController(st, zap.NewNop(), nil)
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	defer c.Stop()

	snap := c.Snapshot()
	if len(snap.Schools) != 1 || snap.Schools[0].ID != 7 {
		t.Errorf("非空库不应写入默认数据: %+v", snap.Schools)
	}
	if snap.Users == nil || len(snap.Users) != 0 {
		t.Error("缺失的集合应为空切片")
	}
}

func TestUpdate_WritesThroughAndReflectsOnSnapshot(t *testing.T) {
	c, _ := newStartedController(t)
	ctx := context.Background()

	var changes int
	c.OnChange(func(model.Snapshot) { changes++ })

	schools := c.Snapshot().Schools[:2]
	if err := c.UpdateSchools(ctx, schools); err != nil {
		t.Fatalf("UpdateSchools 失败: %v", err)
	}

	if got := len(c.Snapshot().Schools); got != 2 {
		t.Errorf("写入后本地状态应随推送更新，期望 2，实际 %d", got)
	}
	if changes != 1 {
		t.Errorf("期望 OnChange 调用 1 次，实际 %d", changes)
	}
}

func TestUpdate_WriteErrorLeavesStateUnchanged(t *testing.T) {
	mem := store.NewMemory(zap.NewNop())
	defer mem.Close()
	fs := &failingStore{Store: mem, err: errors.New("network down")}

	c := NewController(fs, zap.NewNop(), nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	defer c.Stop()

	before := c.Snapshot()
	err := c.UpdateSchools(context.Background(), nil)
	if !errors.Is(err, pkgerrors.ErrStoreWrite) {
		t.Fatalf("期望 ErrStoreWrite，实际: %v", err)
	}
	if len(c.Snapshot().Schools) != len(before.Schools) {
		t.Error("写入失败不应改变本地状态")
	}
}

func TestSubscriptionError_NotifiesAndSeedsWhenNeverLoaded(t *testing.T) {
	es := &errorStore{}
	c := NewController(es, zap.NewNop(), nil)

	var got []Notification
	c.OnNotify(func(n Notification) { got = append(got, n) })

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	if len(got) != 1 || got[0].Level != LevelError {
		t.Errorf("期望一条错误通知，实际 %+v", got)
	}
	if es.rootCalls != 1 {
		t.Errorf("从未加载时应尝试写入默认数据，实际调用 %d 次", es.rootCalls)
	}
	if c.Loaded() {
		t.Error("写入默认数据不应直接设置本地状态")
	}
}

func TestCurrent_NotLoaded(t *testing.T) {
	c := NewController(&errorStore{}, zap.NewNop(), nil)
	if _, err := c.Current(); !errors.Is(err, pkgerrors.ErrStateNotLoaded) {
		t.Errorf("期望 ErrStateNotLoaded，实际: %v", err)
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	c, _ := newStartedController(t)

	s := c.Snapshot()
	s.Users[1].AssignedSchoolIDs[0] = 999
	s.Schools[0].Name = "đã sửa"

	again := c.Snapshot()
	if again.Users[1].AssignedSchoolIDs[0] == 999 || again.Schools[0].Name == "đã sửa" {
		t.Error("Snapshot 返回值不应共享内部状态")
	}
}

func TestReset_RestoresDefaults(t *testing.T) {
	c, _ := newStartedController(t)
	ctx := context.Background()

	_ = c.UpdateSchools(ctx, []model.School{})
	_ = c.UpdateHealthRecords(ctx, []model.HealthRecord{model.NewHealthRecord(1, 3)})

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset 失败: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Schools) != 61 || len(snap.HealthRecords) != 0 {
		t.Errorf("重置后应恢复默认数据: schools=%d records=%d", len(snap.Schools), len(snap.HealthRecords))
	}
}

func TestHandleSnapshot_DropsStaleRevision(t *testing.T) {
	c := NewController(&errorStore{}, zap.NewNop(), nil)

	c.handleSnapshot(model.Snapshot{Schools: []model.School{{ID: 1}, {ID: 2}}, Revision: 5})
	c.handleSnapshot(model.Snapshot{Schools: []model.School{{ID: 1}}, Revision: 4})

	if got := len(c.Snapshot().Schools); got != 2 {
		t.Errorf("过期快照应被丢弃，期望 2，实际 %d", got)
	}
}

func TestDefaultSnapshot_ReturnsFreshCopy(t *testing.T) {
	a := DefaultSnapshot()
	a.Users[1].AssignedSchoolIDs[0] = 100
	b := DefaultSnapshot()
	if b.Users[1].AssignedSchoolIDs[0] != 1 {
		t.Error("DefaultSnapshot 每次应返回独立副本")
	}
}
