package session

import (
	"context"
	"sync"
	"time"

	"school-health/internal/model"
	"school-health/pkg/blob"
)

// DefaultIdleTTL 会话空闲超过该时长后被清理，与访问令牌默认有效期一致
const DefaultIdleTTL = 12 * time.Hour

type sessionKey struct {
	userID   int
	schoolID int
	yearID   int
}

type entry struct {
	session    *Session
	lastAccess time.Time
}

// Manager 按 (用户, 学校, 学年) 管理会话
type Manager struct {
	backend     Backend
	blobs       blob.Store
	enforceLock bool
	idleTTL     time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*entry
}

func NewManager(backend Backend, blobs blob.Store, enforceLock bool) *Manager {
	return &Manager{
		backend:     backend,
		blobs:       blobs,
		enforceLock: enforceLock,
		idleTTL:     DefaultIdleTTL,
		now:         time.Now,
		sessions:    make(map[sessionKey]*entry),
	}
}

// SetIdleTTL d<=0 关闭空闲清理
func (m *Manager) SetIdleTTL(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleTTL = d
}

// Get 取得会话；已存在且处于查看状态时先用最新数据刷新
func (m *Manager) Get(userID, schoolID, yearID int) (*Session, error) {
	key := sessionKey{userID: userID, schoolID: schoolID, yearID: yearID}

	m.mu.Lock()
	e, ok := m.sessions[key]
	if ok {
		e.lastAccess = m.now()
	}
	m.mu.Unlock()

	if ok {
		snap, err := m.backend.Current()
		if err != nil {
			return nil, err
		}
		if err := e.session.Refresh(snap); err != nil {
			m.mu.Lock()
			delete(m.sessions, key)
			m.mu.Unlock()
			return nil, err
		}
		return e.session, nil
	}

	s, err := Open(m.backend, m.blobs, m.enforceLock, schoolID, yearID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	if existing, ok := m.sessions[key]; ok {
		existing.lastAccess = m.now()
		return existing.session, nil
	}
	m.sessions[key] = &entry{session: s, lastAccess: m.now()}
	return s, nil
}

// DropUser 退出登录时丢弃该用户的全部会话
func (m *Manager) DropUser(userID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.sessions {
		if k.userID == userID {
			delete(m.sessions, k)
			n++
		}
	}
	return n
}

// RefreshAll 应用新快照后刷新所有查看中的会话；学校或学年已删除的会话与空闲会话被移除
func (m *Manager) RefreshAll(snap model.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	for k, e := range m.sessions {
		if err := e.session.Refresh(snap); err != nil {
			delete(m.sessions, k)
		}
	}
}

// Sweep 清理空闲会话，返回清理数量
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked()
}

// sweepLocked 正在写入存储的会话不清理
func (m *Manager) sweepLocked() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)
	n := 0
	for k, e := range m.sessions {
		if e.lastAccess.Before(cutoff) && !e.session.isSaving() {
			delete(m.sessions, k)
			n++
		}
	}
	return n
}

// Run 按 interval 定期清理空闲会话，直到 ctx 结束
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Len 当前会话数
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
