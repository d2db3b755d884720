// Package session 单条健康档案的编辑会话
//
// 状态机：Viewing → Editing → Viewing。编辑期间修改只作用于 scratch，
// 保存时按复合主键整体替换到 healthRecords 集合并写回存储。
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"school-health/internal/compliance"
	"school-health/internal/model"
	"school-health/pkg/blob"
)

var (
	ErrSchoolNotFound     = errors.New("không tìm thấy trường học")
	ErrYearNotFound       = errors.New("không tìm thấy năm học")
	ErrYearLocked         = errors.New("năm học đã bị khóa, không thể chỉnh sửa")
	ErrNotEditing         = errors.New("hồ sơ không ở chế độ chỉnh sửa")
	ErrUnknownField       = errors.New("trường thông tin không tồn tại")
	ErrAttachmentNotFound = errors.New("không tìm thấy tệp đính kèm")
	ErrSaving             = errors.New("hồ sơ đang được lưu, vui lòng đợi")
)

// State 会话状态
type State string

const (
	Viewing State = "viewing"
	Editing State = "editing"
)

// Backend 会话依赖的状态读写，由 *state.Controller 实现
type Backend interface {
	Current() (model.Snapshot, error)
	UpdateHealthRecords(ctx context.Context, records []model.HealthRecord) error
}

// View 会话的只读视图
type View struct {
	SchoolID     int                  `json:"schoolId"`
	SchoolYearID int                  `json:"schoolYearId"`
	State        State                `json:"state"`
	Locked       bool                 `json:"locked"`
	Persisted    bool                 `json:"persisted"`
	Record       model.HealthRecord   `json:"record"`
	Status       compliance.Status    `json:"status"`
	Fields       []model.DynamicField `json:"fields"`
}

// Session 一个 (school, year) 的编辑会话
type Session struct {
	backend     Backend
	blobs       blob.Store
	enforceLock bool

	mu        sync.Mutex
	schoolID  int
	yearID    int
	state     State
	locked    bool
	persisted bool
	saving    bool
	fields    []model.DynamicField
	scratch   model.HealthRecord
	original  model.HealthRecord
	status    compliance.Status
}

// Open 进入会话：查找记录，不存在时构造空记录；scratch 与 original 各为一份深拷贝
func Open(backend Backend, blobs blob.Store, enforceLock bool, schoolID, yearID int) (*Session, error) {
	snap, err := backend.Current()
	if err != nil {
		return nil, err
	}
	s := &Session{
		backend:     backend,
		blobs:       blobs,
		enforceLock: enforceLock,
		schoolID:    schoolID,
		yearID:      yearID,
		state:       Viewing,
	}
	if err := s.load(snap); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(snap model.Snapshot) error {
	if _, ok := snap.FindSchool(s.schoolID); !ok {
		return ErrSchoolNotFound
	}
	year, ok := snap.FindYear(s.yearID)
	if !ok {
		return ErrYearNotFound
	}

	rec, found := snap.FindRecord(s.schoolID, s.yearID)
	if !found {
		rec = model.NewHealthRecord(s.schoolID, s.yearID)
	}
	rec = model.Snapshot{HealthRecords: []model.HealthRecord{rec}}.Normalize().HealthRecords[0]

	s.locked = year.IsLocked
	s.persisted = found
	s.fields = snap.DynamicFields
	s.scratch = rec.Clone()
	s.original = rec.Clone()
	s.recompute()
	return nil
}

func (s *Session) recompute() {
	s.status = compliance.Evaluate(s.scratch, s.fields)
}

// View 当前视图（深拷贝）
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	fields := make([]model.DynamicField, len(s.fields))
	for i, f := range s.fields {
		fields[i] = f.Clone()
	}
	return View{
		SchoolID:     s.schoolID,
		SchoolYearID: s.yearID,
		State:        s.state,
		Locked:       s.locked,
		Persisted:    s.persisted,
		Record:       s.scratch.Clone(),
		Status:       s.status,
		Fields:       fields,
	}
}

func (s *Session) isSaving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Refresh 查看状态下用最新快照重新加载；编辑中不受影响
func (s *Session) Refresh(snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Editing {
		return nil
	}
	return s.load(snap)
}

// ────────────────────── 编辑 ──────────────────────

// BeginEdit 锁定学年不允许进入编辑
func (s *Session) BeginEdit() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return View{}, ErrYearLocked
	}
	if s.state != Editing {
		s.original = s.scratch.Clone()
		s.state = Editing
	}
	return s.viewLocked(), nil
}

// SetField 按字段类型转换后写入 scratch；转换结果为 nil 时清空该字段
func (s *Session) SetField(name string, raw any) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditable(); err != nil {
		return View{}, err
	}

	field, ok := s.findField(name)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	v, err := field.Kind().Coerce(raw)
	if err != nil {
		return View{}, err
	}
	if v == nil {
		delete(s.scratch.DynamicData, name)
	} else {
		s.scratch.DynamicData[name] = v
	}
	s.recompute()
	return s.viewLocked(), nil
}

func (s *Session) checkEditable() error {
	if s.state != Editing {
		return ErrNotEditing
	}
	if s.saving {
		return ErrSaving
	}
	return nil
}

func (s *Session) findField(name string) (model.DynamicField, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return model.DynamicField{}, false
}

// Attach 读取文件内容生成附件引用并追加；同一字段可以有多个附件
func (s *Session) Attach(ctx context.Context, fieldName, fileName, contentType string, r io.Reader) (model.FileAttachment, View, error) {
	s.mu.Lock()
	if err := s.checkEditable(); err != nil {
		s.mu.Unlock()
		return model.FileAttachment{}, View{}, err
	}
	if _, ok := s.findField(fieldName); !ok && fieldName != model.CareContractFileKey && fieldName != model.CheckContractFileKey {
		s.mu.Unlock()
		return model.FileAttachment{}, View{}, fmt.Errorf("%w: %s", ErrUnknownField, fieldName)
	}
	s.mu.Unlock()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return model.FileAttachment{}, View{}, fmt.Errorf("đọc tệp thất bại: %w", err)
	}
	ref, err := s.blobs.Put(ctx, fileName, contentType, buf.Bytes())
	if err != nil {
		return model.FileAttachment{}, View{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return model.FileAttachment{}, View{}, err
	}
	att := model.FileAttachment{ID: id.String(), FileName: fileName, FileData: ref, FieldName: fieldName}

	s.mu.Lock()
	defer s.mu.Unlock()
	// 读取文件期间会话可能已被取消或保存
	if err := s.checkEditable(); err != nil {
		return model.FileAttachment{}, View{}, err
	}
	s.scratch.Attachments = append(s.scratch.Attachments, att)
	s.recompute()
	return att, s.viewLocked(), nil
}

// RemoveAttachment 按 id 移除附件
func (s *Session) RemoveAttachment(id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditable(); err != nil {
		return View{}, err
	}

	kept := make([]model.FileAttachment, 0, len(s.scratch.Attachments))
	for _, a := range s.scratch.Attachments {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(s.scratch.Attachments) {
		return View{}, ErrAttachmentNotFound
	}
	s.scratch.Attachments = kept
	s.recompute()
	return s.viewLocked(), nil
}

// Attachment 查找 scratch 中的附件
func (s *Session) Attachment(id string) (model.FileAttachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.scratch.Attachments {
		if a.ID == id {
			return a, nil
		}
	}
	return model.FileAttachment{}, ErrAttachmentNotFound
}

// ────────────────────── 保存 / 取消 ──────────────────────

// Save 按复合主键 upsert 后写回；失败时保持编辑状态，scratch 不变
// 未做任何修改时不写存储。写入期间不持有会话锁，存储推送会同步回调到 Refresh
func (s *Session) Save(ctx context.Context) (View, error) {
	s.mu.Lock()
	if err := s.checkEditable(); err != nil {
		s.mu.Unlock()
		return View{}, err
	}

	snap, err := s.backend.Current()
	if err != nil {
		s.mu.Unlock()
		return View{}, err
	}
	if s.enforceLock {
		year, ok := snap.FindYear(s.yearID)
		if !ok {
			s.mu.Unlock()
			return View{}, ErrYearNotFound
		}
		if year.IsLocked {
			s.mu.Unlock()
			return View{}, ErrYearLocked
		}
	}

	if reflect.DeepEqual(s.scratch, s.original) {
		s.state = Viewing
		defer s.mu.Unlock()
		return s.viewLocked(), nil
	}

	records := Upsert(snap.HealthRecords, s.scratch.Clone())
	s.saving = true
	s.mu.Unlock()

	err = s.backend.UpdateHealthRecords(ctx, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return View{}, err
	}
	s.persisted = true
	s.state = Viewing
	return s.viewLocked(), nil
}

// Cancel 丢弃 scratch，恢复进入编辑前的内容；保存写入期间返回 ErrSaving
func (s *Session) Cancel() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return View{}, ErrSaving
	}
	s.scratch = s.original.Clone()
	s.state = Viewing
	s.recompute()
	return s.viewLocked(), nil
}

// Upsert 按复合主键替换或追加，不修改入参
func Upsert(records []model.HealthRecord, rec model.HealthRecord) []model.HealthRecord {
	out := make([]model.HealthRecord, 0, len(records)+1)
	replaced := false
	for _, r := range records {
		if r.SchoolID == rec.SchoolID && r.SchoolYearID == rec.SchoolYearID {
			if !replaced {
				out = append(out, rec)
				replaced = true
			}
			continue
		}
		out = append(out, r)
	}
	if !replaced {
		out = append(out, rec)
	}
	return out
}
