package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"school-health/internal/dto"
	"school-health/internal/model"
)

// ── 动态字段模块业务错误 ──

var (
	ErrFieldLabelRequired = errors.New("Vui lòng nhập nhãn cho trường thông tin.")
	ErrFieldDuplicate     = errors.New("Một trường với tên tương tự đã tồn tại trong tab này.")
	ErrFieldNameEmpty     = errors.New("nhãn phải chứa ít nhất một chữ cái hoặc chữ số")
	ErrFieldNotFound      = errors.New("không tìm thấy trường thông tin")
	ErrFieldTab           = errors.New("tab không hợp lệ")
	ErrFieldType          = errors.New("kiểu dữ liệu không hợp lệ")
)

// FieldService 动态字段业务接口
type FieldService interface {
	List(ctx context.Context, req *dto.FieldListRequest) ([]model.DynamicField, error)
	Create(ctx context.Context, req *dto.CreateFieldRequest) (*model.DynamicField, error)
	Update(ctx context.Context, id string, req *dto.UpdateFieldRequest) (*model.DynamicField, error)
	Delete(ctx context.Context, id string) error
}

type fieldService struct {
	state  State
	logger *zap.Logger
	now    func() time.Time
}

// NewFieldService 创建 FieldService 实例
func NewFieldService(st State, logger *zap.Logger) FieldService {
	return &fieldService{state: st, logger: logger, now: time.Now}
}

func (s *fieldService) List(ctx context.Context, req *dto.FieldListRequest) ([]model.DynamicField, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	if req.Tab == "" {
		return snap.DynamicFields, nil
	}
	return snap.FieldsByTab(model.Tab(req.Tab)), nil
}

// ────────────────────── Create ──────────────────────

// Create 新增字段；name 由 label 生成，同一 tab 内唯一
func (s *fieldService) Create(ctx context.Context, req *dto.CreateFieldRequest) (*model.DynamicField, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, ErrFieldLabelRequired
	}
	tab := model.Tab(req.Tab)
	if !tab.Valid() {
		return nil, ErrFieldTab
	}
	typ := model.FieldType(req.Type)
	if !typ.Valid() {
		return nil, ErrFieldType
	}
	name := FieldSlug(label)
	if name == "" {
		return nil, ErrFieldNameEmpty
	}

	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	for _, f := range snap.DynamicFields {
		if f.Tab == tab && f.Name == name {
			return nil, ErrFieldDuplicate
		}
	}

	field := model.DynamicField{
		ID:    s.newID(snap.DynamicFields),
		Tab:   tab,
		Label: label,
		Name:  name,
		Type:  typ,
	}
	if typ.HasOptions() {
		field.Options = ParseOptions(req.Options)
	}

	if err := s.state.UpdateDynamicFields(ctx, append(snap.DynamicFields, field)); err != nil {
		s.logger.Error("新增字段失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("新增字段", zap.String("field_id", field.ID), zap.String("name", field.Name), zap.String("tab", string(tab)))
	return &field, nil
}

// newID 毫秒时间戳；同一毫秒内重复时顺延
func (s *fieldService) newID(existing []model.DynamicField) string {
	taken := make(map[string]bool, len(existing))
	for _, f := range existing {
		taken[f.ID] = true
	}
	ms := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if !taken[id] {
			return id
		}
		ms++
	}
}

// ────────────────────── Update ──────────────────────

// Update 修改 label / type / options；name 与 tab 保持不变
func (s *fieldService) Update(ctx context.Context, id string, req *dto.UpdateFieldRequest) (*model.DynamicField, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, ErrFieldLabelRequired
	}
	typ := model.FieldType(req.Type)
	if !typ.Valid() {
		return nil, ErrFieldType
	}

	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, f := range snap.DynamicFields {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrFieldNotFound
	}

	f := &snap.DynamicFields[idx]
	f.Label = label
	f.Type = typ
	f.Options = nil
	if typ.HasOptions() {
		f.Options = ParseOptions(req.Options)
	}

	if err := s.state.UpdateDynamicFields(ctx, snap.DynamicFields); err != nil {
		s.logger.Error("更新字段失败", zap.String("field_id", id), zap.Error(err))
		return nil, err
	}
	updated := *f
	return &updated, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除字段定义；档案中已保存的值不清理
func (s *fieldService) Delete(ctx context.Context, id string) error {
	snap, err := s.state.Current()
	if err != nil {
		return err
	}
	kept := make([]model.DynamicField, 0, len(snap.DynamicFields))
	for _, f := range snap.DynamicFields {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(snap.DynamicFields) {
		return ErrFieldNotFound
	}
	if err := s.state.UpdateDynamicFields(ctx, kept); err != nil {
		s.logger.Error("删除字段失败", zap.String("field_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("删除字段", zap.String("field_id", id))
	return nil
}

// ────────────────────── 工具函数 ──────────────────────

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	slugInvalid   = regexp.MustCompile(`[^a-z0-9_]`)
	foldMarks     = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// FieldSlug 由 label 生成字段名："Có bếp ăn tập thể" → "co_bep_an_tap_the"
func FieldSlug(label string) string {
	s := strings.NewReplacer("đ", "d", "Đ", "D").Replace(label)
	if folded, _, err := transform.String(foldMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, "_")
	return slugInvalid.ReplaceAllString(s, "")
}

// ParseOptions 逗号分隔的选项，去除空白与空项
func ParseOptions(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
