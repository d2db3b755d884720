package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"school-health/internal/dto"
	"school-health/internal/model"
	"school-health/internal/session"
)

// ── 学校模块业务错误 ──

var (
	ErrSchoolRequired = errors.New("Vui lòng điền đầy đủ Tên trường và Địa điểm.")
	ErrSchoolNotFound = session.ErrSchoolNotFound
	ErrSchoolLevel    = errors.New("cấp học không hợp lệ")
	ErrSchoolAccess   = errors.New("bạn không có quyền truy cập trường này")
)

// SchoolService 学校业务接口
type SchoolService interface {
	List(ctx context.Context, userID int, req *dto.SchoolListRequest) ([]model.School, error)
	Get(ctx context.Context, userID, id int) (*model.School, error)
	Create(ctx context.Context, req *dto.SchoolRequest) (*model.School, error)
	Update(ctx context.Context, id int, req *dto.SchoolRequest) (*model.School, error)
	Delete(ctx context.Context, id int) error
}

type schoolService struct {
	state  State
	logger *zap.Logger
}

// NewSchoolService 创建 SchoolService 实例
func NewSchoolService(st State, logger *zap.Logger) SchoolService {
	return &schoolService{state: st, logger: logger}
}

// ────────────────────── List ──────────────────────

// List 当前用户可见的学校，q 对名称与地点做不区分大小写的子串匹配
func (s *schoolService) List(ctx context.Context, userID int, req *dto.SchoolListRequest) ([]model.School, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	caller, err := callerOf(snap, userID)
	if err != nil {
		return nil, err
	}

	schools := snap.VisibleSchools(caller)
	q := strings.ToLower(strings.TrimSpace(req.Q))
	if q == "" {
		return schools, nil
	}
	out := make([]model.School, 0, len(schools))
	for _, sc := range schools {
		if strings.Contains(strings.ToLower(sc.Name), q) || strings.Contains(strings.ToLower(sc.Location), q) {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *schoolService) Get(ctx context.Context, userID, id int) (*model.School, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	caller, err := callerOf(snap, userID)
	if err != nil {
		return nil, err
	}
	sc, ok := snap.FindSchool(id)
	if !ok {
		return nil, ErrSchoolNotFound
	}
	if !caller.CanAccess(id) {
		return nil, ErrSchoolAccess
	}
	return &sc, nil
}

// ────────────────────── Create / Update ──────────────────────

func (s *schoolService) Create(ctx context.Context, req *dto.SchoolRequest) (*model.School, error) {
	level, err := validateSchool(req)
	if err != nil {
		return nil, err
	}
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}

	sc := model.School{
		ID:       nextID(snap.Schools, func(x model.School) int { return x.ID }),
		Name:     strings.TrimSpace(req.Name),
		Level:    level,
		Location: strings.TrimSpace(req.Location),
	}
	if err := s.state.UpdateSchools(ctx, append(snap.Schools, sc)); err != nil {
		s.logger.Error("新增学校失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("新增学校", zap.Int("school_id", sc.ID), zap.String("name", sc.Name))
	return &sc, nil
}

func (s *schoolService) Update(ctx context.Context, id int, req *dto.SchoolRequest) (*model.School, error) {
	level, err := validateSchool(req)
	if err != nil {
		return nil, err
	}
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, sc := range snap.Schools {
		if sc.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrSchoolNotFound
	}
	snap.Schools[idx].Name = strings.TrimSpace(req.Name)
	snap.Schools[idx].Level = level
	snap.Schools[idx].Location = strings.TrimSpace(req.Location)

	if err := s.state.UpdateSchools(ctx, snap.Schools); err != nil {
		s.logger.Error("更新学校失败", zap.Int("school_id", id), zap.Error(err))
		return nil, err
	}
	updated := snap.Schools[idx]
	return &updated, nil
}

func validateSchool(req *dto.SchoolRequest) (model.SchoolLevel, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Location) == "" {
		return "", ErrSchoolRequired
	}
	level := model.SchoolLevel(req.Level)
	if level == "" {
		return model.DefaultSchoolLevel, nil
	}
	if !level.Valid() {
		return "", ErrSchoolLevel
	}
	return level, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除学校；该校的健康档案保留，不级联删除
func (s *schoolService) Delete(ctx context.Context, id int) error {
	snap, err := s.state.Current()
	if err != nil {
		return err
	}
	kept := make([]model.School, 0, len(snap.Schools))
	for _, sc := range snap.Schools {
		if sc.ID != id {
			kept = append(kept, sc)
		}
	}
	if len(kept) == len(snap.Schools) {
		return ErrSchoolNotFound
	}
	if err := s.state.UpdateSchools(ctx, kept); err != nil {
		s.logger.Error("删除学校失败", zap.Int("school_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("删除学校", zap.Int("school_id", id))
	return nil
}
