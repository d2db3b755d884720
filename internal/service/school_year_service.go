package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"school-health/internal/dto"
	"school-health/internal/model"
	"school-health/internal/session"
)

// ── 学年模块业务错误 ──

var (
	ErrYearFormat    = errors.New("Vui lòng nhập năm học đúng định dạng (VD: 2025-2026).")
	ErrYearDuplicate = errors.New("Năm học này đã tồn tại.")
	ErrYearNotFound  = session.ErrYearNotFound
	ErrNoCurrentYear = errors.New("chưa có năm học hiện tại")
)

var yearPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// ValidYear 学年名称格式 "YYYY-YYYY"
func ValidYear(s string) bool { return yearPattern.MatchString(s) }

// SchoolYearService 学年业务接口
type SchoolYearService interface {
	List(ctx context.Context) ([]model.SchoolYear, error)
	Current(ctx context.Context) (*model.SchoolYear, error)
	Create(ctx context.Context, req *dto.SchoolYearRequest) (*model.SchoolYear, error)
	Rename(ctx context.Context, id int, req *dto.SchoolYearRequest) (*model.SchoolYear, error)
	SetCurrent(ctx context.Context, id int) error
	SetLocked(ctx context.Context, id int, locked bool) error
	Delete(ctx context.Context, id int) error
}

type schoolYearService struct {
	state  State
	logger *zap.Logger
}

// NewSchoolYearService 创建 SchoolYearService 实例
func NewSchoolYearService(st State, logger *zap.Logger) SchoolYearService {
	return &schoolYearService{state: st, logger: logger}
}

// ────────────────────── 查询 ──────────────────────

func (s *schoolYearService) List(ctx context.Context) ([]model.SchoolYear, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	return snap.SchoolYears, nil
}

func (s *schoolYearService) Current(ctx context.Context) (*model.SchoolYear, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	y, ok := snap.CurrentYear()
	if !ok {
		return nil, ErrNoCurrentYear
	}
	return &y, nil
}

// ────────────────────── Create / Rename ──────────────────────

func (s *schoolYearService) Create(ctx context.Context, req *dto.SchoolYearRequest) (*model.SchoolYear, error) {
	name := strings.TrimSpace(req.Year)
	if !ValidYear(name) {
		return nil, ErrYearFormat
	}
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	for _, y := range snap.SchoolYears {
		if y.Year == name {
			return nil, ErrYearDuplicate
		}
	}

	year := model.SchoolYear{
		ID:   nextID(snap.SchoolYears, func(y model.SchoolYear) int { return y.ID }),
		Year: name,
	}
	if err := s.state.UpdateSchoolYears(ctx, append(snap.SchoolYears, year)); err != nil {
		s.logger.Error("新增学年失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("新增学年", zap.Int("year_id", year.ID), zap.String("year", year.Year))
	return &year, nil
}

func (s *schoolYearService) Rename(ctx context.Context, id int, req *dto.SchoolYearRequest) (*model.SchoolYear, error) {
	name := strings.TrimSpace(req.Year)
	if !ValidYear(name) {
		return nil, ErrYearFormat
	}
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, y := range snap.SchoolYears {
		if y.Year == name && y.ID != id {
			return nil, ErrYearDuplicate
		}
		if y.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return nil, ErrYearNotFound
	}
	snap.SchoolYears[idx].Year = name
	if err := s.state.UpdateSchoolYears(ctx, snap.SchoolYears); err != nil {
		s.logger.Error("重命名学年失败", zap.Int("year_id", id), zap.Error(err))
		return nil, err
	}
	renamed := snap.SchoolYears[idx]
	return &renamed, nil
}

// ────────────────────── 标记 ──────────────────────

// SetCurrent 设为当前学年，同一次写入中清除其他学年的标记
func (s *schoolYearService) SetCurrent(ctx context.Context, id int) error {
	snap, err := s.state.Current()
	if err != nil {
		return err
	}
	if _, ok := snap.FindYear(id); !ok {
		return ErrYearNotFound
	}
	for i := range snap.SchoolYears {
		snap.SchoolYears[i].IsCurrent = snap.SchoolYears[i].ID == id
	}
	if err := s.state.UpdateSchoolYears(ctx, snap.SchoolYears); err != nil {
		s.logger.Error("设置当前学年失败", zap.Int("year_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("设置当前学年", zap.Int("year_id", id))
	return nil
}

// SetLocked 锁定 / 解锁学年；锁定后该学年的档案不可编辑
func (s *schoolYearService) SetLocked(ctx context.Context, id int, locked bool) error {
	snap, err := s.state.Current()
	if err != nil {
		return err
	}
	found := false
	for i := range snap.SchoolYears {
		if snap.SchoolYears[i].ID == id {
			snap.SchoolYears[i].IsLocked = locked
			found = true
		}
	}
	if !found {
		return ErrYearNotFound
	}
	if err := s.state.UpdateSchoolYears(ctx, snap.SchoolYears); err != nil {
		s.logger.Error("更新学年锁定状态失败", zap.Int("year_id", id), zap.Bool("locked", locked), zap.Error(err))
		return err
	}
	s.logger.Info("更新学年锁定状态", zap.Int("year_id", id), zap.Bool("locked", locked))
	return nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除学年并级联删除该学年的全部健康档案
// 先写档案再写学年：档案写入失败时学年仍在，不会留下孤立档案
func (s *schoolYearService) Delete(ctx context.Context, id int) error {
	snap, err := s.state.Current()
	if err != nil {
		return err
	}
	years := make([]model.SchoolYear, 0, len(snap.SchoolYears))
	for _, y := range snap.SchoolYears {
		if y.ID != id {
			years = append(years, y)
		}
	}
	if len(years) == len(snap.SchoolYears) {
		return ErrYearNotFound
	}

	records := make([]model.HealthRecord, 0, len(snap.HealthRecords))
	for _, r := range snap.HealthRecords {
		if r.SchoolYearID != id {
			records = append(records, r)
		}
	}
	if removed := len(snap.HealthRecords) - len(records); removed > 0 {
		if err := s.state.UpdateHealthRecords(ctx, records); err != nil {
			s.logger.Error("级联删除健康档案失败", zap.Int("year_id", id), zap.Error(err))
			return err
		}
		s.logger.Info("级联删除健康档案", zap.Int("year_id", id), zap.Int("count", removed))
	}

	if err := s.state.UpdateSchoolYears(ctx, years); err != nil {
		s.logger.Error("删除学年失败", zap.Int("year_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("删除学年", zap.Int("year_id", id))
	return nil
}
