package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"school-health/internal/dto"
	"school-health/internal/model"
)

// ── 用户模块业务错误 ──

var (
	ErrUserRequired     = errors.New("Vui lòng điền đầy đủ các trường thông tin bắt buộc.")
	ErrPasswordRequired = errors.New("Vui lòng nhập mật khẩu cho người dùng mới.")
	ErrUsernameTaken    = errors.New("Tên đăng nhập đã tồn tại.")
	ErrDeleteSelf       = errors.New("không thể xóa tài khoản đang đăng nhập")
)

// UserService 用户管理业务接口（仅管理员）
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Get(ctx context.Context, id int) (*dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, id int, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, callerID, id int) error
}

type userService struct {
	state  State
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(st State, logger *zap.Logger) UserService {
	return &userService{state: st, logger: logger}
}

// ────────────────────── 查询 ──────────────────────

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	return dto.ToUserResponses(snap.Users), nil
}

func (s *userService) Get(ctx context.Context, id int) (*dto.UserResponse, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	u, ok := snap.FindUser(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	resp := dto.ToUserResponse(u)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role := model.Role(req.Role)
	username := strings.TrimSpace(req.Username)
	if err := validateUser(req.Name, req.Phone, username, role, req.AssignedSchoolIDs); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}

	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	for _, u := range snap.Users {
		if u.Username == username {
			return nil, ErrUsernameTaken
		}
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := model.User{
		ID:                nextID(snap.Users, func(u model.User) int { return u.ID }),
		Name:              strings.TrimSpace(req.Name),
		Phone:             strings.TrimSpace(req.Phone),
		Username:          username,
		Password:          hash,
		Role:              role,
		AssignedSchoolIDs: assignedFor(role, req.AssignedSchoolIDs),
	}
	if err := s.state.UpdateUsers(ctx, append(snap.Users, user)); err != nil {
		s.logger.Error("新增用户失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("新增用户", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

// Update 编辑用户；用户名不可改，密码留空则保留原密码
func (s *userService) Update(ctx context.Context, id int, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, u := range snap.Users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUserNotFound
	}

	u := &snap.Users[idx]
	role := model.Role(req.Role)
	if err := validateUser(req.Name, req.Phone, u.Username, role, req.AssignedSchoolIDs); err != nil {
		return nil, err
	}

	u.Name = strings.TrimSpace(req.Name)
	u.Phone = strings.TrimSpace(req.Phone)
	u.Role = role
	u.AssignedSchoolIDs = assignedFor(role, req.AssignedSchoolIDs)
	if req.Password != "" {
		hash, err := hashPassword(req.Password)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		u.Password = hash
	}

	if err := s.state.UpdateUsers(ctx, snap.Users); err != nil {
		s.logger.Error("更新用户失败", zap.Int("user_id", id), zap.Error(err))
		return nil, err
	}
	resp := dto.ToUserResponse(*u)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, callerID, id int) error {
	if callerID == id {
		return ErrDeleteSelf
	}
	snap, err := s.state.Current()
	if err != nil {
		return err
	}
	kept := make([]model.User, 0, len(snap.Users))
	for _, u := range snap.Users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(snap.Users) {
		return ErrUserNotFound
	}
	if err := s.state.UpdateUsers(ctx, kept); err != nil {
		s.logger.Error("删除用户失败", zap.Int("user_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("删除用户", zap.Int("user_id", id))
	return nil
}

// validateUser 姓名、电话、用户名必填；普通用户至少分配一所学校
func validateUser(name, phone, username string, role model.Role, schoolIDs []int) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" || username == "" {
		return ErrUserRequired
	}
	if role == model.RoleUser && len(schoolIDs) == 0 {
		return ErrUserRequired
	}
	return nil
}

// assignedFor 管理员不保留分配学校
func assignedFor(role model.Role, ids []int) []int {
	if role == model.RoleAdmin {
		return []int{}
	}
	return append([]int{}, ids...)
}
