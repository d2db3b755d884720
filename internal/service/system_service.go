package service

import (
	"context"

	"go.uber.org/zap"
)

// SystemService 系统维护业务接口
type SystemService interface {
	// Reset 用默认数据覆盖整个存储
	Reset(ctx context.Context, userID int) error
}

type systemService struct {
	state  State
	logger *zap.Logger
}

// NewSystemService 创建 SystemService 实例
func NewSystemService(st State, logger *zap.Logger) SystemService {
	return &systemService{state: st, logger: logger}
}

func (s *systemService) Reset(ctx context.Context, userID int) error {
	if err := s.state.Reset(ctx); err != nil {
		s.logger.Error("重置数据失败", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	s.logger.Warn("全部数据已重置为默认值", zap.Int("user_id", userID))
	return nil
}
