package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school-health/internal/model"
)

// collectionRow collections 表，结构由 pkg/database 的迁移创建
type collectionRow struct {
	Name      string         `gorm:"type:varchar(64);primaryKey"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (collectionRow) TableName() string { return "collections" }

type postgresBackend struct {
	db *gorm.DB
}

// NewPostgres 基于 PostgreSQL 的存储；notifier 为 nil 时不做跨实例广播
func NewPostgres(ctx context.Context, db *gorm.DB, notifier Notifier, logger *zap.Logger) (*BucketStore, error) {
	return newBucketStore(ctx, &postgresBackend{db: db}, notifier, logger)
}

func (b *postgresBackend) load(ctx context.Context) (map[model.Collection][]byte, error) {
	var rows []collectionRow
	if err := b.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("读取 collections 失败: %w", err)
	}
	out := make(map[model.Collection][]byte, len(rows))
	for _, r := range rows {
		out[model.Collection(r.Name)] = []byte(r.Payload)
	}
	return out, nil
}

func (b *postgresBackend) save(ctx context.Context, rows map[model.Collection][]byte) error {
	now := time.Now()
	records := make([]collectionRow, 0, len(rows))
	for name, payload := range rows {
		records = append(records, collectionRow{Name: string(name), Payload: datatypes.JSON(payload), UpdatedAt: now})
	}

	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("写入 collections 失败: %w", err)
	}
	return nil
}

// close 连接由调用方管理
func (b *postgresBackend) close() error { return nil }
