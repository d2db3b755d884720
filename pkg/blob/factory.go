package blob

import (
	"context"
	"fmt"

	"school-health/config"
)

// New 按 blob.driver 创建附件存储
func New(ctx context.Context, cfg *config.BlobConfig) (Store, error) {
	switch cfg.Driver {
	case DriverInline, "":
		return NewInlineStore(cfg.MaxUploadBytes), nil
	case DriverS3:
		return NewS3Store(ctx, &cfg.S3, cfg.MaxUploadBytes)
	default:
		return nil, fmt.Errorf("未知的 blob.driver: %s", cfg.Driver)
	}
}
