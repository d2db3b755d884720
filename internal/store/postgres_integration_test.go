//go:build integration

package store

import (
	"context"
	"fmt"
	"os"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 需要本地 PostgreSQL：go test -tags integration ./internal/store/...
func TestPostgresStore_Contract(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=ytth password=ytth_password dbname=ytth_test sslmode=disable TimeZone=Asia/Ho_Chi_Minh"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Skipf("无法连接测试数据库: %v", err)
	}
	if err := db.AutoMigrate(&collectionRow{}); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}
	if err := db.Exec("DELETE FROM collections").Error; err != nil {
		t.Fatalf("清理 collections 失败: %v", err)
	}

	s, err := NewPostgres(context.Background(), db, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewPostgres 失败: %v", err)
	}
	defer func() {
		_ = s.Close()
		if err := db.Exec("DELETE FROM collections").Error; err != nil {
			fmt.Fprintf(os.Stderr, "清理失败: %v\n", err)
		}
	}()

	runStoreContract(t, s)
}
