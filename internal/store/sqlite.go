package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // 纯 Go SQLite 驱动

	"school-health/internal/model"
)

type sqliteBackend struct {
	db *sql.DB
}

// NewSQLite 单文件 SQLite 存储，适合单机部署
func NewSQLite(ctx context.Context, path string, notifier Notifier, logger *zap.Logger) (*BucketStore, error) {
	if path == "" {
		path = "ytth.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 失败: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("创建 collections 表失败: %w", err)
	}

	s, err := newBucketStore(ctx, &sqliteBackend{db: db}, notifier, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("SQLite 存储已打开", zap.String("path", path))
	return s, nil
}

func (b *sqliteBackend) load(ctx context.Context) (map[model.Collection][]byte, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT name, payload FROM collections`)
	if err != nil {
		return nil, fmt.Errorf("读取 collections 失败: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := map[model.Collection][]byte{}
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out[model.Collection(name)] = payload
	}
	return out, rows.Err()
}

func (b *sqliteBackend) save(ctx context.Context, rows map[model.Collection][]byte) (retErr error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for name, payload := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collections(name, payload, updated_at) VALUES(?,?,?)
			 ON CONFLICT(name) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
			string(name), payload, now,
		); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", name, err)
		}
	}
	return tx.Commit()
}

func (b *sqliteBackend) close() error { return b.db.Close() }
