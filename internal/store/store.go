// Package store 远端数据存储
//
// 存储根是一棵键值树：五个集合各占一个桶，值为整个集合的 JSON。
// 写入以集合为粒度整体替换；每次写入后向全部订阅者推送最新快照。
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"school-health/internal/model"
)

var (
	ErrUnknownCollection = errors.New("未知的集合")
	ErrClosed            = errors.New("存储已关闭")
)

// Store 远端存储契约
type Store interface {
	// Subscribe 订阅存储根；注册后立即推送一次当前快照
	Subscribe(ctx context.Context, onSnapshot func(model.Snapshot), onError func(error)) (func(), error)
	ReadAll(ctx context.Context) (model.Snapshot, error)
	// WriteCollection 整体替换一个集合
	WriteCollection(ctx context.Context, name model.Collection, value any) error
	// WriteRoot 一次写入全部五个集合（仅用于写入默认数据）
	WriteRoot(ctx context.Context, snap model.Snapshot) error
	Close() error
}

// backend 桶的原始读写，由具体驱动实现
type backend interface {
	load(ctx context.Context) (map[model.Collection][]byte, error)
	save(ctx context.Context, rows map[model.Collection][]byte) error
	close() error
}

// decodeSnapshot 将桶内容解码为快照，缺失的桶视为空集合
func decodeSnapshot(rows map[model.Collection][]byte) (model.Snapshot, error) {
	var snap model.Snapshot
	for name, payload := range rows {
		if len(payload) == 0 || string(payload) == "null" {
			continue
		}
		var err error
		switch name {
		case model.CollectionSchoolYears:
			err = json.Unmarshal(payload, &snap.SchoolYears)
		case model.CollectionDynamicFields:
			err = json.Unmarshal(payload, &snap.DynamicFields)
		case model.CollectionSchools:
			err = json.Unmarshal(payload, &snap.Schools)
		case model.CollectionUsers:
			err = json.Unmarshal(payload, &snap.Users)
		case model.CollectionHealthRecords:
			err = json.Unmarshal(payload, &snap.HealthRecords)
		default:
			continue
		}
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("解码集合 %s 失败: %w", name, err)
		}
	}
	return snap.Normalize(), nil
}

// encodeRoot 将快照编码为五个桶
func encodeRoot(snap model.Snapshot) (map[model.Collection][]byte, error) {
	snap = snap.Normalize()
	rows := make(map[model.Collection][]byte, len(model.Collections))
	for _, name := range model.Collections {
		payload, err := json.Marshal(snap.Collection(name))
		if err != nil {
			return nil, fmt.Errorf("编码集合 %s 失败: %w", name, err)
		}
		rows[name] = payload
	}
	return rows, nil
}

func encodeCollection(name model.Collection, value any) (map[model.Collection][]byte, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("编码集合 %s 失败: %w", name, err)
	}
	return map[model.Collection][]byte{name: payload}, nil
}
