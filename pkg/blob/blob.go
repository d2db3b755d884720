// Package blob 附件内容存储
//
// 记录上的 fileData 字段保存的是一个引用：inline 驱动下为 base64 data URL，
// s3 驱动下为 s3://bucket/key。两种引用可以共存，Open 根据前缀分派。
package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyContent   = errors.New("tệp đính kèm rỗng")
	ErrTooLarge       = errors.New("tệp đính kèm vượt quá dung lượng cho phép")
	ErrInvalidRef     = errors.New("tham chiếu tệp không hợp lệ")
	ErrUnsupportedRef = errors.New("không hỗ trợ loại tham chiếu tệp này")
)

const (
	DriverInline = "inline"
	DriverS3     = "s3"
)

// Object Open 的解析结果
// 内联内容时 Data 非空；对象存储时 URL 为预签名下载地址
type Object struct {
	ContentType string
	Data        []byte
	URL         string
}

// Store 附件存储接口
type Store interface {
	Driver() string
	// Put 保存附件内容，返回写入 fileData 的引用
	Put(ctx context.Context, fileName, contentType string, data []byte) (string, error)
	// Open 解析 fileData 引用
	Open(ctx context.Context, ref string) (*Object, error)
}

// ── 内联驱动 ──

// InlineStore 把内容编码为 data URL 直接保存在记录里
type InlineStore struct {
	maxBytes int64
}

// NewInlineStore maxBytes<=0 表示不限制
func NewInlineStore(maxBytes int64) *InlineStore {
	return &InlineStore{maxBytes: maxBytes}
}

func (s *InlineStore) Driver() string { return DriverInline }

func (s *InlineStore) Put(_ context.Context, _ string, contentType string, data []byte) (string, error) {
	if err := checkSize(data, s.maxBytes); err != nil {
		return "", err
	}
	return EncodeDataURL(contentType, data), nil
}

func (s *InlineStore) Open(_ context.Context, ref string) (*Object, error) {
	ct, data, err := DecodeDataURL(ref)
	if err != nil {
		return nil, err
	}
	return &Object{ContentType: ct, Data: data}, nil
}

// EncodeDataURL 生成 data:<type>;base64,<payload>
func EncodeDataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL 解析 data URL，支持 base64 与未编码两种形式
func DecodeDataURL(ref string) (string, []byte, error) {
	if !strings.HasPrefix(ref, "data:") {
		return "", nil, ErrInvalidRef
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return "", nil, ErrInvalidRef
	}

	isBase64 := false
	if strings.HasSuffix(meta, ";base64") {
		isBase64 = true
		meta = strings.TrimSuffix(meta, ";base64")
	}
	contentType := meta
	if contentType == "" {
		contentType = "text/plain;charset=US-ASCII"
	}

	if !isBase64 {
		return contentType, []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}
	return contentType, data, nil
}

func checkSize(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return ErrEmptyContent
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return ErrTooLarge
	}
	return nil
}
