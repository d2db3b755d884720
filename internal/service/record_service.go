package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"school-health/internal/model"
	"school-health/internal/session"
	"school-health/pkg/blob"
)

// SavedMessage 保存成功提示
const SavedMessage = "Đã lưu thông tin thành công!"

var ErrRecordAccess = errors.New("bạn không có quyền chỉnh sửa hồ sơ của trường này")

// RecordRef 当前用户正在操作的档案
type RecordRef struct {
	UserID   int
	SchoolID int
	YearID   int
}

// Download 附件下载：内联内容直接返回，对象存储返回预签名地址
type Download struct {
	Attachment model.FileAttachment
	Object     *blob.Object
}

// RecordService 健康档案编辑业务接口
type RecordService interface {
	View(ctx context.Context, ref RecordRef) (*session.View, error)
	BeginEdit(ctx context.Context, ref RecordRef) (*session.View, error)
	SetField(ctx context.Context, ref RecordRef, name string, value any) (*session.View, error)
	Attach(ctx context.Context, ref RecordRef, fieldName, fileName, contentType string, r io.Reader) (*model.FileAttachment, *session.View, error)
	RemoveAttachment(ctx context.Context, ref RecordRef, id string) (*session.View, error)
	Download(ctx context.Context, ref RecordRef, id string) (*Download, error)
	Save(ctx context.Context, ref RecordRef) (*session.View, error)
	Cancel(ctx context.Context, ref RecordRef) (*session.View, error)
}

type recordService struct {
	state    State
	sessions *session.Manager
	blobs    blob.Store
	maxBytes int64
	logger   *zap.Logger
}

// NewRecordService maxBytes<=0 表示不限制上传大小
func NewRecordService(st State, sessions *session.Manager, blobs blob.Store, maxBytes int64, logger *zap.Logger) RecordService {
	return &recordService{state: st, sessions: sessions, blobs: blobs, maxBytes: maxBytes, logger: logger}
}

// open 校验访问范围后取得会话
func (s *recordService) open(ref RecordRef) (*session.Session, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	caller, err := callerOf(snap, ref.UserID)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.FindSchool(ref.SchoolID); !ok {
		return nil, ErrSchoolNotFound
	}
	if !caller.CanAccess(ref.SchoolID) {
		return nil, ErrRecordAccess
	}
	return s.sessions.Get(ref.UserID, ref.SchoolID, ref.YearID)
}

// ────────────────────── 查看 / 编辑 ──────────────────────

func (s *recordService) View(ctx context.Context, ref RecordRef) (*session.View, error) {
	sess, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	v := sess.View()
	return &v, nil
}

func (s *recordService) BeginEdit(ctx context.Context, ref RecordRef) (*session.View, error) {
	sess, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	v, err := sess.BeginEdit()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *recordService) SetField(ctx context.Context, ref RecordRef, name string, value any) (*session.View, error) {
	sess, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	v, err := sess.SetField(name, value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ────────────────────── 附件 ──────────────────────

func (s *recordService) Attach(ctx context.Context, ref RecordRef, fieldName, fileName, contentType string, r io.Reader) (*model.FileAttachment, *session.View, error) {
	sess, err := s.open(ref)
	if err != nil {
		return nil, nil, err
	}
	if s.maxBytes > 0 {
		// 多读一个字节，超限由存储层识别
		r = io.LimitReader(r, s.maxBytes+1)
	}
	att, v, err := sess.Attach(ctx, fieldName, fileName, contentType, r)
	if err != nil {
		if !errors.Is(err, blob.ErrTooLarge) && !errors.Is(err, blob.ErrEmptyContent) && !errors.Is(err, session.ErrUnknownField) {
			s.logger.Error("保存附件失败",
				zap.Int("school_id", ref.SchoolID),
				zap.Int("year_id", ref.YearID),
				zap.String("driver", s.blobs.Driver()),
				zap.Error(err),
			)
		}
		return nil, nil, err
	}
	return &att, &v, nil
}

func (s *recordService) RemoveAttachment(ctx context.Context, ref RecordRef, id string) (*session.View, error) {
	sess, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	v, err := sess.RemoveAttachment(id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *recordService) Download(ctx context.Context, ref RecordRef, id string) (*Download, error) {
	sess, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	att, err := sess.Attachment(id)
	if err != nil {
		return nil, err
	}
	obj, err := s.blobs.Open(ctx, att.FileData)
	if err != nil {
		s.logger.Warn("解析附件引用失败", zap.String("attachment_id", id), zap.Error(err))
		return nil, err
	}
	return &Download{Attachment: att, Object: obj}, nil
}

// ────────────────────── 保存 / 取消 ──────────────────────

func (s *recordService) Save(ctx context.Context, ref RecordRef) (*session.View, error) {
	sess, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	v, err := sess.Save(ctx)
	if err != nil {
		s.logger.Warn("保存健康档案失败",
			zap.Int("user_id", ref.UserID),
			zap.Int("school_id", ref.SchoolID),
			zap.Int("year_id", ref.YearID),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("保存健康档案",
		zap.Int("user_id", ref.UserID),
		zap.Int("school_id", ref.SchoolID),
		zap.Int("year_id", ref.YearID),
		zap.Bool("complete", v.Status.Complete()),
	)
	return &v, nil
}

func (s *recordService) Cancel(ctx context.Context, ref RecordRef) (*session.View, error) {
	sess, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	v, err := sess.Cancel()
	if err != nil {
		return nil, err
	}
	return &v, nil
}
