package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"school-health/config"
)

const (
	s3Scheme      = "s3://"
	keyPrefix     = "attachments/"
	presignExpiry = 15 * time.Minute
)

// S3Store 将附件写入 S3 兼容存储（AWS S3 / MinIO）
type S3Store struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	maxBytes int64
}

// NewS3Store 根据配置创建 S3 存储
// 未配置 AccessKeyID 时使用默认凭证链
func NewS3Store(ctx context.Context, cfg *config.S3Config, maxBytes int64, optFns ...func(*s3.Options)) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket 未配置")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}

	opts := []func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}
	opts = append(opts, optFns...)
	client := s3.NewFromConfig(awsCfg, opts...)

	return &S3Store{
		client:   client,
		presign:  s3.NewPresignClient(client),
		bucket:   cfg.Bucket,
		maxBytes: maxBytes,
	}, nil
}

func (s *S3Store) Driver() string { return DriverS3 }

// Put 对象键为 attachments/<uuid>/<文件名>，同名文件不会互相覆盖
func (s *S3Store) Put(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	if err := checkSize(data, s.maxBytes); err != nil {
		return "", err
	}
	key := keyPrefix + uuid.NewString() + "/" + sanitizeFileName(fileName)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("上传附件失败: %w", err)
	}
	return s3Scheme + s.bucket + "/" + key, nil
}

// Open 对 s3:// 引用生成预签名下载地址；历史数据中的 data URL 直接解码
func (s *S3Store) Open(ctx context.Context, ref string) (*Object, error) {
	if strings.HasPrefix(ref, "data:") {
		ct, data, err := DecodeDataURL(ref)
		if err != nil {
			return nil, err
		}
		return &Object{ContentType: ct, Data: data}, nil
	}

	bucket, key, err := parseS3Ref(ref)
	if err != nil {
		return nil, err
	}
	if bucket != s.bucket {
		return nil, ErrUnsupportedRef
	}

	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) { po.Expires = presignExpiry })
	if err != nil {
		return nil, fmt.Errorf("生成下载地址失败: %w", err)
	}
	return &Object{URL: out.URL}, nil
}

func parseS3Ref(ref string) (string, string, error) {
	if !strings.HasPrefix(ref, s3Scheme) {
		return "", "", ErrInvalidRef
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", ErrInvalidRef
	}
	return bucket, key, nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
