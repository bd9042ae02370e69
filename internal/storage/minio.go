package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"cv-organizer-go/internal/config"
)

// MinIOPublisher 以MinIO对象存储作为资产托管后端的发布器
// 上传头像对象后返回一个长效的预签名GET URL
type MinIOPublisher struct {
	client *minio.Client
	cfg    config.MinIOPublisherConfig
	logger zerolog.Logger
}

// NewMinIOPublisher 创建MinIO发布器并确保存储桶存在
func NewMinIOPublisher(cfg config.MinIOPublisherConfig, logger zerolog.Logger) (*MinIOPublisher, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("MinIO配置缺少endpoint")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	p := &MinIOPublisher{client: client, cfg: cfg, logger: logger}
	if err := p.ensureBucketExists(context.Background()); err != nil {
		return nil, err
	}

	logger.Debug().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Msg("MinIO发布器初始化完成")
	return p, nil
}

// ensureBucketExists 确保头像存储桶存在，不存在则创建
func (p *MinIOPublisher) ensureBucketExists(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", p.cfg.Bucket, err)
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.cfg.Bucket, minio.MakeBucketOptions{Region: p.cfg.Location}); err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", p.cfg.Bucket, err)
		}
	}
	return nil
}

// PublishImage 上传本地图片文件并返回预签名URL
// 与ImageKit后端同语义：任何失败折叠为 ErrAssetUploadFailed，由调用方降级处理
func (p *MinIOPublisher) PublishImage(ctx context.Context, filePath string, fileName string) (string, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: 读取图片文件: %v", ErrAssetUploadFailed, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: 打开图片文件: %v", ErrAssetUploadFailed, err)
	}
	defer file.Close()

	// 对象名带uuid前缀，避免不同简历的同名头像互相覆盖
	objectName := path.Join("photos", uuid.NewString()+"_"+fileName)
	contentType := imageContentType(path.Ext(fileName))

	_, err = p.client.PutObject(ctx, p.cfg.Bucket, objectName, file, info.Size(),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetUploadFailed, err)
	}

	expiry := time.Duration(p.cfg.URLExpiryHours) * time.Hour
	presignedURL, err := p.client.PresignedGetObject(ctx, p.cfg.Bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("%w: 生成预签名URL: %v", ErrAssetUploadFailed, err)
	}

	p.logger.Debug().Str("object", objectName).Msg("头像上传到MinIO成功")
	return presignedURL.String(), nil
}

// imageContentType 根据扩展名推断图片的内容类型
func imageContentType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
