package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"cv-organizer-go/internal/config"
	"cv-organizer-go/internal/constants"
)

// ErrAssetUploadFailed 头像上传失败
// 对管线而言不是致命错误：调用方收到空URL后直接省略ProfilePhoto字段
var ErrAssetUploadFailed = errors.New("上传头像到资产托管失败")

// ImageKitPublisher 通过ImageKit风格的multipart接口上传图片并返回公开URL
// 单次尝试、无重试；鉴权方式为私钥做basic auth用户名
type ImageKitPublisher struct {
	cfg    config.ImageKitConfig
	client *http.Client
	logger zerolog.Logger
}

// NewImageKitPublisher 创建ImageKit资产发布器
func NewImageKitPublisher(cfg config.ImageKitConfig, logger zerolog.Logger) *ImageKitPublisher {
	return &ImageKitPublisher{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// uploadResponse 资产托管成功响应中我们唯一关心的字段
type uploadResponse struct {
	URL string `json:"url"`
}

// PublishImage 上传本地图片文件，成功时返回持久公开URL
// 任何传输或非成功状态的失败都折叠为 ErrAssetUploadFailed
func (p *ImageKitPublisher) PublishImage(ctx context.Context, filePath string, fileName string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: 打开图片文件: %v", ErrAssetUploadFailed, err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("%w: 构造multipart: %v", ErrAssetUploadFailed, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("%w: 写入图片数据: %v", ErrAssetUploadFailed, err)
	}

	folder := p.cfg.Folder
	if folder == "" {
		folder = constants.ProfilePhotoFolder
	}
	_ = writer.WriteField("fileName", fileName)
	_ = writer.WriteField("folder", folder)
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: 关闭multipart: %v", ErrAssetUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.UploadURL, body)
	if err != nil {
		return "", fmt.Errorf("%w: 构造上传请求: %v", ErrAssetUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	// ImageKit的鉴权约定：私钥作为basic auth的用户名，密码为空
	req.SetBasicAuth(p.cfg.PrivateKey, "")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetUploadFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: 读取响应: %v", ErrAssetUploadFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn().
			Int("status", resp.StatusCode).
			Str("file_name", fileName).
			Msg("头像上传被资产托管拒绝")
		return "", fmt.Errorf("%w: 状态码 %d", ErrAssetUploadFailed, resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || parsed.URL == "" {
		return "", fmt.Errorf("%w: 响应缺少url字段", ErrAssetUploadFailed)
	}

	p.logger.Debug().Str("file_name", fileName).Str("url", parsed.URL).Msg("头像上传成功")
	return parsed.URL, nil
}
