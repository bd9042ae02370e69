package processor

import (
	"context"

	"cv-organizer-go/internal/parser"
	"cv-organizer-go/internal/storage"
	"cv-organizer-go/internal/types"
)

//
// 管线组件接口
// 三个外部依赖都收窄成单方法接口，测试中用罐头实现替换
//

// ContentExtractor 文档内容提取接口
type ContentExtractor interface {
	// Extract 从原始文档字节提取页面文本、链接URI与最佳内嵌图片
	Extract(ctx context.Context, data []byte, fileName string) (*types.ExtractedContent, error)
}

// AssetPublisher 资产发布接口：上传一张本地图片并返回持久公开URL
// 失败返回空URL与错误，调用方按"无头像"降级，绝不因此中断文档处理
type AssetPublisher interface {
	PublishImage(ctx context.Context, filePath string, fileName string) (string, error)
}

// ExtractionOracle 抽取模型接口：喂入装配好的提示词，返回原始响应文本
// 收窄为 text -> text，便于在测试中注入各种畸形响应覆盖校验分支
type ExtractionOracle interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// 确保默认实现满足接口
var (
	_ ContentExtractor = (*parser.PDFContentExtractor)(nil)
	_ ExtractionOracle = (*parser.GeminiExtractor)(nil)
	_ AssetPublisher   = (*storage.ImageKitPublisher)(nil)
	_ AssetPublisher   = (*storage.MinIOPublisher)(nil)
)
