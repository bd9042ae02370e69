package processor

import (
	"github.com/rs/zerolog"
)

// Components 聚合管线的全部功能组件依赖，便于集中管理和测试替换
type Components struct {
	ContentExtractor ContentExtractor // 文档内容提取
	AssetPublisher   AssetPublisher   // 头像发布，nil表示禁用头像上传
	Oracle           ExtractionOracle // 抽取模型
}

// Settings 纯配置项，不包含任何业务组件
type Settings struct {
	SummarySheet bool           // 是否生成汇总表
	TempDir      string         // 头像临时文件目录，空则使用系统临时目录
	Logger       zerolog.Logger // 日志记录器，显式注入而非读全局状态
}

// Option CVProcessor 的配置选项
type Option func(*CVProcessor)

// WithContentExtractor 设置文档内容提取组件
func WithContentExtractor(extractor ContentExtractor) Option {
	return func(p *CVProcessor) {
		p.Components.ContentExtractor = extractor
	}
}

// WithAssetPublisher 设置头像发布组件，传nil禁用头像上传
func WithAssetPublisher(publisher AssetPublisher) Option {
	return func(p *CVProcessor) {
		p.Components.AssetPublisher = publisher
	}
}

// WithOracle 设置抽取模型组件
func WithOracle(oracle ExtractionOracle) Option {
	return func(p *CVProcessor) {
		p.Components.Oracle = oracle
	}
}

// WithSummarySheet 设置是否生成汇总表
func WithSummarySheet(enabled bool) Option {
	return func(p *CVProcessor) {
		p.Settings.SummarySheet = enabled
	}
}

// WithTempDir 设置头像临时文件目录
func WithTempDir(dir string) Option {
	return func(p *CVProcessor) {
		p.Settings.TempDir = dir
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) Option {
	return func(p *CVProcessor) {
		p.Settings.Logger = logger
	}
}
