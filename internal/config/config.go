package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cv-organizer-go/internal/constants"
)

// GeminiConfig 抽取模型（oracle）的配置
type GeminiConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`        // OpenAI兼容端点的基础URL
	Model          string  `yaml:"model"`           // 例如 "gemini-2.5-flash"
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"` // 单次请求超时(秒)
}

// ImageKitConfig ImageKit风格资产托管的配置
type ImageKitConfig struct {
	UploadURL      string `yaml:"upload_url"`
	PrivateKey     string `yaml:"private_key"`
	Folder         string `yaml:"folder"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// MinIOPublisherConfig MinIO对象存储作为资产托管后端的配置
type MinIOPublisherConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Bucket          string `yaml:"bucket"`
	Location        string `yaml:"location"`          // 可选，存储桶区域
	URLExpiryHours  int    `yaml:"url_expiry_hours"`  // 预签名URL有效期(小时)
}

// AssetHostConfig 头像托管配置，kind选择具体后端
type AssetHostConfig struct {
	Kind     string               `yaml:"kind"` // "imagekit"、"minio" 或 "" (禁用)
	ImageKit ImageKitConfig       `yaml:"imagekit"`
	MinIO    MinIOPublisherConfig `yaml:"minio"`
}

// OutputConfig 输出工作簿配置
type OutputConfig struct {
	FileName     string `yaml:"file_name"`
	SummarySheet bool   `yaml:"summary_sheet"` // 是否生成汇总表
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// Config 应用程序配置
type Config struct {
	Gemini    GeminiConfig    `yaml:"gemini"`
	AssetHost AssetHostConfig `yaml:"asset_host"`
	Output    OutputConfig    `yaml:"output"`
	Logger    LoggerConfig    `yaml:"logger"`
}

// LoadConfig 从文件加载配置
// 未指定路径时在常见位置查找；测试环境下找不到配置文件则退回默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			"../config.yaml",
			"../../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".cv-organizer", "config.yaml"),
		}

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			searchPaths = append(searchPaths, filepath.Join(execDir, "config.yaml"))
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}

		if configPath == "" {
			if inTestEnv() {
				return createDefaultConfig(), nil
			}
			configPath = "config.yaml"
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		if inTestEnv() {
			return createDefaultConfig(), nil
		}
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	return &config, nil
}

// applyEnvOverrides 从环境变量覆盖密钥类配置（如果存在）
// 密钥只进内存，绝不写入任何输出产物
func applyEnvOverrides(config *Config) {
	if envKey := os.Getenv("GEMINI_API_KEY"); envKey != "" {
		config.Gemini.APIKey = envKey
	}
	if envKey := os.Getenv("IMAGEKIT_PRIVATE_KEY"); envKey != "" {
		config.AssetHost.ImageKit.PrivateKey = envKey
	}
	if envKey := os.Getenv("MINIO_ACCESS_KEY"); envKey != "" {
		config.AssetHost.MinIO.AccessKeyID = envKey
	}
	if envKey := os.Getenv("MINIO_SECRET_KEY"); envKey != "" {
		config.AssetHost.MinIO.SecretAccessKey = envKey
	}
}

// applyDefaults 填充缺省值
func applyDefaults(config *Config) {
	if config.Gemini.BaseURL == "" {
		config.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	if config.Gemini.Model == "" {
		config.Gemini.Model = "gemini-2.5-flash"
	}
	if config.Gemini.TimeoutSeconds <= 0 {
		config.Gemini.TimeoutSeconds = 120
	}
	if config.AssetHost.ImageKit.UploadURL == "" {
		config.AssetHost.ImageKit.UploadURL = "https://upload.imagekit.io/api/v1/files/upload"
	}
	if config.AssetHost.ImageKit.TimeoutSeconds <= 0 {
		config.AssetHost.ImageKit.TimeoutSeconds = 30
	}
	if config.AssetHost.MinIO.URLExpiryHours <= 0 {
		config.AssetHost.MinIO.URLExpiryHours = 7 * 24
	}
	if config.Output.FileName == "" {
		config.Output.FileName = constants.OutputFileName
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
}

// createDefaultConfig 创建一个默认配置，用于测试环境
func createDefaultConfig() *Config {
	config := &Config{}
	config.Output.SummarySheet = true
	applyDefaults(config)
	return config
}

// inTestEnv 粗略判断当前是否运行在 go test 下
func inTestEnv() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			return true
		}
	}
	return false
}

// GetDuration 解析时长字符串，解析失败时返回默认值
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
