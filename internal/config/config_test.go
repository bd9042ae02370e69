package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
gemini:
  api_key: file_key
  model: gemini-2.5-pro
  temperature: 0.2
asset_host:
  kind: imagekit
  imagekit:
    private_key: ik_key
    folder: /cv-photos
output:
  file_name: out.xlsx
  summary_sheet: true
logger:
  level: debug
  format: pretty
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "file_key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 0.2, cfg.Gemini.Temperature)
	assert.Equal(t, "imagekit", cfg.AssetHost.Kind)
	assert.Equal(t, "ik_key", cfg.AssetHost.ImageKit.PrivateKey)
	assert.Equal(t, "out.xlsx", cfg.Output.FileName)
	assert.True(t, cfg.Output.SummarySheet)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
gemini:
  api_key: key_only
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/openai", cfg.Gemini.BaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 120, cfg.Gemini.TimeoutSeconds)
	assert.Equal(t, "https://upload.imagekit.io/api/v1/files/upload", cfg.AssetHost.ImageKit.UploadURL)
	assert.Equal(t, "organized_cv_output.xlsx", cfg.Output.FileName)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	// 环境变量中的密钥优先于文件内容，密钥只进内存
	t.Setenv("GEMINI_API_KEY", "env_gemini_key")
	t.Setenv("IMAGEKIT_PRIVATE_KEY", "env_ik_key")
	t.Setenv("MINIO_ACCESS_KEY", "env_minio_access")
	t.Setenv("MINIO_SECRET_KEY", "env_minio_secret")

	path := writeConfigFile(t, `
gemini:
  api_key: file_key
asset_host:
  imagekit:
    private_key: file_ik_key
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env_gemini_key", cfg.Gemini.APIKey)
	assert.Equal(t, "env_ik_key", cfg.AssetHost.ImageKit.PrivateKey)
	assert.Equal(t, "env_minio_access", cfg.AssetHost.MinIO.AccessKeyID)
	assert.Equal(t, "env_minio_secret", cfg.AssetHost.MinIO.SecretAccessKey)
}

func TestLoadConfig_MissingFileFallsBackInTests(t *testing.T) {
	// go test 下找不到配置文件时退回默认配置而不是报错
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "gemini: [broken")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("garbage", time.Minute))
}
