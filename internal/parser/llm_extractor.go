package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"cv-organizer-go/internal/config"
)

// GeminiExtractor 通过Gemini的OpenAI兼容端点调用抽取模型
// 单次请求、无重试：上游对每个文档只做一次抽取尝试，失败按文档隔离处理
type GeminiExtractor struct {
	cfg    config.GeminiConfig
	client *http.Client
	logger zerolog.Logger
}

// NewGeminiExtractor 创建抽取模型客户端
func NewGeminiExtractor(cfg config.GeminiConfig, logger zerolog.Logger) *GeminiExtractor {
	return &GeminiExtractor{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Extract 把装配好的提示词发给模型，要求只返回JSON，并原样返回响应文本
// 响应文本的形状校验交给 ValidateRecord，这里不做任何解析
func (g *GeminiExtractor) Extract(ctx context.Context, prompt string) (string, error) {
	body := chatCompletionRequest{
		Model:          g.cfg.Model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    g.cfg.Temperature,
		MaxTokens:      g.cfg.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("序列化抽取请求失败: %w", err)
	}

	url := g.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("构造抽取请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("调用抽取模型失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取抽取模型响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("抽取模型返回非200状态 %d: %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("解码抽取模型响应失败: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("抽取模型未返回任何choice")
	}

	content := parsed.Choices[0].Message.Content
	g.logger.Debug().
		Str("model", g.cfg.Model).
		Int("prompt_tokens", parsed.Usage.PromptTokens).
		Int("completion_tokens", parsed.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Str("finish_reason", parsed.Choices[0].FinishReason).
		Msg("抽取模型调用完成")

	return content, nil
}

// truncate 截断长文本用于日志和错误信息
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
