package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"cv-organizer-go/internal/types"
)

// 模型响应的形状校验错误
var (
	// ErrMalformedResponse 响应去掉首尾空白后不是以'{'开头
	ErrMalformedResponse = errors.New("模型响应不是JSON对象文本")
	// ErrInvalidJSON 响应无法解析为合法JSON
	ErrInvalidJSON = errors.New("模型响应JSON解析失败")
	// ErrUnexpectedShape 响应顶层不是一个对象
	ErrUnexpectedShape = errors.New("模型响应顶层结构不是对象")
)

// ValidateRecord 校验模型的原始响应文本并解析为保序的候选人记录
// 策略是"宽容但查形状"：只保证顶层是对象，不做任何语义schema校验，
// 区块缺失或多余都交给下游按"无数据"处理；这样单个文档的坏响应
// 不会影响批次里其他文档
func ValidateRecord(raw string) (*types.CandidateRecord, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, truncate(trimmed, 200))
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	root, err := types.DecodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	// 整段文本必须恰好是一个JSON值：对象之后跟着任何多余内容都算解析失败
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: JSON对象之后存在多余内容", ErrInvalidJSON)
	}

	if root.Kind != types.KindObject {
		return nil, ErrUnexpectedShape
	}

	return &types.CandidateRecord{Root: root}, nil
}
