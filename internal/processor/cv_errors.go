package processor

import (
	"errors"
	"fmt"
)

// ErrOracleCallFailed 抽取模型调用本身失败（传输错误、非200状态等）
// 与响应形状错误不同，此时没有可供诊断的原始响应文本
var ErrOracleCallFailed = errors.New("调用抽取模型失败")

// ProcessError 携带文档上下文的处理错误
// 失败按文档隔离：一个坏文档绝不中断批次里其余文档的处理
type ProcessError struct {
	FileName    string // 出错文档的显示名
	Op          string // 出错环节：extract/upload/oracle/validate/sheet
	BaseErr     error  // 基础错误（各环节包的哨兵错误）
	Detail      string
	RawResponse string // 模型的原始响应文本（仅校验类失败时非空），用于人工诊断
}

func (e *ProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.FileName, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.FileName)
}

func (e *ProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 以支持按哨兵错误比较
func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数

func NewExtractError(fileName string, err error) error {
	return &ProcessError{
		FileName: fileName,
		Op:       "extract",
		BaseErr:  err,
	}
}

func NewOracleError(fileName string, err error) error {
	return &ProcessError{
		FileName: fileName,
		Op:       "oracle",
		BaseErr:  ErrOracleCallFailed,
		Detail:   err.Error(),
	}
}

func NewValidateError(fileName string, err error, rawResponse string) error {
	return &ProcessError{
		FileName:    fileName,
		Op:          "validate",
		BaseErr:     err,
		RawResponse: rawResponse,
	}
}

func NewSheetError(fileName string, err error) error {
	return &ProcessError{
		FileName: fileName,
		Op:       "sheet",
		BaseErr:  err,
	}
}
