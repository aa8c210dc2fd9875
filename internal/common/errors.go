package common

import (
	"errors"
	"fmt"
)

// AppError 应用级错误结构
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code, message string, err error) error {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewError 创建新错误
func NewError(code, message string) error {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// CodeOf 取出错误链上的错误码，不是 AppError 返回 INTERNAL_ERROR
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode 判断错误链上是否有指定错误码
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}

// 错误码常量
const (
	// 输入校验错误：在任何外部调用之前就拒绝
	ErrCodeInvalidQuery = "INVALID_QUERY"

	// 结构性错误：整个运行失败
	ErrCodeTranslation          = "TRANSLATION_ERROR"
	ErrCodeInvalidPipelineState = "INVALID_PIPELINE_STATE"
	ErrCodePipelineTimeout      = "PIPELINE_TIMEOUT"

	// 外部瞬时错误：能降级就降级，降不了才往上抛
	ErrCodeRateLimit    = "RATE_LIMIT"
	ErrCodeGitHubAPI    = "GITHUB_API_ERROR"
	ErrCodeEvaluator    = "EVALUATOR_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeDatabase     = "DATABASE_ERROR"
	ErrCodeNotification = "NOTIFICATION_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)
