package errorx

import (
	"fmt"

	"github.com/pkg/errors"
)

// BizError 业务错误，实现 error 接口
type BizError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *BizError) Error() string {
	return fmt.Sprintf("BizError: code=%d, message=%s", e.Code, e.Message)
}

// GetCode 获取错误码
func (e *BizError) GetCode() int {
	return e.Code
}

// GetMessage 获取错误消息
func (e *BizError) GetMessage() string {
	return e.Message
}

// New 创建业务错误（使用默认消息）
func New(code int) *BizError {
	return &BizError{
		Code:    code,
		Message: GetMessage(code),
	}
}

// NewWithMessage 创建业务错误（自定义消息）
func NewWithMessage(code int, message string) *BizError {
	return &BizError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误，添加上下文信息
func Wrap(code int, err error) *BizError {
	if err == nil {
		return New(code)
	}
	return &BizError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", GetMessage(code), err),
	}
}

// Is 判断是否为特定错误码
func Is(err error, code int) bool {
	if err == nil {
		return false
	}
	if bizErr, ok := err.(*BizError); ok {
		return bizErr.Code == code
	}
	return false
}

// FromError 从 error 转换为 BizError
// 支持以下错误类型：
//  1. *BizError：直接返回
//  2. 其他错误：返回内部错误（隐藏细节）
func FromError(err error) *BizError {
	if err == nil {
		return nil
	}

	// 获取原始错误（支持 errors.Wrap 包装的错误）
	causeErr := errors.Cause(err)

	if bizErr, ok := causeErr.(*BizError); ok {
		return bizErr
	}

	return &BizError{
		Code:    CodeInternalError,
		Message: "内部服务器错误",
	}
}

// ============ 常用错误快捷方法 ============

// ErrInternalError 内部错误
func ErrInternalError() *BizError {
	return New(CodeInternalError)
}

// ErrInvalidParams 参数错误
func ErrInvalidParams(msg string) *BizError {
	if msg == "" {
		return New(CodeInvalidParams)
	}
	return NewWithMessage(CodeInvalidParams, msg)
}

// ErrUnauthorized 未授权
func ErrUnauthorized() *BizError {
	return New(CodeUnauthorized)
}

// ErrTooManyRequests 请求过于频繁
func ErrTooManyRequests() *BizError {
	return New(CodeTooManyRequests)
}

// ErrDBError 数据库错误
func ErrDBError(err error) *BizError {
	return Wrap(CodeDBError, err)
}

// ErrCacheError 缓存错误
func ErrCacheError(err error) *BizError {
	return Wrap(CodeCacheError, err)
}

// ============ 活动服务错误 ============

// ErrEventNotFound 活动不存在
func ErrEventNotFound() *BizError {
	return New(CodeEventNotFound)
}

// ErrEventCompleted 活动已结束
func ErrEventCompleted() *BizError {
	return New(CodeEventCompleted)
}

// ErrCapacityInvalid 名额无效
func ErrCapacityInvalid() *BizError {
	return New(CodeCapacityInvalid)
}

// ErrCapacityShrink 名额低于当前确认人数
func ErrCapacityShrink() *BizError {
	return New(CodeCapacityShrink)
}

// ErrScheduleInvalid 活动时间无效
func ErrScheduleInvalid() *BizError {
	return New(CodeScheduleInvalid)
}

// ErrEventNotResolved 无法识别的活动名称
func ErrEventNotResolved() *BizError {
	return New(CodeEventNotResolved)
}

// ErrRsvpStatusInvalid 无效的报名状态
func ErrRsvpStatusInvalid() *BizError {
	return New(CodeRsvpStatusInvalid)
}

// ErrRsvpLimited 报名限流
func ErrRsvpLimited() *BizError {
	return New(CodeRsvpLimited)
}
