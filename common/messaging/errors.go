package messaging

import (
	"errors"
)

// 基础错误定义

// ErrInvalidMessage 无效消息错误
var ErrInvalidMessage = errors.New("无效消息")

// ErrInvalidTopic 无效主题错误
var ErrInvalidTopic = errors.New("无效主题")

// ErrTimeout 超时错误
var ErrTimeout = errors.New("超时")

// ErrConnectionFailed 连接失败错误
var ErrConnectionFailed = errors.New("连接失败")

// RetryableError 可重试错误接口
type RetryableError interface {
	error
	IsRetryable() bool
}

// retryableError 可重试错误实现
type retryableError struct {
	err       error
	retryable bool
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func (e *retryableError) IsRetryable() bool {
	return e.retryable
}

// NewRetryableError 创建可重试错误（瞬态故障：DB/网络抖动）
func NewRetryableError(err error) error {
	return &retryableError{
		err:       err,
		retryable: true,
	}
}

// NewNonRetryableError 创建不可重试错误（解析失败等确定性失败）
func NewNonRetryableError(err error) error {
	return &retryableError{
		err:       err,
		retryable: false,
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryableErr RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.IsRetryable()
	}

	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrConnectionFailed) {
		return true
	}
	if errors.Is(err, ErrInvalidMessage) || errors.Is(err, ErrInvalidTopic) {
		return false
	}

	// 未知错误默认可重试，交给重试中间件按上限兜底
	return true
}
