package response

import "net/http"

// 业务错误码
const (
	// 失败（内部错误）
	Fail ResponseCode = 0
	// 参数解析错误
	ParseError ResponseCode = 1
	// 参数错误
	InvalidParameter ResponseCode = 2
	// 未认证
	Unauthorized ResponseCode = 3
	// 无权限
	Forbidden ResponseCode = 4
	// 资源不存在
	NotFound ResponseCode = 5
	// 唯一键冲突
	AlreadyExists ResponseCode = 6
	// 名额已满
	CapacityExceeded ResponseCode = 7
	// 存在依赖数据等冲突
	Conflict ResponseCode = 8
)

// InternalMessage 内部错误对外统一提示
const InternalMessage = "internal server error"

type BusinessError struct {
	Code   ResponseCode
	Msg    string
	Err    error
	Fields map[string]string
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// HTTPStatus 业务错误码对应的 HTTP 状态码
func (e *BusinessError) HTTPStatus() int {
	return StatusOf(e.Code)
}

// Internal 是否为内部错误（不向调用方暴露细节）
func (e *BusinessError) Internal() bool {
	return e.Code == Fail
}

type ErrorOption func(*BusinessError)

func WithErrorCode(code ResponseCode) ErrorOption {
	return func(be *BusinessError) {
		be.Code = code
	}
}

func WithErrorMessage(msg string) ErrorOption {
	return func(be *BusinessError) {
		be.Msg = msg
	}
}

func WithError(err error) ErrorOption {
	return func(be *BusinessError) {
		be.Err = err
	}
}

// WithFields 字段级校验错误
func WithFields(fields map[string]string) ErrorOption {
	return func(be *BusinessError) {
		be.Fields = fields
	}
}

func NewBusinessError(opts ...ErrorOption) *BusinessError {
	err := &BusinessError{
		Code: Fail,
		Msg:  "business error",
		Err:  nil,
	}
	for _, opt := range opts {
		opt(err)
	}
	return err
}

// NewInternalError 包装存储层或基础设施错误
func NewInternalError(err error) *BusinessError {
	return NewBusinessError(
		WithErrorCode(Fail),
		WithErrorMessage(InternalMessage),
		WithError(err),
	)
}

// StatusOf 错误码到 HTTP 状态码的映射
func StatusOf(code ResponseCode) int {
	switch code {
	case ParseError, InvalidParameter:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case AlreadyExists, CapacityExceeded, Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
