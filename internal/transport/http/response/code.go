package response

import (
	"net/http"

	"gin-gorm-auth/internal/domain"
)

// 对外错误码：业务码与领域层一致，其余为传输层 / 系统级
const (
	CodeValidation         = string(domain.CodeValidation)
	CodeInvalidCredentials = string(domain.CodeInvalidCredentials)
	CodeAccountInactive    = string(domain.CodeAccountInactive)
	CodeAccountSuspended   = string(domain.CodeAccountSuspended)
	CodeUserNotFound       = string(domain.CodeUserNotFound)
	CodeEmailAlreadyExists = string(domain.CodeEmailAlreadyExists)

	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeRequestTooLarge = "REQUEST_TOO_LARGE"
	CodeServerBusy      = "SERVER_BUSY"
	CodeTimeout         = "TIMEOUT"
	CodeInternal        = "INTERNAL_ERROR"
)

// CodeStatusMap code → HTTP 状态码
var CodeStatusMap = map[string]int{
	CodeValidation:         http.StatusBadRequest,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeAccountInactive:    http.StatusForbidden,
	CodeAccountSuspended:   http.StatusForbidden,
	CodeUserNotFound:       http.StatusNotFound,
	CodeNotFound:           http.StatusNotFound,
	CodeEmailAlreadyExists: http.StatusConflict,
	CodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	CodeServerBusy:         http.StatusServiceUnavailable,
	CodeTimeout:            http.StatusGatewayTimeout,
	CodeInternal:           http.StatusInternalServerError,
}

// CodeMsgMap 默认文案（调用方未给 msg 时使用）
var CodeMsgMap = map[string]string{
	CodeValidation:      "invalid request",
	CodeUnauthorized:    "unauthorized",
	CodeNotFound:        "not found",
	CodeRequestTooLarge: "request body too large",
	CodeServerBusy:      "server busy",
	CodeTimeout:         "timeout",
	CodeInternal:        "internal server error",
}

// StatusOf 未登记的 code 一律 500
func StatusOf(code string) int {
	if s, ok := CodeStatusMap[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
