package response

import "github.com/gin-gonic/gin"

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// Resp 统一外层结构：成功带 data，失败带 error
type Resp struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// OK 成功响应（保证 data 不为 null）
func OK(data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Success: true, Data: data}
}

// Error 失败响应；msg 为空时取默认文案
func Error(code, msg string, details ...ErrorDetail) Resp {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return Resp{Success: false, Error: &ErrorBody{Code: code, Message: msg, Details: details}}
}

// Abort 中间件里直接终止请求
func Abort(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(StatusOf(code), Error(code, msg))
}
