package logger

import (
	"github.com/samber/oops"
	"go.uber.org/zap"
)

// ErrorFields oops 错误额外带上 code 与上下文，普通错误只有 error 字段
func ErrorFields(err error) []zap.Field {
	if err == nil {
		return nil
	}
	fields := []zap.Field{zap.Error(err)}
	oe, ok := oops.AsOops(err)
	if !ok {
		return fields
	}
	if code := oe.Code(); code != nil {
		fields = append(fields, zap.Any("code", code))
	}
	if ctx := oe.Context(); len(ctx) > 0 {
		fields = append(fields, zap.Any("context", ctx))
	}
	return fields
}
