package domain

import (
	"errors"
	"fmt"
)

// Code 对外稳定的机器可读错误码
type Code string

const (
	CodeEmailAlreadyExists Code = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeAccountInactive    Code = "ACCOUNT_INACTIVE"
	CodeAccountSuspended   Code = "ACCOUNT_SUSPENDED"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
)

// Error 业务失败。errors.Is 按 Code 比较，所以下面的哨兵值可直接用于判断。
type Error struct {
	Code    Code
	Message string
	Field   string // VALIDATION_ERROR 时的字段名（可空）
	Email   string // EMAIL_ALREADY_EXISTS 时冲突的邮箱
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrEmailAlreadyExists = &Error{Code: CodeEmailAlreadyExists, Message: "email already in use"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid email or password"}
	ErrAccountInactive    = &Error{Code: CodeAccountInactive, Message: "account is inactive"}
	ErrAccountSuspended   = &Error{Code: CodeAccountSuspended, Message: "account is suspended"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrUserNotFound       = &Error{Code: CodeUserNotFound, Message: "user not found"}
)

// DuplicateEmail 携带冲突邮箱
func DuplicateEmail(email string) *Error {
	return &Error{
		Code:    CodeEmailAlreadyExists,
		Message: "email already in use: " + email,
		Email:   email,
	}
}

func Validation(field, msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Field: field}
}

// CodeOf 取出业务错误码；非业务错误返回 false
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
