package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// UserStatus 账号状态，决定能否登录
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// ParseUserStatus 存储边界处调用，未知值直接拒绝
func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(s); st {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return st, nil
	}
	return "", fmt.Errorf("unknown user status %q", s)
}

func (s UserStatus) Valid() bool {
	_, err := ParseUserStatus(string(s))
	return err == nil
}

// User 领域实体（ID 为业务 ID，非存储主键）
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Nickname     string
	Status       UserStatus
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrDuplicateKey 存储层唯一约束冲突（email / uid）
var ErrDuplicateKey = errors.New("duplicate key")

// ErrUserMissing 按 ID 更新时找不到记录
var ErrUserMissing = errors.New("user record missing")

// UserRepository 凭证服务依赖的存储能力。
// 查询不到时返回 (nil, nil)；其余错误一律视为不可恢复，原样上抛。
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
