package user

import (
	"time"

	"gin-gorm-auth/internal/domain"
)

// UserModel users 表。ID 为内部自增主键，对外只用 UID（业务 ID）
type UserModel struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"`
	UID          string     `gorm:"column:uid;type:varchar(30);uniqueIndex:idx_users_uid;not null"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex:idx_users_email;not null"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Nickname     string     `gorm:"type:varchar(50);not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:active;index:idx_users_status;check:chk_users_status,status IN ('active','inactive','suspended')"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index:idx_users_created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
}

func (UserModel) TableName() string { return "users" }

// FromDomain 写入前转换；不带内部主键
func FromDomain(u *domain.User) UserModel {
	return UserModel{
		UID:          u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Nickname:     u.Nickname,
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}

// ToDomain 读出后转换；库里出现未知状态值时报错
func (m *UserModel) ToDomain() (*domain.User, error) {
	st, err := domain.ParseUserStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           m.UID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Nickname:     m.Nickname,
		Status:       st,
		LastLoginAt:  m.LastLoginAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
