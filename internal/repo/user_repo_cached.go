package repo

import (
	"context"
	"time"

	"gin-gorm-auth/internal/core/cache"
	"gin-gorm-auth/internal/domain"
)

// CachedUserRepo FindByID 走 redis 读穿缓存；登录写入后删 key。
// FindByEmail 不缓存：注册/登录必须读到库里的最新状态。
// 缓存里不放密码哈希，经缓存的 FindByID 返回的 PasswordHash 为空。
type CachedUserRepo struct {
	inner domain.UserRepository
	c     *cache.Cache
	users cache.JSONLoader[cachedUser]
}

var _ domain.UserRepository = (*CachedUserRepo)(nil)

func NewCachedUserRepo(inner domain.UserRepository, c *cache.Cache, ttl time.Duration) *CachedUserRepo {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedUserRepo{
		inner: inner,
		c:     c,
		// 不存在的 ID 只短暂负缓存
		users: cache.JSONLoader[cachedUser]{C: c, TTL: ttl, NegTTL: min(ttl, 30*time.Second)},
	}
}

func userKey(id string) string { return "user:" + id }

type cachedUser struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	Nickname    string            `json:"nickname"`
	Status      domain.UserStatus `json:"status"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (r *CachedUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	cu, err := r.users.Get(ctx, userKey(id), func(ctx context.Context) (*cachedUser, error) {
		u, err := r.inner.FindByID(ctx, id)
		if err != nil || u == nil {
			return nil, err
		}
		return &cachedUser{
			ID: u.ID, Email: u.Email, Nickname: u.Nickname,
			Status: u.Status, LastLoginAt: u.LastLoginAt, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
		}, nil
	})
	if err != nil || cu == nil {
		return nil, err
	}
	if !cu.Status.Valid() {
		// 脏数据：丢掉缓存回源
		_ = r.c.Delete(ctx, userKey(id))
		u, err := r.inner.FindByID(ctx, id)
		if u != nil {
			u.PasswordHash = ""
		}
		return u, err
	}
	return &domain.User{
		ID: cu.ID, Email: cu.Email, Nickname: cu.Nickname,
		Status: cu.Status, LastLoginAt: cu.LastLoginAt, CreatedAt: cu.CreatedAt, UpdatedAt: cu.UpdatedAt,
	}, nil
}

func (r *CachedUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.inner.FindByEmail(ctx, email)
}

func (r *CachedUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := r.inner.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	// 清掉可能存在的负缓存
	_ = r.c.Delete(ctx, userKey(created.ID))
	return created, nil
}

func (r *CachedUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	if err := r.inner.UpdateLastLogin(ctx, id); err != nil {
		return err
	}
	_ = r.c.Delete(ctx, userKey(id))
	return nil
}
