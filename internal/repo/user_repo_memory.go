package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gin-gorm-auth/internal/domain"
)

// MemoryUserRepo 进程内实现，本地调试与测试用；重启即丢
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	now     func() time.Time
}

var _ domain.UserRepository = (*MemoryUserRepo)(nil)

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.byID[id]), nil
}

func (r *MemoryUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, fmt.Errorf("%w: email %s", domain.ErrDuplicateKey, u.Email)
	}
	if _, ok := r.byID[u.ID]; ok {
		return nil, fmt.Errorf("%w: uid %s", domain.ErrDuplicateKey, u.ID)
	}
	if !u.Status.Valid() {
		return nil, fmt.Errorf("invalid status %q", u.Status)
	}
	stored := clone(u)
	now := r.now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return clone(stored), nil
}

func (r *MemoryUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserMissing, id)
	}
	now := r.now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return nil
}

func (r *MemoryUserRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func clone(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}
