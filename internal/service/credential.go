package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"gin-gorm-auth/internal/core/uid"
	"gin-gorm-auth/internal/domain"
	"gin-gorm-auth/pkg/utils"
)

// TokenIssuer 登录成功后签发令牌；auth.JWTer 实现
type TokenIssuer interface {
	IssueAccess(subject string) (string, error)
	IssueRefresh(subject string) (string, error)
	AccessTTL() time.Duration
}

const TokenTypeBearer = "Bearer"

type SignupResult struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Profile struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	Nickname    string            `json:"nickname"`
	Status      domain.UserStatus `json:"status"`
	LastLoginAt *time.Time        `json:"last_login_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CredentialService 注册 / 登录 / 查询本人资料
type CredentialService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

func NewCredentialService(users domain.UserRepository, tokens TokenIssuer, log *zap.Logger) (*CredentialService, error) {
	if users == nil {
		return nil, errors.New("credential service: nil user repository")
	}
	if tokens == nil {
		return nil, errors.New("credential service: nil token issuer")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CredentialService{users: users, tokens: tokens, log: log.Named("credential")}, nil
}

// 未知邮箱也走一次 bcrypt 比较，响应耗时与密码错误时一致
var dummyHash = sync.OnceValue(func() string {
	h, err := utils.HashPassword("dummy-password-for-timing-1")
	if err != nil {
		return ""
	}
	return h
})

func (s *CredentialService) Signup(ctx context.Context, email, password, nickname string) (*SignupResult, error) {
	if err := requireFields(map[string]string{"email": email, "password": password, "nickname": nickname}); err != nil {
		observe(opSignup, err)
		return nil, err
	}
	if len(password) > maxPasswordBytes {
		err := errPasswordTooLong()
		observe(opSignup, err)
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		err = repoErr(err, "find_by_email")
		observe(opSignup, err)
		return nil, err
	}
	if existing != nil {
		err = domain.DuplicateEmail(email)
		observe(opSignup, err)
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		if utils.IsTooLong(err) {
			err = errPasswordTooLong()
		} else {
			err = oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
		}
		observe(opSignup, err)
		return nil, err
	}

	created, err := s.users.Create(ctx, &domain.User{
		ID:           uid.NewUser(),
		Email:        email,
		PasswordHash: hash,
		Nickname:     nickname,
		Status:       domain.UserStatusActive,
	})
	if err != nil {
		// 并发注册同一邮箱：唯一约束兜底
		if errors.Is(err, domain.ErrDuplicateKey) {
			err = domain.DuplicateEmail(email)
		} else {
			err = repoErr(err, "create")
		}
		observe(opSignup, err)
		return nil, err
	}

	observe(opSignup, nil)
	s.log.Info("user signed up", zap.String("user_id", created.ID))
	return &SignupResult{ID: created.ID, Email: created.Email, Nickname: created.Nickname}, nil
}

// Login 校验顺序固定：存在性 → 密码 → 状态。任何失败路径都不写库。
func (s *CredentialService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	pair, userID, err := s.login(ctx, email, password)
	observe(opLogin, err)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", zap.String("user_id", userID))
	return pair, nil
}

func (s *CredentialService) login(ctx context.Context, email, password string) (*TokenPair, string, error) {
	if err := requireFields(map[string]string{"email": email, "password": password}); err != nil {
		return nil, "", err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", repoErr(err, "find_by_email")
	}
	if u == nil {
		utils.CheckPassword(password, dummyHash())
		return nil, "", domain.ErrInvalidCredentials
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}
	switch u.Status {
	case domain.UserStatusActive:
	case domain.UserStatusInactive:
		return nil, "", domain.ErrAccountInactive
	case domain.UserStatusSuspended:
		return nil, "", domain.ErrAccountSuspended
	default:
		return nil, "", oops.Code("USER_STATUS_UNKNOWN").With("user_id", u.ID, "status", u.Status).
			Errorf("unknown user status")
	}

	access, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return nil, "", oops.Code("TOKEN_ISSUE_FAILED").With("user_id", u.ID, "type", "access").Wrap(err)
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, "", oops.Code("TOKEN_ISSUE_FAILED").With("user_id", u.ID, "type", "refresh").Wrap(err)
	}

	// 令牌都签好后再记登录时间：写库失败则不返回令牌
	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		return nil, "", repoErr(err, "update_last_login")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(s.tokens.AccessTTL() / time.Second),
	}, u.ID, nil
}

// Profile 按业务 ID 取本人资料
func (s *CredentialService) Profile(ctx context.Context, id string) (*Profile, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "find_by_id")
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return &Profile{
		ID:          u.ID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}, nil
}

func requireFields(fields map[string]string) error {
	// 固定顺序，保证同样的输入报同一个字段
	for _, name := range []string{"email", "password", "nickname"} {
		v, ok := fields[name]
		if ok && v == "" {
			return domain.Validation(name, name+" is required")
		}
	}
	return nil
}

// bcrypt 上限
const maxPasswordBytes = utils.MaxPasswordBytes

func errPasswordTooLong() error {
	return domain.Validation("password", "password must be at most 72 bytes")
}

func repoErr(err error, op string) error {
	return oops.Code("USER_REPOSITORY_FAILED").With("op", op).Wrap(err)
}
