package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrNoSecret 未配置密钥时拒绝签发
var ErrNoSecret = errors.New("jwt secret is not configured")

// Claims access token 的主体放在 sub，refresh token 历史上放在 uid，两者都要能读。
type Claims struct {
	UID  string    `json:"uid,omitempty"`
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

// JWTer 签发/校验 HS256 令牌。零值不可用：没有密钥时既不签发也不校验。
type JWTer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*JWTer)

// WithIssuer 非空时写入 iss 并在校验时要求一致
func WithIssuer(iss string) Option { return func(j *JWTer) { j.issuer = iss } }

func WithTTL(access, refresh time.Duration) Option {
	return func(j *JWTer) {
		if access > 0 {
			j.accessTTL = access
		}
		if refresh > 0 {
			j.refreshTTL = refresh
		}
	}
}

// WithClock 测试用
func WithClock(now func() time.Time) Option { return func(j *JWTer) { j.now = now } }

func NewJWTer(secret []byte, opts ...Option) (*JWTer, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	j := &JWTer{
		secret:     append([]byte(nil), secret...),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(j)
	}
	return j, nil
}

func (j *JWTer) AccessTTL() time.Duration { return j.accessTTL }

func (j *JWTer) RefreshTTL() time.Duration { return j.refreshTTL }

// IssueAccess {sub, exp=now+15m, type=access}
func (j *JWTer) IssueAccess(subject string) (string, error) {
	if !j.ready() {
		return "", ErrNoSecret
	}
	return j.sign(Claims{
		Type:             TokenAccess,
		RegisteredClaims: j.registered(subject, j.accessTTL),
	})
}

// IssueRefresh {uid, exp=now+7d, type=refresh}
func (j *JWTer) IssueRefresh(subject string) (string, error) {
	if !j.ready() {
		return "", ErrNoSecret
	}
	return j.sign(Claims{
		UID:              subject,
		Type:             TokenRefresh,
		RegisteredClaims: j.registered("", j.refreshTTL),
	})
}

func (j *JWTer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := j.clock()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (j *JWTer) sign(c Claims) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").With("type", string(c.Type)).Wrap(err)
	}
	return s, nil
}

// Verify 校验签名与过期时间。任何失败都只返回 ok=false，不当作错误上抛。
func (j *JWTer) Verify(tokenStr string) (*Claims, bool) {
	if !j.ready() || tokenStr == "" {
		return nil, false
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil || !t.Valid {
		return nil, false
	}
	c, ok := t.Claims.(*Claims)
	return c, ok
}

func (j *JWTer) ready() bool { return j != nil && len(j.secret) > 0 }

func (j *JWTer) clock() time.Time {
	if j.now == nil {
		return time.Now()
	}
	return j.now()
}

// SubjectOf 优先 sub，其次 uid
func SubjectOf(c *Claims) (string, bool) {
	if c == nil {
		return "", false
	}
	if c.Subject != "" {
		return c.Subject, true
	}
	if c.UID != "" {
		return c.UID, true
	}
	return "", false
}
