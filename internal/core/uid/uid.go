package uid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// 业务 ID 前缀
const (
	PrefixUser = "usr_"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// New 生成 prefix + ULID（26 位 Crockford Base32，按时间单调递增）
func New(prefix string) string {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return prefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewUser 用户业务 ID，形如 usr_01ARZ3NDEKTSV4RRFFQ69G5FAV
func NewUser() string { return New(PrefixUser) }

// Valid 检查 s 是否为 prefix + 合法 ULID
func Valid(prefix, s string) bool {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok || len(rest) != ulid.EncodedSize {
		return false
	}
	// ulid.Parse 大小写不敏感，这里要求与生成结果一致（大写）
	if rest != strings.ToUpper(rest) {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}
