package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	RDB    *redis.Client
	prefix string
	sf     singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWithClient(rdb *redis.Client) *Cache { return &Cache{RDB: rdb} }

// WithPrefix 所有 key 加统一前缀，避免多服务共用一个库时冲突
func (c *Cache) WithPrefix(p string) *Cache {
	c.prefix = p
	return c
}

func (c *Cache) Key(k string) string { return c.prefix + k }

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

// Loader 回源；返回的 ttl <= 0 时只返回结果不回写
type Loader func(ctx context.Context) ([]byte, time.Duration, error)

// LoadTimeout 合并回源的超时；回源不跟随任何单个调用方的 ctx
var LoadTimeout = 5 * time.Second

// GetOrLoad 先读缓存；未命中时 singleflight 合并回源并按 load 给出的 ttl 回写。
// 调用方 ctx 取消只让自己提前返回，不影响同 key 的其他等待者。
func (c *Cache) GetOrLoad(ctx context.Context, key string, load Loader) ([]byte, error) {
	key = c.Key(key)
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	ch := c.sf.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		b, ttl, e := load(lctx)
		if e != nil {
			return nil, e
		}
		if ttl > 0 {
			// 回写失败不影响本次结果
			_ = c.RDB.Set(lctx, key, b, ttl).Err()
		}
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	}
}

// Delete 失效若干 key
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.Key(k)
	}
	return c.RDB.Del(ctx, full...).Err()
}
