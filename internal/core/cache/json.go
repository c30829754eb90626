package cache

import (
	"context"
	"encoding/json"
	"time"
)

// JSONLoader 按 JSON 存取的读穿缓存。
// load 返回 nil 时写入 "null"，只保留 NegTTL（0 表示不做负缓存）；
// 命中的数据无法解码时删掉 key 再回源一次。
type JSONLoader[T any] struct {
	C      *Cache
	TTL    time.Duration
	NegTTL time.Duration
}

var jsonNull = []byte("null")

func (l JSONLoader[T]) Get(ctx context.Context, key string, load func(ctx context.Context) (*T, error)) (*T, error) {
	loader := func(ctx context.Context) ([]byte, time.Duration, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, 0, err
		}
		if v == nil {
			return jsonNull, l.NegTTL, nil
		}
		b, err := json.Marshal(v)
		return b, l.TTL, err
	}

	b, err := l.C.GetOrLoad(ctx, key, loader)
	if err != nil {
		return nil, err
	}
	out, err := decode[T](b)
	if err == nil {
		return out, nil
	}

	_ = l.C.Delete(ctx, key)
	if b, err = l.C.GetOrLoad(ctx, key, loader); err != nil {
		return nil, err
	}
	return decode[T](b)
}

func decode[T any](b []byte) (*T, error) {
	if string(b) == string(jsonNull) {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
