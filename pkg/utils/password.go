package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost bcrypt 成本固定，不走配置
const PasswordCost = bcrypt.DefaultCost

// MaxPasswordBytes bcrypt 只使用明文前 72 字节
const MaxPasswordBytes = 72

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword 加盐单向哈希；同一明文每次结果不同
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword 校验明文与哈希；哈希格式非法也视为不匹配。
// 超长明文一律不匹配（CompareHashAndPassword 只看前 72 字节）
func CheckPassword(pw, hashed string) bool {
	if hashed == "" || len(pw) > MaxPasswordBytes {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw))
	return err == nil
}

// IsTooLong 用于把 bcrypt 的长度错误映射成校验错误
func IsTooLong(err error) bool { return errors.Is(err, ErrPasswordTooLong) }
