package accounts

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateError 判断错误是否为唯一约束冲突。
// 连接开启了 TranslateError，两种引擎都给出 gorm.ErrDuplicatedKey；
// 字符串匹配兜底未经翻译的驱动原始错误。
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
