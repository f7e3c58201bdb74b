package id

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var fileIDPattern = regexp.MustCompile(`^[0-9a-f]{12}$`)

// New 生成新的UUID（string格式）
func New() string {
	return uuid.New().String()
}

// IsValid 验证UUID格式是否有效
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// NewFileID 生成 12 位十六进制文件 ID
// 文件 ID 会直接拼进存储 key，因此只允许 [0-9a-f]
func NewFileID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// IsFileID 校验文件 ID 格式
func IsFileID(s string) bool {
	return fileIDPattern.MatchString(s)
}
