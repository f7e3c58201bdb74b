package ffmpeg

import (
	"fmt"
	"strings"
)

// ExecError 媒体命令执行失败
type ExecError struct {
	Op     string
	Err    error
	Stderr string
}

func (e *ExecError) Error() string {
	if tail := e.Tail(200); tail != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, tail)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Tail 返回 stderr 末尾最多 n 个字符
func (e *ExecError) Tail(n int) string {
	return TailString(strings.TrimSpace(e.Stderr), n)
}

// TailString 截取字符串末尾最多 n 个字符（按 rune 计）
func TailString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
