package remote

import "strings"

// SanitizeURL 将 URL 中的字母全部替换为 *，仅保留最后一个路径分段与分隔符，
// 避免日志泄漏可读标识。脱敏后的值仅用于日志输出。
func SanitizeURL(raw string) string {
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		return maskLetters(raw[:i]) + raw[i:]
	}
	return maskLetters(raw)
}

func maskLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune('*')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
