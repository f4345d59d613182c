package remote

import (
	"net/http"
	"strings"
)

// IsValidIfModifiedSince 校验 refTimestamp 是否为合法的 HTTP 日期。
// 对象存储对 If-Modified-Since 的格式非常挑剔，格式错误时会直接拒绝请求，
// 所以格式不对的时间戳宁可忽略（付出多下载的代价）也不能带上请求头。
func IsValidIfModifiedSince(timestamp string) bool {
	trimmed := strings.TrimSpace(timestamp)
	if trimmed == "" {
		return false
	}
	_, err := http.ParseTime(trimmed)
	return err == nil
}
