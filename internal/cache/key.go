package cache

import (
	"fmt"
	"strings"
)

// Key 返回 URL 对应的缓存文件名：对去除首尾空白后的 URL 计算弱哈希（%08x），
// 再拼接其字符长度的小写 4 位十六进制（%04x）。同一 URL（trim 后）在任意
// 进程中都会得到相同的 key；哈希碰撞是该方案已知且可接受的风险。
func Key(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	return fmt.Sprintf("%08x%04x", weakHash(trimmed), len(trimmed))
}

// weakHash 是 31 乘数滚动哈希，只求稳定与廉价，不抗碰撞。
func weakHash(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = 31*h + uint32(r)
	}
	return h
}
