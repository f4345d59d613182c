package cache

import (
	"context"
	"errors"
)

// Store 负责管理数据文件磁盘缓存的读写。磁盘布局遵循：
//
//	<CachePath>/data_cache/<key>    # 响应正文
//
// 每个条目仅由正文文件组成，key 即文件名（见 Key）。
type Store interface {
	// Get 返回 key 对应的缓存正文。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, key string) ([]byte, error)

	// Put 将正文写入缓存。实现需通过临时文件 + rename 保证写入原子性，
	// 并按需创建缓存目录；目录创建失败视为 I/O 错误。
	Put(ctx context.Context, key string, body []byte) error

	// List 返回当前缓存目录下全部条目的 key。目录不存在时返回空列表。
	List(ctx context.Context) ([]string, error)

	// Cleanup 删除 keep 集合之外的所有条目，返回保留/删除的数量。
	// 目录不存在时是 no-op。仅应在一次完整成功的同步会话之后调用。
	Cleanup(ctx context.Context, keep map[string]struct{}) (kept, deleted int, err error)
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")
