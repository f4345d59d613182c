package remote

import "sort"

// Report 汇总一次同步会话的字节计数与保留集合，作为显式结果返回，
// 取代跨会话存活的可变实例状态。
type Report struct {
	BytesDownloaded int64    `json:"bytes_downloaded"`
	BytesFromCache  int64    `json:"bytes_from_cache"`
	FilesFetched    int      `json:"files_fetched"`
	KeysToKeep      []string `json:"keys_to_keep"`
	CacheKept       int      `json:"cache_kept"`
	CacheDeleted    int      `json:"cache_deleted"`
}

// Result 描述一次成功同步的产出：按清单顺序排列的正文、对应的文件名、
// 服务器侧的数据时间戳（来自清单响应的 Last-Modified），以及会话报告。
type Result struct {
	Payloads        [][]byte
	Files           []string
	ServerTimestamp string
	Report          Report
}

// session 持有单次同步会话的可变状态，不会在会话之间复用。
type session struct {
	keep            map[string]struct{}
	bytesDownloaded int64
	bytesFromCache  int64
}

func newSession() *session {
	return &session{keep: make(map[string]struct{})}
}

func (s *session) sortedKeys() []string {
	keys := make([]string, 0, len(s.keep))
	for key := range s.keep {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
