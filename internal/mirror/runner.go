package mirror

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/conf-mirror/conf-mirror/internal/cache"
	"github.com/conf-mirror/conf-mirror/internal/config"
	"github.com/conf-mirror/conf-mirror/internal/remote"
)

// Snapshot 是最近一次成功同步的不可变视图，HTTP 镜像面直接从这里出数据。
type Snapshot struct {
	SyncedAt        time.Time
	ServerTimestamp string
	// Files 以数据文件名（URL 最后一个路径分段）索引正文。
	Files  map[string][]byte
	Report remote.Report
}

// Stats 汇总跨会话的累计计数，供诊断接口只读展示。
type Stats struct {
	SyncCount            int    `json:"sync_count"`
	TotalBytesDownloaded int64  `json:"total_bytes_downloaded"`
	TotalBytesFromCache  int64  `json:"total_bytes_from_cache"`
	LastServerTimestamp  string `json:"last_server_timestamp"`
}

// Options 聚合 Runner 的依赖。
type Options struct {
	Config config.GlobalConfig
	Logger *logrus.Logger
	Store  cache.Store
	Client *http.Client
}

// Runner 驱动周期性同步并持有最新 Snapshot。每次同步会话都会构造全新的
// Fetcher（保留集合与字节计数都是会话私有的），Runner 自身只累计只读统计。
type Runner struct {
	cfg        config.GlobalConfig
	logger     *logrus.Logger
	store      cache.Store
	client     *http.Client
	limiter    *rate.Limiter
	resolution remote.Resolution

	mu     sync.Mutex
	latest *Snapshot
	stats  Stats
}

// NewRunner 构造 Runner，清单地址（含调试覆盖）在此处一次性解析。
func NewRunner(opts Options) (*Runner, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Store == nil {
		return nil, errors.New("cache store is required")
	}
	if opts.Client == nil {
		return nil, errors.New("http client is required")
	}

	var limiter *rate.Limiter
	if opts.Config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.Config.RequestsPerSecond), opts.Config.RequestBurst)
	}

	resolution := remote.ResolveManifestURL(
		opts.Config.ManifestURL,
		opts.Config.ManifestURLOverrideFile,
		opts.Logger,
	)

	return &Runner{
		cfg:        opts.Config,
		logger:     opts.Logger,
		store:      opts.Store,
		client:     opts.Client,
		limiter:    limiter,
		resolution: resolution,
	}, nil
}

// SyncOnce 执行一次同步会话。服务器数据未更新（或同步被禁用）时返回当前
// Snapshot（可能为 nil）且不报错；失败时保留旧 Snapshot 并返回错误。
func (r *Runner) SyncOnce(ctx context.Context) (*Snapshot, error) {
	fetcher, err := remote.New(remote.Options{
		ManifestURL: r.resolution.URL,
		Overridden:  r.resolution.Overridden,
		Client:      r.client,
		Logger:      r.logger,
		Store:       r.store,
		Limiter:     r.limiter,
	})
	if err != nil {
		return nil, err
	}

	result, err := fetcher.FetchIfNewer(ctx, r.lastServerTimestamp())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if result == nil {
		// 未更新或同步禁用，旧快照继续生效
		r.stats.SyncCount++
		return r.latest, nil
	}

	files := make(map[string][]byte, len(result.Files))
	for i, name := range result.Files {
		files[name] = result.Payloads[i]
	}

	snapshot := &Snapshot{
		SyncedAt:        time.Now().UTC(),
		ServerTimestamp: result.ServerTimestamp,
		Files:           files,
		Report:          result.Report,
	}
	r.latest = snapshot
	r.stats.SyncCount++
	r.stats.TotalBytesDownloaded += result.Report.BytesDownloaded
	r.stats.TotalBytesFromCache += result.Report.BytesFromCache
	r.stats.LastServerTimestamp = result.ServerTimestamp
	return snapshot, nil
}

// Run 先立即同步一次，然后按 interval 周期执行，直到 ctx 取消。
// 单次失败只记录日志，等待下一个周期；本层不做重试或退避。
func (r *Runner) Run(ctx context.Context, interval time.Duration) {
	if _, err := r.SyncOnce(ctx); err != nil {
		r.logger.WithField("action", "sync").WithError(err).Error("同步失败，等待下个周期")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.SyncOnce(ctx); err != nil {
				r.logger.WithField("action", "sync").WithError(err).Error("同步失败，等待下个周期")
			}
		}
	}
}

// Latest 返回最近一次成功同步的快照；首个成功会话之前为 nil。
func (r *Runner) Latest() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Stats 返回跨会话累计统计的副本。
func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *Runner) lastServerTimestamp() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return ""
	}
	return r.latest.ServerTimestamp
}
