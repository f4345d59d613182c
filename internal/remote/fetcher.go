package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/conf-mirror/conf-mirror/internal/cache"
	"github.com/conf-mirror/conf-mirror/internal/logging"
)

// Options 聚合 Fetcher 的全部依赖，便于在测试中注入桩实现。
type Options struct {
	// ManifestURL 是已经过 ResolveManifestURL 处理的清单地址；为空表示同步禁用。
	ManifestURL string
	// Overridden 仅用于日志字段，表示地址来自调试覆盖文件。
	Overridden bool
	Client     *http.Client
	Logger     *logrus.Logger
	Store      cache.Store
	// Limiter 可选；配置后所有回源 GET 均先等待令牌。
	Limiter *rate.Limiter
}

// Fetcher 执行“清单条件下载 → 数据文件 cache-first 拉取 → 缓存清理”的
// 同步管线。实例不做跨会话状态复用，也不支持多 goroutine 并发调用。
type Fetcher struct {
	manifestURL string
	overridden  bool
	client      *http.Client
	logger      *logrus.Logger
	store       cache.Store
	limiter     *rate.Limiter
}

// New 构造 Fetcher。Client/Logger/Store 均为必需依赖。
func New(opts Options) (*Fetcher, error) {
	if opts.Client == nil {
		return nil, errors.New("http client is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Store == nil {
		return nil, errors.New("cache store is required")
	}

	return &Fetcher{
		manifestURL: strings.TrimSpace(opts.ManifestURL),
		overridden:  opts.Overridden,
		client:      opts.Client,
		logger:      opts.Logger,
		store:       opts.Store,
		limiter:     opts.Limiter,
	}, nil
}

// FetchIfNewer 在服务器数据晚于 refTimestamp 时执行一次完整同步。
//
// 返回值约定：
//   - 清单地址为空（同步禁用）或服务器返回 304 时，结果与错误均为 nil；
//   - 任何数据文件拉取失败都会中止整个会话并返回错误，此时不执行缓存清理，
//     已有缓存保持原样；
//   - 成功时返回按清单顺序排列的正文及会话报告。
func (f *Fetcher) FetchIfNewer(ctx context.Context, refTimestamp string) (*Result, error) {
	if f.manifestURL == "" {
		f.logger.WithField("action", "sync").Warn("清单地址为空，远程同步已禁用")
		return nil, nil
	}

	sessionID := uuid.NewString()
	fields := logging.SyncFields(sessionID, SanitizeURL(f.manifestURL), f.overridden)
	fields["action"] = "sync"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build manifest request: %w", err)
	}

	if refTimestamp != "" {
		if IsValidIfModifiedSince(refTimestamp) {
			req.Header.Set("If-Modified-Since", refTimestamp)
		} else {
			f.logger.WithFields(fields).WithField("ref_timestamp", refTimestamp).
				Warn("refTimestamp 格式非法，忽略 If-Modified-Since，可能下载冗余数据")
		}
	}

	if err := f.waitQuota(ctx); err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest %s: %w", SanitizeURL(f.manifestURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		f.logger.WithFields(fields).Debug("服务器数据未更新，跳过本次同步")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch manifest %s: status %d", SanitizeURL(f.manifestURL), resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read manifest body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fetch manifest %s: empty body", SanitizeURL(f.manifestURL))
	}

	manifest, err := ParseManifest(body)
	if err != nil {
		return nil, err
	}

	serverTimestamp := resp.Header.Get("Last-Modified")
	fields["data_files"] = len(manifest.DataFiles)
	f.logger.WithFields(fields).Debug("清单解析完成，开始处理数据文件")

	return f.processManifest(ctx, sessionID, manifest, serverTimestamp)
}

// processManifest 逐个拉取清单里的数据文件，任一失败则整体失败（不返回部分结果）。
// 仅在全部成功后触发缓存清理，保证失败的同步不破坏已有缓存。
func (f *Fetcher) processManifest(ctx context.Context, sessionID string, manifest *Manifest, serverTimestamp string) (*Result, error) {
	sess := newSession()
	payloads := make([][]byte, len(manifest.DataFiles))
	files := make([]string, len(manifest.DataFiles))

	for i, fileURL := range manifest.DataFiles {
		body, err := f.fetchFile(ctx, sess, sessionID, fileURL)
		if err != nil {
			return nil, fmt.Errorf("fetch data file %s: %w", SanitizeURL(fileURL), err)
		}
		payloads[i] = body
		files[i] = fileBaseName(fileURL)
	}

	kept, deleted, err := f.store.Cleanup(ctx, sess.keep)
	if err != nil {
		// 同步本身已经成功，清理失败只影响磁盘占用，下个会话还会再清一次。
		f.logger.WithField("session_id", sessionID).WithError(err).Warn("缓存清理失败")
	}

	f.logger.WithFields(logrus.Fields{
		"action":        "cache_cleanup",
		"session_id":    sessionID,
		"kept":          kept,
		"deleted":       deleted,
		"bytes_down":    sess.bytesDownloaded,
		"bytes_cache":   sess.bytesFromCache,
		"files_fetched": len(manifest.DataFiles),
	}).Info("同步会话完成")

	return &Result{
		Payloads:        payloads,
		Files:           files,
		ServerTimestamp: serverTimestamp,
		Report: Report{
			BytesDownloaded: sess.bytesDownloaded,
			BytesFromCache:  sess.bytesFromCache,
			FilesFetched:    len(manifest.DataFiles),
			KeysToKeep:      sess.sortedKeys(),
			CacheKept:       kept,
			CacheDeleted:    deleted,
		},
	}, nil
}

// fetchFile 以 cache-first 的方式获取单个数据文件。相对地址相对于清单 URL
// 所在目录解析。命中与回源都会把 key 加入会话保留集合。
func (f *Fetcher) fetchFile(ctx context.Context, sess *session, sessionID, rawURL string) ([]byte, error) {
	fileURL, err := f.resolveFileURL(rawURL)
	if err != nil {
		return nil, err
	}

	key := cache.Key(fileURL)

	body, err := f.store.Get(ctx, key)
	switch {
	case err == nil && len(body) > 0:
		sess.bytesFromCache += int64(len(body))
		sess.keep[key] = struct{}{}
		f.logger.WithFields(logging.FetchFields(sessionID, SanitizeURL(fileURL), key, true)).
			Debug("缓存命中")
		return body, nil
	case err != nil && !errors.Is(err, cache.ErrNotFound):
		// 读缓存失败按未命中处理，继续尝试回源。
		f.logger.WithFields(logging.FetchFields(sessionID, SanitizeURL(fileURL), key, false)).
			WithError(err).Warn("读取缓存失败，按缓存未命中处理")
	}

	f.logger.WithFields(logging.FetchFields(sessionID, SanitizeURL(fileURL), key, false)).
		Debug("缓存未命中，从网络下载")

	if err := f.waitQuota(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	sess.bytesDownloaded += int64(len(body))
	if err := f.store.Put(ctx, key, body); err != nil {
		return nil, fmt.Errorf("write cache: %w", err)
	}
	sess.keep[key] = struct{}{}
	return body, nil
}

// resolveFileURL 将相对条目解析为清单目录下的绝对地址。
func (f *Fetcher) resolveFileURL(rawURL string) (string, error) {
	if strings.Contains(rawURL, "://") {
		return rawURL, nil
	}
	i := strings.LastIndex(f.manifestURL, "/")
	if i < 0 {
		return "", fmt.Errorf("cannot resolve relative url against manifest url")
	}
	return f.manifestURL[:i] + "/" + rawURL, nil
}

func (f *Fetcher) waitQuota(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	return f.limiter.Wait(ctx)
}

// fileBaseName 取数据文件 URL 的最后一个路径分段（去掉查询串），
// 作为镜像面的对外文件名。
func fileBaseName(rawURL string) string {
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		return path.Base(parsed.Path)
	}
	if i := strings.Index(rawURL, "?"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return path.Base(rawURL)
}
