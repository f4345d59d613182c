package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// dataCacheDir 是 CachePath 下存放缓存条目的固定子目录。
const dataCacheDir = "data_cache"

// NewStore 以 basePath 为根目录构建磁盘缓存，整个进程复用一份实例。
// 缓存目录本身按需创建（首次 Put 时），构造阶段不触碰文件系统。
func NewStore(basePath string) (Store, error) {
	if basePath == "" {
		return nil, errors.New("cache path required")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}

	return &fileStore{
		root:  filepath.Join(abs, dataCacheDir),
		locks: make(map[string]*entryLock),
	}, nil
}

// fileStore 通过 entryLock 避免同一 key 并发写入，同时复用 root 路径。
type fileStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func (s *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	filePath, err := s.entryPath(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

func (s *fileStore) Put(ctx context.Context, key string, body []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	unlock, err := s.lockEntry(key)
	if err != nil {
		return err
	}
	defer unlock()

	filePath, err := s.entryPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tempFile, err := os.CreateTemp(s.root, ".cache-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(body)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return err
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return err
	}
	return nil
}

func (s *fileStore) List(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".cache-") {
			continue
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}

func (s *fileStore) Cleanup(ctx context.Context, keep map[string]struct{}) (int, int, error) {
	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	default:
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	kept, deleted := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := keep[name]; ok {
			kept++
			continue
		}
		if err := os.Remove(filepath.Join(s.root, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return kept, deleted, err
		}
		deleted++
	}
	return kept, deleted, nil
}

func (s *fileStore) lockEntry(key string) (func(), error) {
	if key == "" {
		return nil, errors.New("cache key required")
	}

	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}, nil
}

// entryPath 拒绝包含路径分隔符的 key，保证条目始终位于缓存目录内部。
func (s *fileStore) entryPath(key string) (string, error) {
	if key == "" {
		return "", errors.New("cache key required")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid cache key: %s", key)
	}
	return filepath.Join(s.root, key), nil
}
