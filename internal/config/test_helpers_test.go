package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testConfigPath 将给定名字的 TOML fixture 写入临时目录并返回路径。
func testConfigPath(t *testing.T, name string) string {
	t.Helper()

	contents, ok := fixtures[name]
	if !ok {
		t.Fatalf("未知的配置 fixture: %s", name)
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("写入 fixture 失败: %v", err)
	}
	return path
}

var fixtures = map[string]string{
	"valid.toml": `
ListenPort = 5600
LogLevel = "info"
CachePath = "./cache"
ManifestURL = "https://conference.example.com/data/manifest.json"
SyncInterval = "15m"
UpstreamTimeout = 20
`,
	"disabled.toml": `
CachePath = "./cache"
ManifestURL = ""
`,
	"bad_url.toml": `
CachePath = "./cache"
ManifestURL = "ftp://mirror.example.com/manifest.json"
`,
	"missing.toml": `
ListenPort = 0
CachePath = ""
`,
}

// validConfig 构造一份可通过校验的配置，供单测直接修改字段使用。
func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			ListenPort:      5600,
			LogLevel:        "info",
			CachePath:       "./cache",
			ManifestURL:     "https://conference.example.com/data/manifest.json",
			SyncInterval:    Duration(15 * time.Minute),
			UpstreamTimeout: Duration(20 * time.Second),
			RequestBurst:    1,
		},
	}
}
