package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// configFixture 生成一份指向临时目录的配置文件并返回其路径。
func configFixture(t *testing.T, name string) string {
	t.Helper()

	dir := t.TempDir()
	var content string
	switch name {
	case "valid.toml":
		content = fmt.Sprintf(`
ListenPort = 5600
LogLevel = "info"
CachePath = "%s"
ManifestURL = "https://conference.example.com/data/manifest.json"
SyncInterval = "15m"
`, filepath.Join(dir, "storage"))
	case "disabled.toml":
		content = fmt.Sprintf(`
LogLevel = "info"
CachePath = "%s"
ManifestURL = ""
`, filepath.Join(dir, "storage"))
	case "missing.toml":
		content = `
CachePath = ""
`
	default:
		t.Fatalf("未知的配置 fixture: %s", name)
	}

	return writeConfigFile(t, content)
}

// writeConfigFile 将配置内容写入临时文件。
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(file, []byte(strings.TrimSpace(content)), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return file
}
