package remote

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveManifestURLDefault(t *testing.T) {
	res := ResolveManifestURL("https://example.com/manifest.json", "", quietLogger())
	if res.Overridden {
		t.Fatalf("没有覆盖文件时不应标记为 overridden")
	}
	if res.URL != "https://example.com/manifest.json" {
		t.Fatalf("应返回配置值，得到 %s", res.URL)
	}
}

func TestResolveManifestURLMissingOverrideFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "override.txt")
	res := ResolveManifestURL("https://example.com/manifest.json", missing, quietLogger())
	if res.Overridden || res.URL != "https://example.com/manifest.json" {
		t.Fatalf("覆盖文件不存在时应回退到配置值: %+v", res)
	}
}

func TestResolveManifestURLOverrideWins(t *testing.T) {
	override := filepath.Join(t.TempDir(), "override.txt")
	if err := os.WriteFile(override, []byte("  https://debug.example.com/manifest.json \n"), 0o644); err != nil {
		t.Fatalf("写入覆盖文件失败: %v", err)
	}

	res := ResolveManifestURL("https://example.com/manifest.json", override, quietLogger())
	if !res.Overridden {
		t.Fatalf("覆盖文件存在时应标记为 overridden")
	}
	if res.URL != "https://debug.example.com/manifest.json" {
		t.Fatalf("覆盖文件内容应当被 trim 后生效，得到 %q", res.URL)
	}
}

func TestResolveManifestURLEmptyOverrideFallsBack(t *testing.T) {
	override := filepath.Join(t.TempDir(), "override.txt")
	if err := os.WriteFile(override, []byte("   \n"), 0o644); err != nil {
		t.Fatalf("写入覆盖文件失败: %v", err)
	}

	res := ResolveManifestURL("https://example.com/manifest.json", override, quietLogger())
	if res.Overridden || res.URL != "https://example.com/manifest.json" {
		t.Fatalf("空白覆盖文件应回退到配置值: %+v", res)
	}
}
