package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述全局运行时行为，同步管线与 HTTP 镜像面共享同一份参数。
type GlobalConfig struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
	// CachePath 是数据文件磁盘缓存的根目录，实际条目位于 <CachePath>/data_cache。
	CachePath string `mapstructure:"CachePath"`
	// ManifestURL 为空时远程同步被禁用，同步入口直接返回 no-op。
	ManifestURL string `mapstructure:"ManifestURL"`
	// ManifestURLOverrideFile 指向调试覆盖文件；文件存在时其内容优先于 ManifestURL。
	ManifestURLOverrideFile string   `mapstructure:"ManifestURLOverrideFile"`
	SyncInterval            Duration `mapstructure:"SyncInterval"`
	UpstreamTimeout         Duration `mapstructure:"UpstreamTimeout"`
	// RequestsPerSecond/RequestBurst 限制回源 GET 的速率，0 表示不限速。
	RequestsPerSecond float64 `mapstructure:"RequestsPerSecond"`
	RequestBurst      int     `mapstructure:"RequestBurst"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
}

// SyncEnabled 表示是否配置了可用的清单地址（覆盖文件另行解析）。
func (g GlobalConfig) SyncEnabled() bool {
	return strings.TrimSpace(g.ManifestURL) != ""
}
