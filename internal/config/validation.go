package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("ListenPort", "必须在 1-65535")
	}
	if g.CachePath == "" {
		return newFieldError("CachePath", "不能为空")
	}
	if g.SyncInterval.DurationValue() <= 0 {
		return newFieldError("SyncInterval", "必须大于 0")
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("UpstreamTimeout", "必须大于 0")
	}
	if g.RequestsPerSecond < 0 {
		return newFieldError("RequestsPerSecond", "不能为负数")
	}
	if g.RequestBurst < 0 {
		return newFieldError("RequestBurst", "不能为负数")
	}
	if g.RequestsPerSecond > 0 && g.RequestBurst == 0 {
		return newFieldError("RequestBurst", "限速开启时必须大于 0")
	}

	// ManifestURL 留空合法，表示远程同步被禁用。
	if trimmed := strings.TrimSpace(g.ManifestURL); trimmed != "" {
		if err := validateManifestURL(trimmed); err != nil {
			return fmt.Errorf("ManifestURL: %w", err)
		}
	}

	return nil
}

func validateManifestURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，清单地址: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("清单地址缺少 Host: %s", raw)
	}
	return nil
}
