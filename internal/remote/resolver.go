package remote

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Resolution 记录清单地址的最终取值及其来源，替代静默的 catch-and-fallback。
type Resolution struct {
	// URL 是生效的清单地址，可能为空（远程同步禁用）。
	URL string
	// Overridden 表示取值来自覆盖文件而非配置。
	Overridden bool
}

// ResolveManifestURL 计算本次进程生效的清单地址。覆盖文件存在时，其 trim 后
// 的内容优先于配置值；读取失败则回退到配置值并输出告警。每个 Fetcher 实例
// 只在构造时解析一次。
func ResolveManifestURL(configured, overridePath string, logger *logrus.Logger) Resolution {
	fallback := Resolution{URL: strings.TrimSpace(configured)}
	if overridePath == "" {
		return fallback
	}

	contents, err := os.ReadFile(overridePath)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.WithFields(logrus.Fields{
				"action": "manifest_override",
				"path":   overridePath,
			}).WithError(err).Warn("覆盖文件读取失败，回退到配置值")
		}
		return fallback
	}

	overrideURL := strings.TrimSpace(string(contents))
	if overrideURL == "" {
		return fallback
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"action": "manifest_override",
			"url":    SanitizeURL(overrideURL),
		}).Warn("调试覆盖生效，使用覆盖文件中的清单地址")
	}
	return Resolution{URL: overrideURL, Overridden: true}
}
