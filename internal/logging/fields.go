package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// SyncFields 提供同步会话常用字段（会话 ID、清单来源、是否来自覆盖文件），
// 供同一会话的各条日志复用。
func SyncFields(sessionID, manifestURL string, overridden bool) logrus.Fields {
	return logrus.Fields{
		"session_id":   sessionID,
		"manifest_url": manifestURL,
		"overridden":   overridden,
	}
}

// FetchFields 描述单个数据文件的拉取结果，url 应当先经过脱敏处理。
func FetchFields(sessionID, sanitizedURL, cacheKey string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"session_id": sessionID,
		"url":        sanitizedURL,
		"cache_key":  cacheKey,
		"cache_hit":  cacheHit,
	}
}
