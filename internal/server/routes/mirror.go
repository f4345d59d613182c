package routes

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/conf-mirror/conf-mirror/internal/mirror"
	"github.com/conf-mirror/conf-mirror/internal/server"
	"github.com/conf-mirror/conf-mirror/internal/version"
)

// RegisterMirrorRoutes 注册数据镜像面与 /-/status 诊断接口。
func RegisterMirrorRoutes(app *fiber.App, runner *mirror.Runner, logger *logrus.Logger) {
	if app == nil || runner == nil {
		return
	}

	app.Get("/-/status", func(c fiber.Ctx) error {
		snapshot := runner.Latest()
		payload := fiber.Map{
			"version": version.Full(),
			"stats":   runner.Stats(),
			"synced":  snapshot != nil,
		}
		if snapshot != nil {
			payload["synced_at"] = snapshot.SyncedAt.Format(time.RFC3339)
			payload["server_timestamp"] = snapshot.ServerTimestamp
			payload["files"] = snapshotFileNames(snapshot)
			payload["report"] = snapshot.Report
		}
		return c.JSON(payload)
	})

	app.Get("/data/:name", func(c fiber.Ctx) error {
		snapshot := runner.Latest()
		if snapshot == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "not_synced"})
		}

		name := c.Params("name")
		body, ok := snapshot.Files[name]
		if !ok {
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"action":     "mirror_lookup",
					"file":       name,
					"request_id": server.RequestID(c),
				}).Warn("请求的数据文件不在快照中")
			}
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "file_not_found"})
		}

		c.Set("Content-Type", "application/json")
		c.Set("X-Conf-Mirror-Synced-At", snapshot.SyncedAt.Format(time.RFC3339))
		return c.Send(body)
	})
}

func snapshotFileNames(snapshot *mirror.Snapshot) []string {
	names := make([]string, 0, len(snapshot.Files))
	for name := range snapshot.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
