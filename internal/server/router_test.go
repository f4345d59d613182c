package server

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/conf-mirror/conf-mirror/internal/config"
)

func TestNewAppRequiresLogger(t *testing.T) {
	if _, err := NewApp(AppOptions{ListenPort: 5600}); err == nil {
		t.Fatalf("missing logger should be rejected")
	}
}

func TestNewAppRequiresValidPort(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if _, err := NewApp(AppOptions{Logger: logger, ListenPort: 0}); err == nil {
		t.Fatalf("invalid port should be rejected")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app, err := NewApp(AppOptions{Logger: logger, ListenPort: 5600})
	if err != nil {
		t.Fatalf("app error: %v", err)
	}
	app.Get("/ping", func(c fiber.Ctx) error {
		if RequestID(c) == "" {
			t.Errorf("request id should be available in handlers")
		}
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("response should carry X-Request-ID")
	}
}

func TestNewUpstreamClientTimeout(t *testing.T) {
	cfg := &config.Config{Global: config.GlobalConfig{UpstreamTimeout: config.Duration(7 * time.Second)}}
	client := NewUpstreamClient(cfg)
	if client.Timeout != 7*time.Second {
		t.Fatalf("timeout mismatch: %v", client.Timeout)
	}

	fallback := NewUpstreamClient(nil)
	if fallback.Timeout != 30*time.Second {
		t.Fatalf("nil config should fall back to 30s, got %v", fallback.Timeout)
	}
}
