package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/conf-mirror/conf-mirror/internal/cache"
	"github.com/conf-mirror/conf-mirror/internal/config"
	"github.com/conf-mirror/conf-mirror/internal/logging"
	"github.com/conf-mirror/conf-mirror/internal/mirror"
	"github.com/conf-mirror/conf-mirror/internal/server"
	"github.com/conf-mirror/conf-mirror/internal/server/routes"
	"github.com/conf-mirror/conf-mirror/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	syncOnce    bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["sync_enabled"] = cfg.Global.SyncEnabled()
		fields["listen_port"] = cfg.Global.ListenPort
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	store, err := cache.NewStore(cfg.Global.CachePath)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化缓存目录失败: %v\n", err)
		return 1
	}

	// CLI 启动遵循“配置 → 磁盘缓存 → Runner → Fiber server”顺序，
	// 保证同步管线与镜像面共享同一份缓存与 HTTP client 实例。
	httpClient := server.NewUpstreamClient(cfg)
	runner, err := mirror.NewRunner(mirror.Options{
		Config: cfg.Global,
		Logger: logger,
		Store:  store,
		Client: httpClient,
	})
	if err != nil {
		fmt.Fprintf(stdErr, "初始化同步 Runner 失败: %v\n", err)
		return 1
	}

	if opts.syncOnce {
		return runSyncOnce(runner, logger)
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["sync_interval"] = cfg.Global.SyncInterval.DurationValue().String()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, runner, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// runSyncOnce 执行一次同步并把会话报告以 JSON 输出到 stdout。
func runSyncOnce(runner *mirror.Runner, logger *logrus.Logger) int {
	snapshot, err := runner.SyncOnce(context.Background())
	if err != nil {
		fmt.Fprintf(stdErr, "同步失败: %v\n", err)
		return 1
	}
	if snapshot == nil {
		fmt.Fprintln(stdOut, `{"synced":false}`)
		return 0
	}

	encoded, err := json.Marshal(snapshot.Report)
	if err != nil {
		fmt.Fprintf(stdErr, "序列化报告失败: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdOut, string(encoded))
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("conf-mirror", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		syncOnce   bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 CONF_MIRROR_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&syncOnce, "once", false, "执行一次同步并输出报告后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("CONF_MIRROR_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		syncOnce:    syncOnce,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(cfg *config.Config, runner *mirror.Runner, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		ListenPort: port,
	})
	if err != nil {
		return err
	}
	routes.RegisterMirrorRoutes(app, runner, logger)

	go runner.Run(context.Background(), cfg.Global.SyncInterval.DurationValue())

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
