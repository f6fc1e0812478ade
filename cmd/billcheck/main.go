package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"billcheck/internal/config"
	"billcheck/internal/exporter"
	"billcheck/internal/importer"
	"billcheck/internal/logger"
	"billcheck/internal/model"
	"billcheck/internal/parser"
	"billcheck/internal/report"
	"billcheck/internal/server"
	"billcheck/internal/util"
)

var version = "dev"

var (
	configPath  = pflag.String("config", "", "配置文件路径 (默认为可执行文件目录下的 config.toml)")
	port        = pflag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode     = pflag.Bool("dev", false, "开发模式")
	dataDir     = pflag.String("data-dir", "", "数据目录 (覆盖配置文件)")
	logLevel    = pflag.String("log-level", "", "日志级别 debug|info|warn|error")
	showVersion = pflag.Bool("version", false, "显示版本")

	billPath      = pflag.String("bill", "", "账单文件 (xlsx / csv)；指定后执行一次核对并退出")
	mode          = pflag.String("mode", "", "核对模式 standard|contract (默认取配置)")
	ratesPath     = pflag.String("rates", "", "运费规则文件，按模式作为标准价目表或合同价")
	packagingPath = pflag.String("packaging", "", "包装材料模板文件")
	insurancePath = pflag.String("insurance", "", "保价费率文件 (xlsx / csv / toml)")
	outDir        = pflag.String("out", ".", "结果文件输出目录")
)

func main() {
	pflag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, info, err := loadConfig()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *mode != "" {
		cfg.Reconcile.DefaultMode = *mode
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}

	if *billPath != "" {
		if err := reconcileOnce(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "核对失败: %v\n", err)
			os.Exit(1)
		}
		return
	}

	serve(cfg, info)
}

func loadConfig() (*config.AppConfig, config.LoadConfigInfo, error) {
	if *configPath != "" {
		return config.LoadFile(*configPath)
	}
	return config.LoadConfigWithInfo()
}

// reconcileOnce 命令行模式：读取输入、核对、写出结果工作簿
func reconcileOnce(cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, err := model.ParseMode(cfg.Reconcile.DefaultMode)
	if err != nil {
		return err
	}

	ruleFiles := cfg.Rules.Files()
	if *ratesPath != "" {
		if m == model.ModeContract {
			ruleFiles[model.RuleKindContract] = *ratesPath
		} else {
			ruleFiles[model.RuleKindStandard] = *ratesPath
		}
	}
	if *packagingPath != "" {
		ruleFiles[model.RuleKindPackaging] = *packagingPath
	}
	if *insurancePath != "" {
		ruleFiles[model.RuleKindInsurance] = *insurancePath
	}

	inputs, err := importer.NewCoordinator(model.DefaultRuleSet()).Load(ctx, importer.LoadOptions{
		BillPath:  *billPath,
		RuleFiles: ruleFiles,
	})
	if err != nil {
		return err
	}

	fields := parser.NewFieldMapper(parser.DefaultAliases().Merge(cfg.Aliases))
	rep, err := report.NewRunner(fields, nil).Run(ctx, m, inputs.Rules, inputs.Bill.Rows)
	if err != nil {
		if errors.Is(err, report.ErrNoRateRules) {
			return fmt.Errorf("%w (请通过 --rates 指定运费规则)", err)
		}
		return err
	}

	path, err := exporter.NewExporter(fields, cfg.Reconcile.OutputPrefix).WriteReport(*outDir, rep, func(evt exporter.ProgressEvent) {
		fmt.Printf("\r导出中 %3d%% %s", evt.Percent, evt.Stage)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	s := rep.Stats
	fmt.Printf("账单: %s (%s 模式)\n", inputs.Bill.Name, rep.Mode)
	fmt.Printf("总行数 %d，一致 %d，差异 %d，异常 %d，订单 %d\n",
		s.TotalRows, s.MatchedRows, s.MismatchedRows, s.ErrorRows, s.TotalOrders)
	fmt.Printf("差异合计: %s\n", s.TotalDiffAmount.StringFixed(2))
	for _, e := range rep.Errors {
		fmt.Printf("  第 %d 行: %v\n", e.RowNum, e.Err)
	}
	fmt.Printf("结果文件: %s\n", path)
	return nil
}

func serve(cfg *config.AppConfig, info config.LoadConfigInfo) {
	fmt.Println("==========================================")
	fmt.Println("  BillCheck - 快递账单核对工具")
	fmt.Println("==========================================")

	if !info.PortSpecified && *port == 0 {
		cfg.Server.Port = util.FindAvailablePort(cfg.Server.Port)
	}

	srv, err := server.NewServer(cfg, version)
	if err != nil {
		log.Fatalf("服务初始化失败: %v", err)
	}
	fmt.Printf("数据目录: %s\n", config.ResolveDataDir(cfg))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 打开浏览器
	if !cfg.Server.DevMode {
		fmt.Printf("正在打开浏览器: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	} else {
		fmt.Printf("开发模式: 请访问 %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("关闭服务失败: %v", err)
	}
}
