// Package server HTTP 服务：路由、中间件与后台清理
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"billcheck/internal/api"
	"billcheck/internal/config"
	"billcheck/internal/importer"
	"billcheck/internal/logger"
	"billcheck/internal/metrics"
	"billcheck/internal/model"
	"billcheck/internal/parser"
	"billcheck/internal/store"
)

//go:embed web
var staticFiles embed.FS

// sweepInterval 过期结果文件的清理周期
const sweepInterval = time.Minute

// Server HTTP 服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	api     *api.Handler
	metrics *metrics.Metrics
	httpSrv *http.Server
	stop    chan struct{}
}

// NewServer 创建服务器；会话数据保存在内存 SQLite 中，进程退出即清空
func NewServer(cfg *config.AppConfig, version string) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if _, err := config.EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	baseRules, err := importer.ApplyRuleFiles(model.DefaultRuleSet(), cfg.Rules.Files())
	if err != nil {
		return nil, fmt.Errorf("load rule files: %w", err)
	}

	mode, err := model.ParseMode(cfg.Reconcile.DefaultMode)
	if err != nil {
		return nil, err
	}

	sessionStore, err := store.NewMemory()
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}

	m := metrics.New()
	handler := api.NewHandler(api.Options{
		Store:        sessionStore,
		BaseRules:    baseRules,
		Fields:       parser.NewFieldMapper(parser.DefaultAliases().Merge(cfg.Aliases)),
		Observer:     m,
		ExportDir:    config.ExportsDir(cfg),
		OutputPrefix: cfg.Reconcile.OutputPrefix,
		DefaultMode:  mode,
		DownloadTTL:  time.Duration(cfg.Reconcile.DownloadTTLMinutes) * time.Minute,
		Version:      version,
	})

	s := &Server{
		router:  gin.New(),
		store:   sessionStore,
		api:     handler,
		metrics: m,
		stop:    make(chan struct{}),
	}
	s.setupRoutes(devMode)
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(gin.Recovery(), requestLogger(), s.metrics.Middleware())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	s.router.GET("/metrics", s.metrics.Handler())

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, gin.H{"error": "接口不存在"})
				return
			}
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}

	sub, _ := fs.Sub(staticFiles, "web")
	index := func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}

	// 首页
	s.router.GET("/", index)

	// 页面路由 fallback
	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "接口不存在"})
			return
		}
		index(c)
	})
}

// requestLogger 请求日志
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// Handler 返回路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，阻塞直到 Shutdown
func (s *Server) Run(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.sweepLoop()

	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.api.SweepExpired(); n > 0 {
				logger.Info(context.Background(), "expired exports removed", slog.Int("count", n))
			}
		case <-s.stop:
			return
		}
	}
}

// Shutdown 停止服务并释放会话数据
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stop)
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	s.api.Close()
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}
