// Package api HTTP 接口：规则维护、账单核对与结果下载
package api

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"billcheck/internal/exporter"
	"billcheck/internal/model"
	"billcheck/internal/parser"
	"billcheck/internal/report"
	"billcheck/internal/store"
)

// Options 处理器依赖
type Options struct {
	Store        *store.Store
	BaseRules    model.RuleSet // 未被会话覆盖时使用的规则
	Fields       *parser.FieldMapper
	Observer     report.Observer
	ExportDir    string
	OutputPrefix string
	DefaultMode  model.Mode
	DownloadTTL  time.Duration
	Version      string
}

// Handler API 处理器
type Handler struct {
	store       *store.Store
	baseRules   model.RuleSet
	runner      *report.Runner
	exporter    *exporter.Exporter
	downloads   *exportDownloadStore
	exportDir   string
	defaultMode model.Mode
	downloadTTL time.Duration
	version     string
	prefix      string
}

// NewHandler 创建 API 处理器
func NewHandler(opts Options) *Handler {
	if opts.DefaultMode == "" {
		opts.DefaultMode = model.ModeStandard
	}
	if opts.DownloadTTL <= 0 {
		opts.DownloadTTL = 30 * time.Minute
	}
	if opts.ExportDir == "" {
		opts.ExportDir = os.TempDir()
	}
	if opts.OutputPrefix == "" {
		opts.OutputPrefix = exporter.DefaultPrefix
	}
	runner := report.NewRunner(opts.Fields, opts.Observer)
	return &Handler{
		store:       opts.Store,
		baseRules:   opts.BaseRules.Clone(),
		runner:      runner,
		exporter:    exporter.NewExporter(runner.Fields(), opts.OutputPrefix),
		downloads:   newExportDownloadStore(),
		exportDir:   opts.ExportDir,
		defaultMode: opts.DefaultMode,
		downloadTTL: opts.DownloadTTL,
		version:     opts.Version,
		prefix:      opts.OutputPrefix,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 会话配置
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	// 规则维护
	router.GET("/rules", h.GetRules)
	router.PUT("/rules/:kind", h.PutRules)
	router.DELETE("/rules/:kind", h.DeleteRules)
	router.POST("/rules/reset", h.ResetRules)
	router.POST("/rules/:kind/import", h.ImportRules)

	// 账单核对
	router.POST("/reconcile", h.Reconcile)
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)

	// 结果下载
	router.GET("/export/download/:token", h.DownloadExport)
}

// SweepExpired 删除过期且未被下载的结果文件
func (h *Handler) SweepExpired() int {
	paths := h.downloads.sweep()
	for _, p := range paths {
		removeExport(p)
	}
	return len(paths)
}

// Close 会话结束：作废全部下载令牌并删除未下载的结果文件
func (h *Handler) Close() {
	for _, p := range h.downloads.drain() {
		removeExport(p)
	}
}

// removeExport 删除结果文件及其批次目录（目录非空时保留）
func removeExport(path string) {
	_ = os.Remove(path)
	_ = os.Remove(filepath.Dir(path))
}
