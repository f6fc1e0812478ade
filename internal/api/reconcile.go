package api

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"billcheck/internal/importer"
	"billcheck/internal/logger"
	"billcheck/internal/model"
	"billcheck/internal/report"
	"billcheck/internal/store"
)

// RowErrorResponse 单行处理失败
type RowErrorResponse struct {
	RowNum int    `json:"rowNum"`
	Error  string `json:"error"`
}

// ReconcileResponse 核对响应
type ReconcileResponse struct {
	RunID         string                   `json:"runId"`
	Mode          model.Mode               `json:"mode"`
	BillName      string                   `json:"billName"`
	Stats         model.CalculationStats   `json:"stats"`
	Statistics    report.Statistics        `json:"statistics"`
	Results       []model.ProcessingResult `json:"results"`
	Errors        []RowErrorResponse       `json:"errors"`
	Discrepancies int                      `json:"discrepancies"` // 差额超过容差的行数
	FileName      string                   `json:"fileName"`
	DownloadToken string                   `json:"downloadToken"`
	ExpiresAt     time.Time                `json:"expiresAt"`
}

// Reconcile 上传账单并执行核对
// POST /api/reconcile
func (h *Handler) Reconcile(c *gin.Context) {
	ctx := c.Request.Context()

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	cur, err := h.settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}
	mode := cur.mode
	if raw := c.PostForm("mode"); raw != "" {
		if mode, err = model.ParseMode(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的核对模式: " + raw})
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	bill, err := importer.ReadTable(fh.Filename, f)
	_ = f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "解析账单失败: " + err.Error()})
		return
	}

	// 规则在核对开始时取快照，核对期间的修改不影响本批次
	rules, err := h.store.LoadRuleSet(h.baseRules)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取规则失败"})
		return
	}

	rep, err := h.runner.Run(ctx, mode, rules, bill.Rows)
	switch {
	case errors.Is(err, report.ErrNoBillRows):
		c.JSON(http.StatusBadRequest, gin.H{"error": "账单中没有数据行"})
		return
	case errors.Is(err, report.ErrNoRateRules):
		c.JSON(http.StatusBadRequest, gin.H{"error": "当前模式没有可用的运费规则"})
		return
	case err != nil:
		logger.Error(ctx, "reconcile failed", slog.String("bill", bill.Name), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "核对失败"})
		return
	}

	runCtx := logger.WithRunID(ctx, rep.ID)
	exported := logger.LogDuration(runCtx, "result workbook written")
	path, err := h.exporter.WithPrefix(cur.prefix).WriteReport(filepath.Join(h.exportDir, rep.ID), rep, nil)
	if err != nil {
		logger.Error(runCtx, "export failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成结果文件失败"})
		return
	}
	exported()
	fileName := filepath.Base(path)
	token := h.downloads.put(path, fileName, rep.ID, cur.ttl)

	err = h.store.InsertRun(store.RunRecord{
		ID:             rep.ID,
		Mode:           rep.Mode,
		BillName:       bill.Name,
		TotalRows:      rep.Stats.TotalRows,
		MatchedRows:    rep.Stats.MatchedRows,
		MismatchedRows: rep.Stats.MismatchedRows,
		ErrorRows:      rep.Stats.ErrorRows,
		TotalOrders:    rep.Stats.TotalOrders,
		TotalDiff:      rep.Stats.TotalDiffAmount,
		OutputFile:     fileName,
		StartedAt:      rep.StartedAt,
		FinishedAt:     rep.FinishedAt,
	})
	if err != nil {
		logger.Warn(runCtx, "record run failed", slog.Any("error", err))
	}

	errs := make([]RowErrorResponse, 0, len(rep.Errors))
	for _, e := range rep.Errors {
		errs = append(errs, RowErrorResponse{RowNum: e.RowNum, Error: e.Err.Error()})
	}

	c.JSON(http.StatusOK, ReconcileResponse{
		RunID:         rep.ID,
		Mode:          rep.Mode,
		BillName:      bill.Name,
		Stats:         rep.Stats,
		Statistics:    rep.Statistics,
		Results:       rep.Results,
		Errors:        errs,
		Discrepancies: len(rep.Discrepancies()),
		FileName:      fileName,
		DownloadToken: token,
		ExpiresAt:     time.Now().Add(cur.ttl),
	})
}

// ListRuns 核对记录
// GET /api/runs
func (h *Handler) ListRuns(c *gin.Context) {
	runs, err := h.store.ListRuns(0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取核对记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun 单次核对记录
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.store.GetRun(c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "核对记录不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取核对记录失败"})
		return
	}
	c.JSON(http.StatusOK, run)
}
