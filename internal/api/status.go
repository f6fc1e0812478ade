package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"billcheck/internal/model"
	"billcheck/internal/parser"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Version      string                 `json:"version"`
	AliasVersion int                    `json:"aliasVersion"` // 列名别名表版本
	DefaultMode  model.Mode             `json:"defaultMode"`
	RuleCounts   map[model.RuleKind]int `json:"ruleCounts"`
	RunCount     int                    `json:"runCount"`
	LastRunTime  string                 `json:"lastRunTime"` // 最近一次核对完成时间
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	rules, err := h.store.LoadRuleSet(h.baseRules)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取规则失败"})
		return
	}

	mode, err := h.store.GetDefaultMode(h.defaultMode)
	if err != nil {
		mode = h.defaultMode
	}

	counts := make(map[model.RuleKind]int, len(model.RuleKinds()))
	for _, kind := range model.RuleKinds() {
		counts[kind] = rules.Count(kind)
	}

	resp := StatusResponse{
		Version:      h.version,
		AliasVersion: parser.AliasVersion,
		DefaultMode:  mode,
		RuleCounts:   counts,
	}

	runs, err := h.store.ListRuns(0)
	if err == nil {
		resp.RunCount = len(runs)
		if len(runs) > 0 {
			resp.LastRunTime = runs[0].FinishedAt.Format(time.RFC3339)
		}
	}

	c.JSON(http.StatusOK, resp)
}
