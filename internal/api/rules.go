package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"billcheck/internal/importer"
	"billcheck/internal/model"
	"billcheck/internal/store"
)

// RulesResponse 当前生效的规则
type RulesResponse struct {
	Rules model.RuleSet       `json:"rules"`
	Meta  []store.RuleSetMeta `json:"meta"` // 已被会话覆盖的类别
}

// GetRules 获取当前规则（内置规则 + 会话覆盖）
// GET /api/rules
func (h *Handler) GetRules(c *gin.Context) {
	rules, err := h.store.LoadRuleSet(h.baseRules)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取规则失败"})
		return
	}
	meta, err := h.store.ListRuleSetMeta()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取规则失败"})
		return
	}
	c.JSON(http.StatusOK, RulesResponse{Rules: rules, Meta: meta})
}

// PutRules 整体替换某一类规则，请求体为 JSON 数组
// PUT /api/rules/:kind
func (h *Handler) PutRules(c *gin.Context) {
	kind, ok := ruleKindParam(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取请求失败"})
		return
	}
	rs, err := model.DecodeRules(kind, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	h.saveRules(c, kind, rs, "api")
}

// ImportRules 上传规则表（xlsx / csv / toml）替换某一类规则
// POST /api/rules/:kind/import
func (h *Handler) ImportRules(c *gin.Context) {
	kind, ok := ruleKindParam(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer f.Close()

	rs, err := importer.ReadRules(kind, fh.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "解析规则文件失败: " + err.Error()})
		return
	}
	if rs.Count(kind) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "规则文件中没有可用的规则"})
		return
	}

	h.saveRules(c, kind, rs, fh.Filename)
}

// DeleteRules 撤销某一类规则的会话覆盖
// DELETE /api/rules/:kind
func (h *Handler) DeleteRules(c *gin.Context) {
	kind, ok := ruleKindParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteRules(kind); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除规则失败"})
		return
	}
	h.GetRules(c)
}

// ResetRules 恢复全部内置规则
// POST /api/rules/reset
func (h *Handler) ResetRules(c *gin.Context) {
	if err := h.store.ResetRules(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "重置规则失败"})
		return
	}
	h.GetRules(c)
}

func (h *Handler) saveRules(c *gin.Context, kind model.RuleKind, rs model.RuleSet, source string) {
	if err := rs.Validate(kind); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "index": verr.Index})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SaveRules(kind, rs, source); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存规则失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":   kind,
		"count":  rs.Count(kind),
		"source": source,
	})
}

func ruleKindParam(c *gin.Context) (model.RuleKind, bool) {
	kind := model.RuleKind(c.Param("kind"))
	if !model.ValidRuleKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知规则类别: " + string(kind)})
		return "", false
	}
	return kind, true
}
