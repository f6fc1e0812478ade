package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"billcheck/internal/model"
	"billcheck/internal/store"
)

// ConfigResponse 会话配置
type ConfigResponse struct {
	DefaultMode        model.Mode        `json:"defaultMode"`
	OutputPrefix       string            `json:"outputPrefix"`
	DownloadTTLMinutes int               `json:"downloadTtlMinutes"`
	Settings           map[string]string `json:"settings"` // 会话中显式保存过的设置
}

// UpdateConfigRequest 更新配置请求；字段为空表示不修改
type UpdateConfigRequest struct {
	DefaultMode        *string `json:"defaultMode"`
	OutputPrefix       *string `json:"outputPrefix"`
	DownloadTTLMinutes *int    `json:"downloadTtlMinutes"`
}

// sessionSettings 当前生效的会话设置
type sessionSettings struct {
	mode   model.Mode
	prefix string
	ttl    time.Duration
}

// settings 读取会话设置，未保存的项使用启动配置
func (h *Handler) settings() (sessionSettings, error) {
	mode, err := h.store.GetDefaultMode(h.defaultMode)
	if err != nil {
		return sessionSettings{}, err
	}
	prefix, err := h.store.GetOutputPrefix(h.prefix)
	if err != nil {
		return sessionSettings{}, err
	}
	ttl, err := h.store.GetDownloadTTL(h.downloadTTL)
	if err != nil {
		return sessionSettings{}, err
	}
	return sessionSettings{mode: mode, prefix: prefix, ttl: ttl}, nil
}

// GetConfig 获取会话配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	cur, err := h.settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}
	saved, err := h.store.GetAllConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}
	c.JSON(http.StatusOK, ConfigResponse{
		DefaultMode:        cur.mode,
		OutputPrefix:       cur.prefix,
		DownloadTTLMinutes: int(cur.ttl / time.Minute),
		Settings:           saved,
	})
}

// UpdateConfig 更新会话配置
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	// 先校验全部字段，避免部分写入
	var mode model.Mode
	if req.DefaultMode != nil {
		m, err := model.ParseMode(*req.DefaultMode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的核对模式: " + *req.DefaultMode})
			return
		}
		mode = m
	}
	if req.DownloadTTLMinutes != nil && *req.DownloadTTLMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "下载有效期必须大于 0 分钟"})
		return
	}

	if req.OutputPrefix != nil {
		if err := h.store.SetOutputPrefix(*req.OutputPrefix); err != nil {
			writeSettingError(c, err, "无效的文件名前缀: "+*req.OutputPrefix)
			return
		}
	}
	if req.DefaultMode != nil {
		if err := h.store.SetDefaultMode(mode); err != nil {
			writeSettingError(c, err, "无效的核对模式: "+*req.DefaultMode)
			return
		}
	}
	if req.DownloadTTLMinutes != nil {
		ttl := time.Duration(*req.DownloadTTLMinutes) * time.Minute
		if err := h.store.SetDownloadTTL(ttl); err != nil {
			writeSettingError(c, err, "无效的下载有效期")
			return
		}
	}

	h.GetConfig(c)
}

func writeSettingError(c *gin.Context, err error, invalid string) {
	if errors.Is(err, store.ErrInvalidSetting) {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "更新配置失败"})
}
