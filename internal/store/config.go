package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"billcheck/internal/model"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("config key not found")

// 会话设置键
const (
	KeyDefaultMode        = "default_mode"
	KeyOutputPrefix       = "output_prefix"
	KeyDownloadTTLMinutes = "download_ttl_minutes"
)

// ErrInvalidSetting 会话设置取值非法
var ErrInvalidSetting = errors.New("invalid setting")

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
		}
		return "", err
	}
	return value, nil
}

// GetConfigOr 获取配置项，不存在时返回 def
func (s *Store) GetConfigOr(key, def string) (string, error) {
	v, err := s.GetConfig(key)
	if errors.Is(err, ErrConfigNotFound) {
		return def, nil
	}
	return v, err
}

// GetConfigInt 获取整数配置项
func (s *Store) GetConfigInt(key string) (int, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// SetConfigInt 设置整数配置项
func (s *Store) SetConfigInt(key string, value int) error {
	return s.SetConfig(key, strconv.Itoa(value))
}

// GetAllConfig 获取所有配置项
func (s *Store) GetAllConfig() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		config[key] = value
	}

	return config, rows.Err()
}

// GetDefaultMode 会话默认核对模式；未设置时返回 fallback
func (s *Store) GetDefaultMode(fallback model.Mode) (model.Mode, error) {
	v, err := s.GetConfigOr(KeyDefaultMode, string(fallback))
	if err != nil {
		return "", err
	}
	return model.ParseMode(v)
}

// SetDefaultMode 设置会话默认核对模式
func (s *Store) SetDefaultMode(mode model.Mode) error {
	if _, err := model.ParseMode(string(mode)); err != nil {
		return err
	}
	return s.SetConfig(KeyDefaultMode, string(mode))
}

// GetOutputPrefix 会话结果文件名前缀；未设置时返回 fallback
func (s *Store) GetOutputPrefix(fallback string) (string, error) {
	return s.GetConfigOr(KeyOutputPrefix, fallback)
}

// SetOutputPrefix 设置结果文件名前缀，前缀不能为空或包含路径分隔符
func (s *Store) SetOutputPrefix(prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || strings.ContainsAny(prefix, `/\`) || strings.Contains(prefix, "..") {
		return fmt.Errorf("%w: output prefix %q", ErrInvalidSetting, prefix)
	}
	return s.SetConfig(KeyOutputPrefix, prefix)
}

// GetDownloadTTL 下载令牌有效期；未设置时返回 fallback
func (s *Store) GetDownloadTTL(fallback time.Duration) (time.Duration, error) {
	minutes, err := s.GetConfigInt(KeyDownloadTTLMinutes)
	if errors.Is(err, ErrConfigNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

// SetDownloadTTL 设置下载令牌有效期，按分钟保存
func (s *Store) SetDownloadTTL(ttl time.Duration) error {
	minutes := int(ttl / time.Minute)
	if minutes <= 0 {
		return fmt.Errorf("%w: download ttl %s", ErrInvalidSetting, ttl)
	}
	return s.SetConfigInt(KeyDownloadTTLMinutes, minutes)
}
