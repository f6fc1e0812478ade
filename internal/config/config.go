package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"billcheck/internal/logger"
	"billcheck/internal/model"
)

// FileName 配置文件名，位于可执行文件同目录
const FileName = "config.toml"

// 环境变量覆盖
const (
	EnvDataDir  = "BILLCHECK_DATA_DIR"
	EnvLogLevel = "BILLCHECK_LOG_LEVEL"
)

// AppConfig 应用配置
type AppConfig struct {
	Server    ServerConfig        `toml:"server"`
	Data      DataConfig          `toml:"data"`
	Log       logger.Config       `toml:"log"`
	Reconcile ReconcileConfig     `toml:"reconcile"`
	Rules     RulesConfig         `toml:"rules"`
	Aliases   map[string][]string `toml:"aliases"` // 逻辑字段 -> 别名列表，覆盖内置别名
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// ReconcileConfig 核对配置
type ReconcileConfig struct {
	DefaultMode        string `toml:"default_mode"`
	OutputPrefix       string `toml:"output_prefix"`
	DownloadTTLMinutes int    `toml:"download_ttl_minutes"`
}

// RulesConfig 启动时加载的规则文件（xlsx / csv / toml），留空使用内置规则
type RulesConfig struct {
	StandardFile  string `toml:"standard_file"`
	ContractFile  string `toml:"contract_file"`
	PackagingFile string `toml:"packaging_file"`
	InsuranceFile string `toml:"insurance_file"`
}

// Files 按规则类别返回已配置的文件
func (r RulesConfig) Files() map[model.RuleKind]string {
	out := map[model.RuleKind]string{}
	for kind, path := range map[model.RuleKind]string{
		model.RuleKindStandard:  r.StandardFile,
		model.RuleKindContract:  r.ContractFile,
		model.RuleKindPackaging: r.PackagingFile,
		model.RuleKindInsurance: r.InsuranceFile,
	} {
		if strings.TrimSpace(path) != "" {
			out[kind] = path
		}
	}
	return out
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Log: logger.DefaultConfig(),
		Reconcile: ReconcileConfig{
			DefaultMode:        string(model.ModeStandard),
			OutputPrefix:       "SF_Check_Result",
			DownloadTTLMinutes: 30,
		},
	}
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if _, err := model.ParseMode(c.Reconcile.DefaultMode); err != nil {
		return fmt.Errorf("invalid reconcile.default_mode: %w", err)
	}
	if c.Reconcile.DownloadTTLMinutes <= 0 {
		return fmt.Errorf("invalid reconcile.download_ttl_minutes: %d", c.Reconcile.DownloadTTLMinutes)
	}
	switch c.Log.Output {
	case "stdout", "file", "both":
	default:
		return fmt.Errorf("invalid log.output: %q", c.Log.Output)
	}
	return nil
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverMap, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDir() string {
	dir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		return "."
	}
	return dir
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFile(filepath.Join(exeDir(), FileName))
}

// LoadFile 从指定路径加载配置；文件不存在时使用默认配置，环境变量最后覆盖
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, info, err
	default:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		config.Data.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.Log.Level = v
	}

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// SaveFile 保存配置
func SaveFile(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ResolveDataDir 数据目录；相对路径以可执行文件目录为基准
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(exeDir(), config.Data.DataDir)
}

// ExportsSubdir 结果文件子目录（临时文件，下载或过期后删除）
const ExportsSubdir = "exports"

// EnsureDataDir 确保数据目录及 exports 子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	if err := os.MkdirAll(filepath.Join(dataDir, ExportsSubdir), 0o755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// ExportsDir 结果文件目录
func ExportsDir(config *AppConfig) string {
	return filepath.Join(ResolveDataDir(config), ExportsSubdir)
}
