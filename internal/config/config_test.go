package config

import (
	"os"
	"path/filepath"
	"testing"

	"billcheck/internal/model"
)

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.FileFound || info.PortSpecified {
		t.Fatalf("info: %+v", info)
	}
	def := DefaultConfig()
	if cfg.Server.Port != def.Server.Port || cfg.Reconcile.OutputPrefix != "SF_Check_Result" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if len(cfg.Rules.Files()) != 0 {
		t.Fatalf("no rule files expected: %+v", cfg.Rules.Files())
	}
}

func TestLoadFile_OverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	doc := `
[server]
port = 8088

[log]
level = "debug"
output = "stdout"

[reconcile]
default_mode = "contract"
download_ttl_minutes = 5

[rules]
packaging_file = "rules/packaging.xlsx"

[aliases]
payable = ["实付金额"]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvDataDir, "/tmp/billcheck-data")
	t.Setenv(EnvLogLevel, "warn")

	cfg, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.FileFound || !info.PortSpecified || cfg.Server.Port != 8088 {
		t.Fatalf("server: %+v %+v", info, cfg.Server)
	}
	if cfg.Reconcile.DefaultMode != string(model.ModeContract) || cfg.Reconcile.DownloadTTLMinutes != 5 {
		t.Fatalf("reconcile: %+v", cfg.Reconcile)
	}
	// 未出现在文件中的字段保留默认值
	if cfg.Reconcile.OutputPrefix != "SF_Check_Result" || cfg.Log.Format != "text" {
		t.Fatalf("defaults lost: %+v %+v", cfg.Reconcile, cfg.Log)
	}
	if cfg.Data.DataDir != "/tmp/billcheck-data" || cfg.Log.Level != "warn" {
		t.Fatalf("env overrides: %+v %+v", cfg.Data, cfg.Log)
	}
	files := cfg.Rules.Files()
	if len(files) != 1 || files[model.RuleKindPackaging] != "rules/packaging.xlsx" {
		t.Fatalf("rule files: %+v", files)
	}
	if got := cfg.Aliases["payable"]; len(got) != 1 || got[0] != "实付金额" {
		t.Fatalf("aliases: %+v", cfg.Aliases)
	}
	if ResolveDataDir(cfg) != "/tmp/billcheck-data" {
		t.Fatalf("data dir: %s", ResolveDataDir(cfg))
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax": "[server\nport = 1",
		"mode":   "[reconcile]\ndefault_mode = \"express\"",
		"port":   "[server]\nport = 70000",
		"output": "[log]\noutput = \"syslog\"",
	}
	for name, doc := range cases {
		path := filepath.Join(dir, name+".toml")
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, _, err := LoadFile(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Server.Port = 9000
	cfg.Rules.StandardFile = "rates.xlsx"
	if err := SaveFile(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Server.Port != 9000 || got.Rules.StandardFile != "rates.xlsx" {
		t.Fatalf("round trip: %+v", got)
	}
}

func TestEnsureDataDir(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Data.DataDir = t.TempDir()
	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if dir != cfg.Data.DataDir {
		t.Fatalf("dir: %s", dir)
	}
	if st, err := os.Stat(ExportsDir(cfg)); err != nil || !st.IsDir() {
		t.Fatalf("exports dir: %v", err)
	}
}
