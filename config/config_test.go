package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teut.conf")
	content := `# comment
network = testnet

storage.backend = "memory"
log.level = 'debug'
log.json = yes
unknown.key = ignored
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if values["storage.backend"] != "memory" {
		t.Errorf("storage.backend = %q, want memory (quotes stripped)", values["storage.backend"])
	}
	if values["log.level"] != "debug" {
		t.Errorf("log.level = %q, want debug", values["log.level"])
	}

	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Network != Testnet || cfg.Storage.Backend != BackendMemory || !cfg.Log.JSON {
		t.Errorf("config not applied: %+v", cfg)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teut.conf")
	if err := os.WriteFile(path, []byte("network\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for line without '='")
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"--testnet", "--datadir=/tmp/x", "--log-json=false", "balance", "--raw", "0xabc"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if f.Network != "testnet" {
		t.Errorf("Network = %q, want testnet", f.Network)
	}
	if f.DataDir != "/tmp/x" {
		t.Errorf("DataDir = %q", f.DataDir)
	}
	if !f.SetLogJSON || f.LogJSON {
		t.Error("explicit --log-json=false not recorded")
	}
	if len(f.Args) != 3 || f.Args[0] != "balance" || f.Args[1] != "--raw" {
		t.Errorf("Args = %v, want command args untouched", f.Args)
	}
}

func TestParseFlags_Help(t *testing.T) {
	_, err := ParseFlags([]string{"--help"})
	if !errors.Is(err, ErrHelp) {
		t.Fatalf("err = %v, want ErrHelp", err)
	}
	if _, err := ParseFlags([]string{"--no-such-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()

	// First load creates the data dirs and a default config file.
	cfg, _, err := Load([]string{"--datadir", dir, "info"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendBadger {
		t.Errorf("default backend = %q, want badger", cfg.Storage.Backend)
	}
	if _, err := os.Stat(cfg.ConfigFile()); err != nil {
		t.Errorf("default config not written: %v", err)
	}
	if _, err := os.Stat(cfg.KeystoreDir()); err != nil {
		t.Errorf("keystore dir not created: %v", err)
	}

	// File overrides defaults.
	conf := "network = mainnet\nstorage.backend = memory\nlog.level = error\n"
	if err := os.WriteFile(cfg.ConfigFile(), []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, _, err = Load([]string{"--datadir", dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendMemory || cfg.Log.Level != "error" {
		t.Errorf("file values not applied: %+v", cfg)
	}

	// Flags override the file.
	cfg, flags, err := Load([]string{"--datadir", dir, "--storage", "badger", "--log-level", "debug", "supply"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendBadger || cfg.Log.Level != "debug" {
		t.Errorf("flag values not applied: %+v", cfg)
	}
	if len(flags.Args) != 1 || flags.Args[0] != "supply" {
		t.Errorf("Args = %v", flags.Args)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"bad network", func(c *Config) { c.Network = "devnet" }, false},
		{"no datadir", func(c *Config) { c.DataDir = "" }, false},
		{"bad backend", func(c *Config) { c.Storage.Backend = "leveldb" }, false},
		{"memory backend", func(c *Config) { c.Storage.Backend = BackendMemory }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTestnet()
			cfg.DataDir = t.TempDir()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, ok want %v", err, tt.ok)
			}
		})
	}
	if Validate(nil) == nil {
		t.Error("nil config should not validate")
	}
}

func TestConfigDirs(t *testing.T) {
	cfg := &Config{Network: Testnet, DataDir: "/data"}
	if got := cfg.LedgerDir(); got != filepath.Join("/data", "testnet", "ledger") {
		t.Errorf("LedgerDir = %q", got)
	}
	if got := cfg.KeystoreDir(); got != filepath.Join("/data", "testnet", "keystore") {
		t.Errorf("KeystoreDir = %q", got)
	}
	if got := cfg.ConfigFile(); got != filepath.Join("/data", "teut.conf") {
		t.Errorf("ConfigFile = %q", got)
	}
}
