package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teut-network/teutledger/config"
	klog "github.com/teut-network/teutledger/internal/log"
	"github.com/teut-network/teutledger/internal/storage"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// openDB opens the configured backend.
func openDB(cfg *config.Config) (storage.DB, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		klog.Storage.Debug().Msg("Using in-memory storage")
		return storage.NewMemory(), nil
	case config.BackendBadger, "":
		dir := cfg.LedgerDir()
		db, err := storage.NewBadger(dir)
		if err != nil {
			return nil, fmt.Errorf("open database at %s: %w", dir, err)
		}
		klog.Storage.Debug().Str("path", dir).Msg("Database opened")
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// GenesisPath returns where the genesis for cfg is read from: the
// configured path, or genesis.json in the network directory.
func GenesisPath(cfg *config.Config) string {
	if cfg.Genesis != "" {
		return expandHome(cfg.Genesis)
	}
	return filepath.Join(cfg.NetworkDir(), config.GenesisFile)
}

// resolveGenesis loads the genesis for cfg. A missing default genesis
// file yields nil; a missing explicitly configured file is an error.
func resolveGenesis(cfg *config.Config) (*config.Genesis, error) {
	path := GenesisPath(cfg)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && cfg.Genesis == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("genesis %s: %w", path, err)
	}
	return config.LoadGenesis(path)
}
