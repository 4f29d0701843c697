// Package paths provides centralized path handling for dodex.
// It implements XDG Base Directory specification compliance and
// locates the vault and the files dodex keeps inside it.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/internal/hashutil"
)

// Environment variable names
const (
	// EnvVault is the primary environment variable for the vault location
	EnvVault = "DODEX_VAULT"

	// EnvDodexConfigDir overrides the XDG config directory for dodex
	EnvDodexConfigDir = "DODEX_CONFIG_DIR"

	// EnvDodexCacheDir overrides the XDG cache directory for dodex
	EnvDodexCacheDir = "DODEX_CACHE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names inside the vault and the XDG directories.
const (
	// DodexDirName is the directory name for dodex-specific files
	DodexDirName = "dodex"

	// VaultConfigFile is the per-vault configuration file
	VaultConfigFile = ".dodex.toml"

	// VaultDataDir holds persisted marks and the write ledger
	VaultDataDir = ".dodex"

	// DataFileName is the key-value data store file inside VaultDataDir
	DataFileName = "data.json"

	// TrashDir receives foreign files displaced by generated output
	TrashDir = ".trash"

	// ObsidianDir marks an Obsidian vault root
	ObsidianDir = ".obsidian"

	// UserConfigFile is the user level configuration file name
	UserConfigFile = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "dodex.log"
)

// Paths provides centralized path management for dodex
type Paths interface {
	VaultRoot() string
	UsedFallback() bool
	VaultConfigPath() string
	DataFilePath() string
	TrashDir() string
	ConfigDir() string
	UserConfigPath() string
	CacheDir() string
	LinkCachePath() string
	StateDir() string
	LogFilePath() string
}

type paths struct {
	vaultRoot    string
	xdgConfig    string
	xdgCache     string
	xdgState     string
	usedFallback bool
}

// New creates a new Paths instance for the given vault root.
// If vaultRoot is empty, it is determined from DODEX_VAULT, then by
// searching upwards from the working directory for a vault marker,
// then falls back to the working directory.
func New(vaultRoot string) (Paths, error) {
	p := &paths{}

	if vaultRoot == "" {
		root, usedFallback, err := findVaultRoot()
		if err != nil {
			return nil, err
		}
		p.vaultRoot = root
		p.usedFallback = usedFallback
	} else {
		p.vaultRoot = expandHome(vaultRoot)
	}

	absRoot, err := filepath.Abs(p.vaultRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for vault root")
	}
	p.vaultRoot = absRoot

	p.setupXDGDirs()
	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if configDir := os.Getenv(EnvDodexConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, DodexDirName)
	}

	if cacheDir := os.Getenv(EnvDodexCacheDir); cacheDir != "" {
		p.xdgCache = expandHome(cacheDir)
	} else {
		p.xdgCache = filepath.Join(xdg.CacheHome, DodexDirName)
	}

	p.xdgState = filepath.Join(xdg.StateHome, DodexDirName)
}

// findVaultRoot determines the vault root using the following priority:
// 1. DODEX_VAULT environment variable (if set)
// 2. The closest ancestor of the working directory holding .obsidian or .dodex.toml
// 3. Current working directory (fallback)
func findVaultRoot() (string, bool, error) {
	if root := os.Getenv(EnvVault); root != "" {
		return expandHome(root), false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}

	if root, ok := findMarkedAncestor(cwd); ok {
		return root, false, nil
	}

	return cwd, true, nil
}

func findMarkedAncestor(dir string) (string, bool) {
	for {
		for _, marker := range []string{ObsidianDir, VaultConfigFile} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~something (not the user's home)
	return path
}

// VaultRoot returns the absolute vault directory
func (p *paths) VaultRoot() string {
	return p.vaultRoot
}

// UsedFallback returns true if the current working directory was used as fallback
func (p *paths) UsedFallback() bool {
	return p.usedFallback
}

// VaultConfigPath returns the per-vault configuration file path
func (p *paths) VaultConfigPath() string {
	return filepath.Join(p.vaultRoot, VaultConfigFile)
}

// DataFilePath returns the key-value data store file path
func (p *paths) DataFilePath() string {
	return filepath.Join(p.vaultRoot, VaultDataDir, DataFileName)
}

// TrashDir returns the vault local trash directory
func (p *paths) TrashDir() string {
	return filepath.Join(p.vaultRoot, TrashDir)
}

// ConfigDir returns the XDG config directory for dodex
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// UserConfigPath returns the user level configuration file path
func (p *paths) UserConfigPath() string {
	return filepath.Join(p.xdgConfig, UserConfigFile)
}

// CacheDir returns the XDG cache directory for dodex
func (p *paths) CacheDir() string {
	return p.xdgCache
}

// LinkCachePath returns the sqlite link cache path for this vault
func (p *paths) LinkCachePath() string {
	return filepath.Join(p.xdgCache, hashutil.ShortHash(p.vaultRoot)+".db")
}

// StateDir returns the XDG state directory for dodex
func (p *paths) StateDir() string {
	return p.xdgState
}

// LogFilePath returns the log file path
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}
