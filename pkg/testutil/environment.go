package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/datastore"
	"github.com/arthur-debert/dodex/pkg/filesystem"
	"github.com/arthur-debert/dodex/pkg/state"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/arthur-debert/dodex/pkg/vault"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment is a vault with its persisted state and settings.
type TestEnvironment struct {
	VaultRoot string

	FS        types.FS
	DataStore datastore.DataStore
	State     *state.Store
	Ledger    *state.Ledger
	Vault     *vault.Vault
	Settings  *config.Settings
	Notifier  *RecordingNotifier

	Type EnvType

	t *testing.T
}

// NewTestEnvironment creates a vault named "vault" holding files
// (vault path -> content).
func NewTestEnvironment(t *testing.T, envType EnvType, files map[string]string) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType, Notifier: &RecordingNotifier{}}
	switch envType {
	case EnvMemoryOnly:
		env.VaultRoot = "/virtual/vault"
		env.FS = filesystem.NewMemory()
	case EnvIsolated:
		env.VaultRoot = filepath.Join(t.TempDir(), "vault")
		env.FS = filesystem.NewOS()
	}
	if err := env.FS.MkdirAll(env.VaultRoot, 0755); err != nil {
		t.Fatalf("Failed to create vault: %v", err)
	}

	env.Settings = config.Defaults()
	env.DataStore = datastore.New(env.FS, filepath.Join(env.VaultRoot, ".dodex", "data.json"))
	env.State = state.NewStore(env.DataStore)
	env.Ledger = env.State.LoadLedger()
	env.Vault = vault.New(vault.Options{
		FS:        env.FS,
		Root:      env.VaultRoot,
		LinkStyle: env.Settings.LinkStyle,
	})

	for p, content := range files {
		env.WriteFile(p, content)
	}
	return env
}

// WriteFile writes content at vault path p, creating folders.
func (env *TestEnvironment) WriteFile(p, content string) {
	env.t.Helper()
	abs := env.Vault.Abs(p)
	if err := env.FS.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		env.t.Fatalf("Failed to create directory for %s: %v", p, err)
	}
	if err := env.FS.WriteFile(abs, []byte(content), 0644); err != nil {
		env.t.Fatalf("Failed to write file %s: %v", p, err)
	}
}

// WriteFileAt writes content at p with modification time ts (unix ms).
func (env *TestEnvironment) WriteFileAt(p, content string, ts int64) {
	env.t.Helper()
	env.WriteFile(p, content)
	stamp := time.UnixMilli(ts)
	if err := env.FS.Chtimes(env.Vault.Abs(p), stamp, stamp); err != nil {
		env.t.Fatalf("Failed to set times of %s: %v", p, err)
	}
}

// ReadFile returns the content at vault path p, failing the test if absent.
func (env *TestEnvironment) ReadFile(p string) string {
	env.t.Helper()
	content, err := env.Vault.Read(p)
	if err != nil {
		env.t.Fatalf("Failed to read %s: %v", p, err)
	}
	return content
}

// Exists reports whether a file exists at vault path p.
func (env *TestEnvironment) Exists(p string) bool {
	return env.Vault.Exists(p)
}

// ExistsOnDisk reports whether an absolute path exists, dot folders included.
func (env *TestEnvironment) ExistsOnDisk(abs string) bool {
	_, err := env.FS.Stat(abs)
	return err == nil
}

// Tree returns a fresh snapshot of the vault.
func (env *TestEnvironment) Tree() *types.Folder {
	env.t.Helper()
	root, err := env.Vault.Root()
	if err != nil {
		env.t.Fatalf("Failed to read vault: %v", err)
	}
	return root
}

// Mtime returns the modification time of vault path p in unix ms.
func (env *TestEnvironment) Mtime(p string) int64 {
	env.t.Helper()
	f, err := env.Vault.Stat(p)
	if err != nil {
		env.t.Fatalf("Failed to stat %s: %v", p, err)
	}
	return f.Mtime
}
