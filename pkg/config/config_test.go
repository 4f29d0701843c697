// Test Type: Unit Test
// Description: Tests for layered settings loading, permissive decoding and the settings store

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaults(t *testing.T) {
	s := config.Defaults()

	assert.Equal(t, "[FOLDER]", s.IndexPattern)
	assert.False(t, s.UseRootIndexPattern)
	assert.Equal(t, "[VAULT]", s.RootIndexPattern)
	assert.Equal(t, "", s.IgnorePatterns)
	assert.Equal(t, config.OutputIndex, s.OutputMode)
	assert.Equal(t, config.OutputMode(""), s.CanvasOutputMode)
	assert.Equal(t, config.NestingNone, s.NestingMode)
	assert.False(t, s.AllFiles)
	assert.Equal(t, "***\n[LINKS]\n", s.LinksFormat)
	assert.False(t, s.Prepend)
	assert.Equal(t, "_[FOLDER]", s.OutputFilePattern)
	assert.True(t, s.MarkOnWrite)
	assert.False(t, s.StartupCheck)
	assert.Equal(t, config.LinkWiki, s.LinkStyle)
	assert.Equal(t, 8, s.Concurrency)
	assert.True(t, s.Canvas.Group)
	assert.Equal(t, "Missing links", s.Canvas.GroupLabel)
	assert.Equal(t, config.BottomRight, s.Canvas.Position)
	assert.Equal(t, 400, s.Canvas.NoteWidth)
	assert.Equal(t, 2*time.Second, s.Timing.StartupSettle.Std())
	assert.Equal(t, time.Second, s.Timing.CanvasSettle.Std())
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "user", "config.toml")
	vault := filepath.Join(dir, "vault", ".dodex.toml")

	writeFile(t, user, `
output_mode = "file"
nesting_mode = "all"
[canvas]
note_width = 250
`)
	writeFile(t, vault, `
nesting_mode = "no_index"
[timing]
canvas_settle = "250ms"
`)
	t.Setenv("DODEX_PREPEND", "true")
	t.Setenv("DODEX_CANVAS__POSITION", "top_left")
	t.Setenv("DODEX_VAULT", "/not/a/setting")

	s, err := config.Load(config.LoadOptions{UserConfigPath: user, VaultConfigPath: vault})
	require.NoError(t, err)

	assert.Equal(t, config.OutputFile, s.OutputMode, "user layer")
	assert.Equal(t, config.NestingNoIndex, s.NestingMode, "vault overrides user")
	assert.Equal(t, 250, s.Canvas.NoteWidth)
	assert.Equal(t, 250*time.Millisecond, s.Timing.CanvasSettle.Std())
	assert.True(t, s.Prepend, "env layer")
	assert.Equal(t, config.TopLeft, s.Canvas.Position)
	assert.Equal(t, "[FOLDER]", s.IndexPattern, "untouched default")
}

func TestLoadIsPermissive(t *testing.T) {
	dir := t.TempDir()

	t.Run("invalid_enum_falls_back", func(t *testing.T) {
		path := filepath.Join(dir, "enum.toml")
		writeFile(t, path, `
output_mode = "everywhere"
nesting_mode = "deep"
concurrency = 0
links_format = "Missing:"
output_file_pattern = "  _[INDEX]  "
`)
		s, err := config.Load(config.LoadOptions{VaultConfigPath: path, SkipEnv: true})
		require.NoError(t, err)
		assert.Equal(t, config.OutputIndex, s.OutputMode)
		assert.Equal(t, config.NestingNone, s.NestingMode)
		assert.Equal(t, 8, s.Concurrency)
		assert.Equal(t, "Missing:[LINKS]", s.LinksFormat)
		assert.Equal(t, "_[INDEX]", s.OutputFilePattern)
	})

	t.Run("side_file_pattern_stays_in_folder", func(t *testing.T) {
		for _, bad := range []string{"../[FOLDER]", "sub/_[FOLDER]", `..\x`, ".."} {
			s := config.Defaults()
			s.OutputFilePattern = bad
			warnings := s.Normalize()
			assert.Equal(t, "_[FOLDER]", s.OutputFilePattern, bad)
			require.Len(t, warnings, 1, bad)
			assert.Contains(t, warnings[0], "output_file_pattern")
		}
	})

	t.Run("malformed_file_is_skipped", func(t *testing.T) {
		path := filepath.Join(dir, "broken.toml")
		writeFile(t, path, "output_mode = \n[[[")
		s, err := config.Load(config.LoadOptions{VaultConfigPath: path, SkipEnv: true})
		require.NoError(t, err)
		assert.Equal(t, config.OutputIndex, s.OutputMode)
	})

	t.Run("undecodable_value_uses_defaults", func(t *testing.T) {
		path := filepath.Join(dir, "types.toml")
		writeFile(t, path, `
[timing]
canvas_settle = "soon"
`)
		s, err := config.Load(config.LoadOptions{VaultConfigPath: path, SkipEnv: true})
		require.NoError(t, err)
		assert.Equal(t, time.Second, s.Timing.CanvasSettle.Std())
	})

	t.Run("missing_files_are_fine", func(t *testing.T) {
		s, err := config.Load(config.LoadOptions{
			UserConfigPath:  filepath.Join(dir, "nope.toml"),
			VaultConfigPath: filepath.Join(dir, "nope2.toml"),
			SkipEnv:         true,
		})
		require.NoError(t, err)
		assert.Equal(t, "[FOLDER]", s.IndexPattern)
	})
}

func TestOutputModeFor(t *testing.T) {
	s := config.Defaults()
	s.OutputMode = config.OutputFile
	assert.Equal(t, config.OutputFile, s.OutputModeFor("md"))
	assert.Equal(t, config.OutputFile, s.OutputModeFor("canvas"))

	s.CanvasOutputMode = config.OutputNone
	assert.Equal(t, config.OutputFile, s.OutputModeFor("md"))
	assert.Equal(t, config.OutputNone, s.OutputModeFor("canvas"))
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".dodex.toml")

	t.Run("update_saves_after_delay", func(t *testing.T) {
		store := config.NewStore(filesystem.NewOS(), path, config.Defaults())
		saved := make(chan error, 1)
		store.OnSave(func(err error) { saved <- err })

		store.Update(func(s *config.Settings) { s.NestingMode = config.NestingAll })
		store.Update(func(s *config.Settings) { s.AllFiles = true })

		assert.Equal(t, config.NestingAll, store.Get().NestingMode)
		select {
		case err := <-saved:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("settings were not saved")
		}

		reloaded, err := config.Load(config.LoadOptions{VaultConfigPath: path, SkipEnv: true})
		require.NoError(t, err)
		assert.Equal(t, config.NestingAll, reloaded.NestingMode)
		assert.True(t, reloaded.AllFiles)
		assert.Equal(t, time.Second, reloaded.Timing.CanvasSettle.Std())
	})

	t.Run("update_normalizes", func(t *testing.T) {
		store := config.NewStore(filesystem.NewOS(), path, config.Defaults())
		store.Update(func(s *config.Settings) { s.LinksFormat = "## Missing\n" })
		store.Flush()
		assert.Equal(t, "## Missing\n[LINKS]", store.Get().LinksFormat)
	})

	t.Run("set_by_key", func(t *testing.T) {
		store := config.NewStore(filesystem.NewOS(), path, config.Defaults())
		require.NoError(t, store.Set("canvas.note_width", "320"))
		require.NoError(t, store.Set("mark_on_write", "false"))
		require.NoError(t, store.Set("timing.startup_settle", "5s"))
		store.Flush()

		got := store.Get()
		assert.Equal(t, 320, got.Canvas.NoteWidth)
		assert.False(t, got.MarkOnWrite)
		assert.Equal(t, 5*time.Second, got.Timing.StartupSettle.Std())

		err := store.Set("no_such_key", "1")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})
}

func TestGenerateConfigContent(t *testing.T) {
	content := config.GenerateConfigContent()
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") {
			continue
		}
		assert.True(t, strings.HasPrefix(trimmed, "#"), "line should be commented: %q", line)
	}
	assert.Contains(t, content, `# index_pattern = "[FOLDER]"`)
}
