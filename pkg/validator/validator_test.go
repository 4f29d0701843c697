// Test Type: Integration Test
// Description: Tests for complete index check runs over an in-memory vault

package validator_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/testutil"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/arthur-debert/dodex/pkg/validator"
	"github.com/arthur-debert/dodex/pkg/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMarker struct {
	mu    sync.Mutex
	marks map[string]types.UnmarkPolicy
}

func (m *recordingMarker) MarkFile(path string, policy types.UnmarkPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.marks == nil {
		m.marks = map[string]types.UnmarkPolicy{}
	}
	m.marks[path] = policy
}

func newValidator(env *testutil.TestEnvironment, marker *recordingMarker) *validator.Validator {
	return validator.New(validator.Options{
		Settings: validator.StaticSettings(*env.Settings),
		Vault:    env.Vault,
		Ledger:   env.Ledger,
		Marker:   marker,
		Notifier: env.Notifier,
	})
}

func TestRoundTrip(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly, map[string]string{
		"Notes/Notes.md": "# Notes\n",
		"Notes/a.md":     "",
		"Notes/b.md":     "",
		"Other/x.md":     "",
	})
	v := newValidator(env, &recordingMarker{})

	first, err := v.Run(context.Background(), validator.RunOptions{})
	require.NoError(t, err)
	assert.True(t, first.Completed)
	assert.Equal(t, 2, first.Missing)
	assert.Equal(t, 1, first.Folders)
	assert.Equal(t, "Indexes checked: 2 missing links in 1 folders.", first.Message())

	content := env.ReadFile("Notes/Notes.md")
	mtime := env.Mtime("Notes/Notes.md")
	assert.Equal(t, "# Notes\n\n***\n[[Notes/a]]\n[[Notes/b]]\n\n", content)

	second, err := v.Run(context.Background(), validator.RunOptions{})
	require.NoError(t, err)
	assert.Zero(t, second.Missing)
	assert.Equal(t, "Indexes checked: no missing links!", second.Message())
	assert.Equal(t, content, env.ReadFile("Notes/Notes.md"))
	assert.Equal(t, mtime, env.Mtime("Notes/Notes.md"))

	assert.NotEqual(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, "Indexes checked: no missing links!", env.Notifier.LastNotice())
	for _, n := range env.Notifier.Notices() {
		if n.Messages[0] == "Checking indexes..." {
			assert.True(t, n.IsHidden())
		}
	}
}

func TestNoIndexFiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly, map[string]string{
		"A/a.md": "",
		"B/b.md": "",
	})
	summary, err := newValidator(env, &recordingMarker{}).Run(context.Background(), validator.RunOptions{})
	require.NoError(t, err)

	assert.Empty(t, summary.Indexes)
	assert.Equal(t, "Indexes checked: no index files found.", summary.Message())
	assert.Equal(t, "Indexes checked: no index files found.", env.Notifier.LastNotice())
}

func TestZeroConcurrencyStillRuns(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly, map[string]string{
		"A/A.md": "",
		"A/x.md": "",
	})
	settings := *env.Settings
	settings.Concurrency = 0
	v := validator.New(validator.Options{
		Settings: validator.StaticSettings(settings),
		Vault:    env.Vault,
		Ledger:   env.Ledger,
		Marker:   &recordingMarker{},
		Notifier: env.Notifier,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		summary, err := v.Run(context.Background(), validator.RunOptions{})
		assert.NoError(t, err)
		assert.Equal(t, 1, summary.Missing)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}
	assert.False(t, v.Running())
}

func TestForeignSideFileIsTrashed(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly, map[string]string{
		"A/A.md": "",
		"A/x.md": "",
	})
	env.WriteFileAt("A/_A.md", "mine", 1234)
	env.Settings.OutputMode = config.OutputFile
	marker := &recordingMarker{}

	summary, err := newValidator(env, marker).Run(context.Background(), validator.RunOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Indexes, 1)
	assert.Equal(t, "A/_A.md", summary.Indexes[0].Target)

	trashed, err := env.FS.ReadFile(filepath.Join(env.VaultRoot, ".trash", "_A.md"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(trashed))
	assert.Equal(t, "\n***\n[[A/x]]\n\n", env.ReadFile("A/_A.md"))
	assert.Equal(t, types.UnmarkOnEmpty, marker.marks["A/_A.md"])
}

func TestErrorsReportedOncePerKind(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly, map[string]string{
		"A/A.canvas": `{"nodes":`,
		"A/a.md":     "",
		"B/B.canvas": `not json`,
		"B/b.md":     "",
		"C/C.md":     "",
		"C/c.md":     "",
	})
	env.Settings.IgnorePatterns = "/(/"
	v := newValidator(env, &recordingMarker{})

	summary, err := v.Run(context.Background(), validator.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []errors.ErrorCode{errors.ErrCanvasParse, errors.ErrPatternInvalid}, summary.Errors)
	assert.Equal(t, []string{
		errors.Describe(errors.ErrCanvasParse),
		errors.Describe(errors.ErrPatternInvalid),
	}, env.Notifier.Alerts())

	assert.Equal(t, 1, summary.Missing, "unreadable canvases report nothing missing")
	assert.Equal(t, `{"nodes":`, env.ReadFile("A/A.canvas"))

	t.Run("error_set_resets_between_runs", func(t *testing.T) {
		env.WriteFile("A/A.canvas", `{"nodes":[]}`)
		env.WriteFile("B/B.canvas", `{"nodes":[]}`)
		summary, err := v.Run(context.Background(), validator.RunOptions{})
		require.NoError(t, err)
		assert.Equal(t, []errors.ErrorCode{errors.ErrPatternInvalid}, summary.Errors)
	})
}

type blockingActivity struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingActivity) WaitSettled(ctx context.Context, window time.Duration) error {
	close(b.entered)
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestReentryGate(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly, map[string]string{"A/A.md": ""})
	activity := &blockingActivity{entered: make(chan struct{}), release: make(chan struct{})}
	v := validator.New(validator.Options{
		Settings: validator.StaticSettings(*env.Settings),
		Vault:    env.Vault,
		Ledger:   env.Ledger,
		Activity: activity,
	})

	done := make(chan error, 1)
	go func() {
		_, err := v.Run(context.Background(), validator.RunOptions{Startup: true})
		done <- err
	}()
	<-activity.entered
	assert.True(t, v.Running())

	_, err := v.Run(context.Background(), validator.RunOptions{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyRunning))

	close(activity.release)
	require.NoError(t, <-done)
	assert.False(t, v.Running())
}

func TestDryRun(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly, map[string]string{
		"A/A.md": "",
		"A/x.md": "",
	})
	marker := &recordingMarker{}
	summary, err := newValidator(env, marker).Run(context.Background(), validator.RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Missing)
	require.Len(t, summary.Previews, 1)
	assert.Equal(t, []string{"[[A/x]]"}, summary.Previews[0].Links)
	assert.Equal(t, "", env.ReadFile("A/A.md"))
	assert.Empty(t, marker.marks)
	assert.Zero(t, env.Ledger.Len())
}

type panickingVault struct {
	*vault.Vault
}

func (p panickingVault) Root() (*types.Folder, error) {
	panic("tree exploded")
}

func TestPanicIsRecorded(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly, nil)
	v := validator.New(validator.Options{
		Settings: validator.StaticSettings(*env.Settings),
		Vault:    panickingVault{env.Vault},
		Ledger:   env.Ledger,
		Notifier: env.Notifier,
	})

	summary, err := v.Run(context.Background(), validator.RunOptions{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknown))
	assert.False(t, v.Running())
	require.NotNil(t, summary)
	assert.False(t, summary.Completed)
	assert.Equal(t, []string{errors.Describe(errors.ErrUnknown)}, env.Notifier.Alerts())
	require.NotEmpty(t, env.Notifier.Notices())
	assert.True(t, env.Notifier.Notices()[0].IsHidden())
}

func TestErrorSet(t *testing.T) {
	s := validator.NewErrorSet()
	s.Record(errors.New(errors.ErrWrite, "first"))
	s.Record(errors.New(errors.ErrWrite, "second"))
	s.Record(errors.New(errors.ErrCanvasRead, "read"))
	s.Record(nil)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []errors.ErrorCode{errors.ErrCanvasRead, errors.ErrWrite}, s.Codes())
	assert.Contains(t, s.Get(errors.ErrWrite).Error(), "first")

	s.Reset()
	assert.Zero(t, s.Len())
}
