package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherScan(t *testing.T) {
	t.Parallel()

	server := echoTranslationServer(t)
	defer server.Close()

	root := t.TempDir()
	dir := filepath.Join(root, "Movie (2024)")
	require.NoError(t, os.Rename(testProjectDir(t, 5), dir))
	// non-project clutter is skipped
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "Empty Dir"), 0o755))

	cfg := testConfig(server.URL)
	cfg.Watch.MoviesDir = root
	w := NewWatcher(New(cfg))

	w.scan(context.Background())

	translated := filepath.Join(dir, "Movie (2024).ro.srt")
	_, err := os.Stat(translated)
	require.NoError(t, err, "watch pass should produce the translated output")

	// a second pass finds the project done and leaves it alone
	before, err := os.Stat(translated)
	require.NoError(t, err)
	w.scan(context.Background())
	after, err := os.Stat(translated)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestWatcherProjectDone(t *testing.T) {
	t.Parallel()

	server := echoTranslationServer(t)
	defer server.Close()

	cfg := testConfig(server.URL)
	w := NewWatcher(New(cfg))

	dir := testProjectDir(t, 3)
	done, err := w.projectDone(dir)
	require.NoError(t, err)
	assert.False(t, done)

	// no subtitle at all counts as done: there is nothing to translate
	empty := filepath.Join(t.TempDir(), "Extras")
	require.NoError(t, os.Mkdir(empty, 0o755))
	done, err = w.projectDone(empty)
	require.NoError(t, err)
	assert.True(t, done)

	// existing output marks the project done
	require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.Base(dir)+".ro.srt"), []byte("1\n00:00:01,000 --> 00:00:02,000\nGata.\n"), 0o644))
	done, err = w.projectDone(dir)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestWatcherRun_InvalidCron(t *testing.T) {
	t.Parallel()

	cfg := testConfig("https://unused.example.com")
	cfg.Watch.MoviesDir = t.TempDir()
	cfg.Watch.CronExpr = "not a cron expression"

	err := NewWatcher(New(cfg)).Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrConfig))
}
