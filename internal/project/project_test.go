package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func makeProject(t *testing.T, files ...string) *Project {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "The Movie (2024)")
	require.NoError(t, os.Mkdir(dir, 0o755))
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	proj, err := Open(dir)
	require.NoError(t, err)
	return proj
}

func TestOpen(t *testing.T) {
	t.Parallel()

	proj := makeProject(t)
	assert.Equal(t, "The Movie (2024)", proj.Name)
	assert.True(t, filepath.IsAbs(proj.Dir))

	_, err := Open(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Open(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestSourceSubtitlePath_PrefersENSuffix(t *testing.T) {
	t.Parallel()

	proj := makeProject(t, "The.Movie.srt", "The.Movie_EN.srt")
	path, err := proj.SourceSubtitlePath()
	require.NoError(t, err)
	assert.Equal(t, "The.Movie_EN.srt", filepath.Base(path))
}

func TestSourceSubtitlePath_FallsBackToAnySRT(t *testing.T) {
	t.Parallel()

	proj := makeProject(t, "The.Movie.srt")
	path, err := proj.SourceSubtitlePath()
	require.NoError(t, err)
	assert.Equal(t, "The.Movie.srt", filepath.Base(path))
}

func TestSourceSubtitlePath_SkipsGeneratedOutputs(t *testing.T) {
	t.Parallel()

	proj := makeProject(t, "The Movie (2024).ro.srt", "source.srt")
	path, err := proj.SourceSubtitlePath()
	require.NoError(t, err)
	assert.Equal(t, "source.srt", filepath.Base(path))

	empty := makeProject(t, "The Movie (2024).ro.srt")
	_, err = empty.SourceSubtitlePath()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subtitle file found")
}

func TestIsGeneratedOutput(t *testing.T) {
	t.Parallel()

	assert.True(t, isGeneratedOutput("/m/The Movie.ro.srt"))
	assert.True(t, isGeneratedOutput("/m/The Movie.pt-BR.srt"))
	assert.False(t, isGeneratedOutput("/m/The Movie.srt"))
	assert.False(t, isGeneratedOutput("/m/The.Movie.2024.srt"))
}

func TestArtifactPaths(t *testing.T) {
	t.Parallel()

	proj := makeProject(t)
	assert.Equal(t, filepath.Join(proj.Dir, "The Movie (2024).ro.srt"), proj.OutputPath(language.Romanian))
	assert.Equal(t, filepath.Join(proj.Dir, "metadata.json"), proj.MetadataPath())
	assert.Equal(t, filepath.Join(proj.Dir, "batch.db"), proj.BatchDBPath())
	assert.Equal(t, filepath.Join(proj.Dir, ".subpipe.lock"), proj.LockPath())
}
