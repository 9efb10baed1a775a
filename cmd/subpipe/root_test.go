package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/movie-sub-pipeline/internal/batch"
)

func TestRootCommandWiring(t *testing.T) {
	t.Parallel()

	root := newRootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, expected := range []string{"analyze", "prepare", "translate", "assemble", "status", "watch"} {
		assert.Contains(t, names, expected)
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("chunk-size"))
	assert.NotNil(t, root.PersistentFlags().Lookup("context-cues"))
}

func TestSingleProjectArg(t *testing.T) {
	t.Parallel()

	require.Error(t, singleProjectArg(nil, nil))
	require.Error(t, singleProjectArg(nil, []string{"a", "b"}))
	require.NoError(t, singleProjectArg(nil, []string{"a"}))
}

func TestRenderStatus(t *testing.T) {
	t.Parallel()

	summary := batch.Summary{Total: 3, Completed: 1, Failed: 1, Pending: 1}
	states := []batch.ChunkState{
		{ChunkID: 0, StartIndex: 1, EndIndex: 15, Status: batch.StatusCompleted, UpdatedAt: time.Now()},
		{ChunkID: 1, StartIndex: 16, EndIndex: 30, Status: batch.StatusFailed, Error: "response is missing translations for cue indices [20]", UpdatedAt: time.Now()},
		{ChunkID: 2, StartIndex: 31, EndIndex: 40, Status: batch.StatusPending, UpdatedAt: time.Now()},
	}

	var buf bytes.Buffer
	renderStatus(&buf, summary, states)
	out := buf.String()

	assert.Contains(t, out, "chunks: 3 total, 1 completed, 1 failed, 0 sent, 1 pending")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "16-30")
	assert.Contains(t, out, "missing translations")
}

func TestTruncateError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateError("short"))
	assert.Equal(t, "multi line", truncateError("multi\nline"))

	long := truncateError(strings.Repeat("x", 200))
	assert.Len(t, long, 60)
	assert.True(t, strings.HasSuffix(long, "..."))
}
