package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	cues := makeCues(10)
	opts := Options{MaxChunkSize: 4, ContextCues: 2}
	chunks, err := Split(cues, opts)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	payload := BuildPrompt(chunks, 1, "A heist movie set in Bucharest.", "English", "Romanian", opts)

	assert.Equal(t, 1, payload.ChunkID)
	assert.Contains(t, payload.System, "from English to Romanian")
	assert.Contains(t, payload.System, "A heist movie set in Bucharest.")
	assert.Contains(t, payload.System, "cue index")
	assert.Contains(t, payload.System, "every cue numbered 5 through 8")

	// tail of the previous chunk and head of the next, marked read-only
	assert.Contains(t, payload.User, "CONTEXT (do not translate):")
	assert.Contains(t, payload.User, "Line 3.")
	assert.Contains(t, payload.User, "Line 4.")
	assert.Contains(t, payload.User, "Line 9.")
	assert.Contains(t, payload.User, "Line 10.")
	assert.NotContains(t, payload.User, "Line 2.")

	assert.Contains(t, payload.User, "TRANSLATE:")
	assert.Contains(t, payload.User, "Line 5.")
	assert.Contains(t, payload.User, "Line 8.")
}

func TestBuildPrompt_FirstAndLastChunk(t *testing.T) {
	t.Parallel()

	cues := makeCues(8)
	opts := Options{MaxChunkSize: 4, ContextCues: 2}
	chunks, err := Split(cues, opts)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	first := BuildPrompt(chunks, 0, "", "English", "Romanian", opts)
	assert.NotContains(t, first.System, "STORY CONTEXT")
	// no previous chunk: the prompt starts with the translation body
	assert.Contains(t, first.User, "TRANSLATE:\n1\n")

	last := BuildPrompt(chunks, 1, "", "English", "Romanian", opts)
	assert.NotContains(t, last.User[len(last.User)-30:], "CONTEXT")
}

func TestBuildPrompt_NoContextCues(t *testing.T) {
	t.Parallel()

	cues := makeCues(8)
	opts := Options{MaxChunkSize: 4, ContextCues: 0}
	chunks, err := Split(cues, opts)
	require.NoError(t, err)

	payload := BuildPrompt(chunks, 1, "", "English", "Romanian", opts)
	assert.NotContains(t, payload.User, "CONTEXT")
}
