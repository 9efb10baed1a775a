package chunker

import (
	"fmt"
	"strings"

	"github.com/MimeLyc/movie-sub-pipeline/internal/subtitle"
)

// PromptPayload is the translation request artifact for one chunk.
type PromptPayload struct {
	ChunkID int
	System  string
	User    string
}

// BuildPrompt renders the prompt payload for chunks[pos]: the chunk's own
// cues in SRT form, up to ContextCues trailing cues from the previous chunk
// and leading cues from the next chunk as read-only context, and the
// project's story context. Context cues are never retranslated.
func BuildPrompt(
	chunks []Chunk,
	pos int,
	storyContext string,
	sourceLanguage string,
	targetLanguage string,
	opts Options,
) PromptPayload {
	chunk := chunks[pos]

	var system strings.Builder
	system.WriteString("You are a professional subtitle translation expert specializing in film dialogue. ")
	fmt.Fprintf(&system, "Translate subtitles from %s to %s.\n\n", sourceLanguage, targetLanguage)

	if storyContext != "" {
		system.WriteString("=== STORY CONTEXT ===\n")
		system.WriteString(storyContext)
		system.WriteString("\n")
	}

	system.WriteString("=== TRANSLATION GUIDELINES ===\n")
	system.WriteString("1. Preserve character names exactly as shown\n")
	system.WriteString("2. Maintain dialogue formatting (dashes, ellipses, etc.)\n")
	fmt.Fprintf(&system, "3. Use natural %s that matches the emotional tone\n", targetLanguage)
	system.WriteString("4. Properly translate idioms and cultural references\n")
	system.WriteString("5. Keep the same line structure where possible, using \\n for line breaks\n")

	system.WriteString("\n=== OUTPUT FORMAT ===\n")
	system.WriteString("Respond with ONLY a JSON object mapping each cue index to its translated text.\n")
	fmt.Fprintf(&system, "Translate every cue numbered %d through %d and nothing else.\n", chunk.StartIndex, chunk.EndIndex)
	system.WriteString("Do not include explanations, notes, or cues marked as context.\n")

	var user strings.Builder

	if opts.ContextCues > 0 && pos > 0 {
		prev := chunks[pos-1].Cues
		tail := prev[max(0, len(prev)-opts.ContextCues):]
		user.WriteString("CONTEXT (do not translate):\n")
		user.WriteString(subtitle.Format(tail))
	}

	user.WriteString("TRANSLATE:\n")
	user.WriteString(subtitle.Format(chunk.Cues))

	if opts.ContextCues > 0 && pos+1 < len(chunks) {
		next := chunks[pos+1].Cues
		head := next[:min(opts.ContextCues, len(next))]
		user.WriteString("CONTEXT (do not translate):\n")
		user.WriteString(subtitle.Format(head))
	}

	return PromptPayload{
		ChunkID: chunk.ID,
		System:  system.String(),
		User:    user.String(),
	}
}
