package subtitle

import (
	"time"

	"golang.org/x/text/language"
)

// Cue is one timed subtitle entry.
type Cue struct {
	Index     int           // cue index as it appears in the source file
	StartTime time.Duration // display start
	EndTime   time.Duration // display end
	// Text holds the display lines exactly as they appear in the source,
	// including whitespace-only lines used as formatting markers.
	Text []string
	// TranslatedText mirrors Text after translation; empty until then.
	TranslatedText []string
}

// File represents a parsed subtitle file.
type File struct {
	Cues     []Cue
	Language language.Tag
	Format   string // e.g. SRT
	Path     string
}

// Indices returns the cue indices in file order.
func (f *File) Indices() []int {
	ret := make([]int, 0, len(f.Cues))
	for _, cue := range f.Cues {
		ret = append(ret, cue.Index)
	}
	return ret
}
