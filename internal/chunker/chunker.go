package chunker

import (
	"fmt"
	"time"

	"github.com/MimeLyc/movie-sub-pipeline/internal/subtitle"
)

// Chunk is a contiguous, bounded group of cues sent as one translation unit.
// IDs are sequential from 0 and depend only on the cue sequence and options,
// so re-running the chunker reuses existing ids instead of renumbering.
type Chunk struct {
	ID         int
	StartIndex int // original index of the first cue
	EndIndex   int // original index of the last cue
	Cues       []subtitle.Cue
}

// CueIndices returns the original cue indices covered by the chunk.
func (c Chunk) CueIndices() []int {
	ret := make([]int, 0, len(c.Cues))
	for _, cue := range c.Cues {
		ret = append(ret, cue.Index)
	}
	return ret
}

// Options control chunk boundaries.
type Options struct {
	// MaxChunkSize is the hard upper bound on cues per chunk.
	MaxChunkSize int
	// ContextCues is how many read-only cues from the neighboring chunks are
	// embedded in each prompt for disambiguation.
	ContextCues int
	// SilenceSplit prefers boundaries at dialogue pauses of at least
	// SilenceGap, falling back to the hard cutoff when the window has none.
	SilenceSplit bool
	SilenceGap   time.Duration
}

func (o Options) Validate() error {
	if o.MaxChunkSize < 1 {
		return fmt.Errorf("max chunk size must be greater than 0, got %d", o.MaxChunkSize)
	}
	if o.ContextCues < 0 {
		return fmt.Errorf("context cues must not be negative, got %d", o.ContextCues)
	}
	if o.SilenceSplit && o.SilenceGap <= 0 {
		return fmt.Errorf("silence gap must be greater than 0 when silence splitting is enabled")
	}
	return nil
}

// Split partitions cues into chunks. The resulting cue ranges are contiguous,
// non-overlapping and exhaustive, and identical on every run for the same
// input and options.
func Split(cues []subtitle.Cue, opts Options) ([]Chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, (len(cues)+opts.MaxChunkSize-1)/opts.MaxChunkSize)
	for pos := 0; pos < len(cues); {
		end := pos + opts.MaxChunkSize
		if end > len(cues) {
			end = len(cues)
		}

		if opts.SilenceSplit && end < len(cues) {
			if cut, ok := silenceCut(cues, pos, end, opts.SilenceGap); ok {
				end = cut
			}
		}

		chunk := Chunk{
			ID:         len(chunks),
			StartIndex: cues[pos].Index,
			EndIndex:   cues[end-1].Index,
			Cues:       cues[pos:end],
		}
		chunks = append(chunks, chunk)
		pos = end
	}

	return chunks, nil
}

// silenceCut looks backwards from the hard cutoff for the nearest boundary
// where the pause before the next cue is at least gap. Returns false when the
// window has no such pause.
func silenceCut(cues []subtitle.Cue, start, end int, gap time.Duration) (int, bool) {
	for cut := end; cut > start+1; cut-- {
		if cues[cut].StartTime-cues[cut-1].EndTime >= gap {
			return cut, true
		}
	}
	return 0, false
}
