package assembler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MimeLyc/movie-sub-pipeline/internal/batch"
	"github.com/MimeLyc/movie-sub-pipeline/internal/subtitle"
	"github.com/MimeLyc/movie-sub-pipeline/pkg/log"
)

// IncompleteBatchError rejects assembly while any chunk is not completed.
// Resuming the translate stage and re-running assemble recovers.
type IncompleteBatchError struct {
	MissingChunkIDs []int
}

func (e *IncompleteBatchError) Error() string {
	ids := make([]string, 0, len(e.MissingChunkIDs))
	for _, id := range e.MissingChunkIDs {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("batch is incomplete: chunks [%s] are not completed", strings.Join(ids, ", "))
}

// Assemble merges every chunk's translation result back into the original cue
// sequence, ordered by original cue index with timestamps unchanged, and
// writes the final subtitle file. Before writing it verifies that the merged
// cue-index set equals the original's exactly: nothing lost, nothing
// duplicated, nothing foreign.
func Assemble(ctx context.Context, store *batch.Store, original *subtitle.File, outputPath string) (int, error) {
	states, err := store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load batch state: %w", err)
	}
	if len(states) == 0 {
		return 0, fmt.Errorf("batch state is empty; run the prepare stage first")
	}

	var missing []int
	for _, state := range states {
		if !state.Status.Terminal() {
			missing = append(missing, state.ChunkID)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return 0, &IncompleteBatchError{MissingChunkIDs: missing}
	}

	merged := make(map[int]string)
	for _, state := range states {
		for index, text := range state.Result {
			if _, dup := merged[index]; dup {
				return 0, fmt.Errorf("cue index %d is claimed by more than one chunk", index)
			}
			merged[index] = text
		}
	}

	if err := verifyIndexSet(original, merged); err != nil {
		return 0, err
	}

	cues := make([]subtitle.Cue, len(original.Cues))
	copy(cues, original.Cues)
	for i := range cues {
		cues[i].TranslatedText = strings.Split(merged[cues[i].Index], "\n")
	}

	if err := subtitle.WriteFile(outputPath, cues); err != nil {
		return 0, err
	}

	log.Info("Assembled %d cues into %s", len(cues), outputPath)
	return len(cues), nil
}

func verifyIndexSet(original *subtitle.File, merged map[int]string) error {
	var lost, foreign []int

	originalSet := make(map[int]bool, len(original.Cues))
	for _, cue := range original.Cues {
		originalSet[cue.Index] = true
		if _, ok := merged[cue.Index]; !ok {
			lost = append(lost, cue.Index)
		}
	}
	for index := range merged {
		if !originalSet[index] {
			foreign = append(foreign, index)
		}
	}

	if len(lost) > 0 {
		sort.Ints(lost)
		return fmt.Errorf("merged results are missing cue indices %v", lost)
	}
	if len(foreign) > 0 {
		sort.Ints(foreign)
		return fmt.Errorf("merged results contain cue indices %v not present in the source", foreign)
	}
	return nil
}
