package translator

import (
	"context"
	"fmt"

	"github.com/MimeLyc/movie-sub-pipeline/internal/batch"
	"github.com/MimeLyc/movie-sub-pipeline/internal/chunker"
	"github.com/MimeLyc/movie-sub-pipeline/pkg/log"
)

// Collaborator is the external LLM-backed capability performing the
// translation of one chunk prompt. Any backend (a model API, a local model,
// a human-in-the-loop tool) can implement it.
type Collaborator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Driver walks the pending chunks strictly in chunk id order, dispatches each
// prompt to the collaborator, validates the response shape and records the
// outcome in the batch state. There is no concurrent dispatch: the
// collaborator's context and cost profile assumes sequential calls.
type Driver struct {
	collaborator Collaborator
	store        *batch.Store

	chunks         []chunker.Chunk
	opts           chunker.Options
	storyContext   string
	sourceLanguage string
	targetLanguage string
}

func NewDriver(
	collaborator Collaborator,
	store *batch.Store,
	chunks []chunker.Chunk,
	opts chunker.Options,
	storyContext string,
	sourceLanguage string,
	targetLanguage string,
) *Driver {
	return &Driver{
		collaborator:   collaborator,
		store:          store,
		chunks:         chunks,
		opts:           opts,
		storyContext:   storyContext,
		sourceLanguage: sourceLanguage,
		targetLanguage: targetLanguage,
	}
}

// RunReport summarizes one translation run.
type RunReport struct {
	AlreadyCompleted int
	NewlyCompleted   int
	Failed           int
	// Halted is set when the collaborator became unavailable and the run
	// stopped early instead of producing a stream of guaranteed failures.
	Halted     bool
	HaltReason string
}

// Run processes every chunk the batch state reports as not completed.
// A response with the wrong shape fails that chunk and the run continues;
// a collaborator transport failure fails the chunk and halts the run.
func (d *Driver) Run(ctx context.Context) (*RunReport, error) {
	pending, err := d.store.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending chunks: %w", err)
	}

	report := &RunReport{
		AlreadyCompleted: len(d.chunks) - len(pending),
	}

	for _, state := range pending {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		if state.ChunkID < 0 || state.ChunkID >= len(d.chunks) {
			return report, fmt.Errorf("batch state references unknown chunk %d", state.ChunkID)
		}
		chunk := d.chunks[state.ChunkID]

		log.Info("Translating chunk %d/%d (cues %d-%d)",
			chunk.ID+1, len(d.chunks), chunk.StartIndex, chunk.EndIndex)

		payload := chunker.BuildPrompt(
			d.chunks, state.ChunkID,
			d.storyContext, d.sourceLanguage, d.targetLanguage,
			d.opts,
		)

		if err := d.store.MarkSent(ctx, chunk.ID); err != nil {
			return report, err
		}

		raw, err := d.collaborator.Complete(ctx, payload.System, payload.User)
		if err != nil {
			reason := fmt.Sprintf("collaborator unavailable: %v", err)
			if markErr := d.store.MarkFailed(ctx, chunk.ID, reason); markErr != nil {
				return report, markErr
			}
			report.Failed++
			report.Halted = true
			report.HaltReason = reason
			log.Error("Chunk %d failed: %s; halting batch", chunk.ID, reason)
			break
		}

		result, err := ParseResponse(raw, chunk)
		if err != nil {
			reason := err.Error()
			if markErr := d.store.MarkFailed(ctx, chunk.ID, reason); markErr != nil {
				return report, markErr
			}
			report.Failed++
			log.Error("Chunk %d failed: %s", chunk.ID, reason)
			continue
		}

		if err := d.store.MarkCompleted(ctx, chunk.ID, result); err != nil {
			return report, err
		}
		report.NewlyCompleted++
	}

	return report, nil
}
