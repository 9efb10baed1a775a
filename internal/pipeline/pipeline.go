package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/MimeLyc/movie-sub-pipeline/internal/analyzer"
	"github.com/MimeLyc/movie-sub-pipeline/internal/assembler"
	"github.com/MimeLyc/movie-sub-pipeline/internal/batch"
	"github.com/MimeLyc/movie-sub-pipeline/internal/chunker"
	"github.com/MimeLyc/movie-sub-pipeline/internal/config"
	"github.com/MimeLyc/movie-sub-pipeline/internal/llm"
	"github.com/MimeLyc/movie-sub-pipeline/internal/project"
	"github.com/MimeLyc/movie-sub-pipeline/internal/subtitle"
	"github.com/MimeLyc/movie-sub-pipeline/internal/translator"
	"github.com/MimeLyc/movie-sub-pipeline/pkg/log"
)

// Pipeline drives the per-project stages. Each stage is independently
// invocable and idempotent: re-running resumes from the durable batch state
// instead of redoing finished work.
type Pipeline struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

func (p *Pipeline) chunkOptions() chunker.Options {
	return chunker.Options{
		MaxChunkSize: p.cfg.Chunk.MaxChunkSize,
		ContextCues:  p.cfg.Chunk.ContextCues,
		SilenceSplit: p.cfg.Chunk.SilenceSplit,
		SilenceGap:   p.cfg.Chunk.SilenceGap,
	}
}

func (p *Pipeline) newCollaborator() (*llm.Client, error) {
	client, err := llm.NewClient(&llm.Config{
		APIKey:      p.cfg.LLM.APIKey,
		APIURL:      p.cfg.LLM.APIURL,
		Model:       p.cfg.LLM.Model,
		MaxTokens:   p.cfg.LLM.MaxTokens,
		Temperature: p.cfg.LLM.Temperature,
		Timeout:     p.cfg.LLM.Timeout,
		SiteURL:     p.cfg.LLM.SiteURL,
		AppName:     p.cfg.LLM.AppName,
	})
	if err != nil {
		return nil, WrapError(err, ErrConfig, "LLM client configuration is invalid")
	}
	return client, nil
}

// loadSource opens the project and parses its source subtitle file.
func (p *Pipeline) loadSource(dir string) (*project.Project, *subtitle.File, error) {
	proj, err := project.Open(dir)
	if err != nil {
		return nil, nil, WrapError(err, ErrFileRead, "cannot open project")
	}

	srtPath, err := proj.SourceSubtitlePath()
	if err != nil {
		return nil, nil, WrapError(err, ErrFileRead, "cannot locate source subtitle")
	}

	file, err := subtitle.ReadFile(srtPath)
	if err != nil {
		var formatErr *subtitle.FormatError
		if errors.As(err, &formatErr) {
			return nil, nil, WrapError(err, ErrFormat, "source subtitle is malformed").
				WithContext("path", srtPath)
		}
		return nil, nil, WrapError(err, ErrFileRead, "cannot read source subtitle")
	}

	return proj, file, nil
}

// storyContext renders the metadata-backed prompt context. Missing or
// malformed metadata degrades to the conservative fallback, it never aborts.
func (p *Pipeline) storyContext(proj *project.Project) string {
	targetName := display.English.Tags().Name(p.cfg.Translate.TargetLanguage)

	meta, err := proj.LoadMetadata()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("No metadata.json for %s; translating with degraded context", proj.Name)
		} else {
			log.Warn("Ignoring unusable metadata for %s: %v", proj.Name, err)
		}
		return (*project.Metadata)(nil).ContextText(targetName)
	}
	return meta.ContextText(targetName)
}

// Analyze runs the content-analysis stage and writes metadata.json.
func (p *Pipeline) Analyze(ctx context.Context, dir string, force bool) error {
	proj, err := project.Open(dir)
	if err != nil {
		return WrapError(err, ErrFileRead, "cannot open project")
	}

	collaborator, err := p.newCollaborator()
	if err != nil {
		return err
	}

	targetName := display.English.Tags().Name(p.cfg.Translate.TargetLanguage)
	if _, err := analyzer.New(collaborator).Analyze(ctx, proj, targetName, force); err != nil {
		return WrapError(err, ErrAPI, "analysis failed").WithContext("project", proj.Name)
	}
	return nil
}

// PrepareResult reports what the prepare stage produced.
type PrepareResult struct {
	Project    *project.Project
	CueCount   int
	Chunks     []chunker.Chunk
	NewChunks  int
	KeptChunks int
}

// Prepare parses the source subtitle, computes chunk boundaries and seeds the
// batch state. Chunk artifacts are also written under chunks/ for review;
// they are a convenience copy, the batch state stays authoritative.
func (p *Pipeline) Prepare(ctx context.Context, dir string) (*PrepareResult, error) {
	proj, file, err := p.loadSource(dir)
	if err != nil {
		return nil, err
	}

	unlock, err := lockProject(proj)
	if err != nil {
		return nil, err
	}
	defer unlock()

	chunks, err := chunker.Split(file.Cues, p.chunkOptions())
	if err != nil {
		return nil, WrapError(err, ErrConfig, "invalid chunk configuration")
	}

	store, err := batch.Open(proj.BatchDBPath())
	if err != nil {
		return nil, WrapError(err, ErrState, "cannot open batch state")
	}
	defer store.Close()

	before, err := store.Summarize(ctx)
	if err != nil {
		return nil, WrapError(err, ErrState, "cannot read batch state")
	}

	if err := store.Initialize(ctx, chunks); err != nil {
		return nil, WrapError(err, ErrState, "cannot seed batch state")
	}

	if err := p.writeChunkArtifacts(proj, chunks); err != nil {
		return nil, err
	}

	result := &PrepareResult{
		Project:    proj,
		CueCount:   len(file.Cues),
		Chunks:     chunks,
		NewChunks:  len(chunks) - before.Total,
		KeptChunks: before.Total,
	}
	log.Info("Prepared %s: %d cues in %d chunks (%d new, %d kept)",
		proj.Name, result.CueCount, len(chunks), result.NewChunks, result.KeptChunks)
	return result, nil
}

func (p *Pipeline) writeChunkArtifacts(proj *project.Project, chunks []chunker.Chunk) error {
	chunksDir := filepath.Join(proj.Dir, "chunks")
	if err := os.MkdirAll(chunksDir, 0o755); err != nil {
		return WrapError(err, ErrFileWrite, "cannot create chunks directory")
	}

	for _, chunk := range chunks {
		path := filepath.Join(chunksDir, fmt.Sprintf("chunk_%03d.srt", chunk.ID))
		if err := subtitle.WriteFile(path, chunk.Cues); err != nil {
			return WrapError(err, ErrFileWrite, "cannot write chunk artifact").
				WithContext("chunk", chunk.ID)
		}
	}
	return nil
}

// Translate runs the translation driver over every non-completed chunk.
// Prepare is implied: the batch state is seeded if it is empty.
func (p *Pipeline) Translate(ctx context.Context, dir string) (*translator.RunReport, error) {
	proj, file, err := p.loadSource(dir)
	if err != nil {
		return nil, err
	}

	unlock, err := lockProject(proj)
	if err != nil {
		return nil, err
	}
	defer unlock()

	chunks, err := chunker.Split(file.Cues, p.chunkOptions())
	if err != nil {
		return nil, WrapError(err, ErrConfig, "invalid chunk configuration")
	}

	store, err := batch.Open(proj.BatchDBPath())
	if err != nil {
		return nil, WrapError(err, ErrState, "cannot open batch state")
	}
	defer store.Close()

	if err := store.Initialize(ctx, chunks); err != nil {
		return nil, WrapError(err, ErrState, "cannot seed batch state")
	}

	collaborator, err := p.newCollaborator()
	if err != nil {
		return nil, err
	}

	sourceName := display.English.Tags().Name(file.Language)
	if file.Language == language.Und {
		sourceName = "the source language"
	}
	targetName := display.English.Tags().Name(p.cfg.Translate.TargetLanguage)

	driver := translator.NewDriver(
		collaborator,
		store,
		chunks,
		p.chunkOptions(),
		p.storyContext(proj),
		sourceName,
		targetName,
	)

	report, err := driver.Run(ctx)
	if err != nil {
		return report, WrapError(err, ErrState, "translation run aborted")
	}

	log.Info("Translation run for %s: %d already completed, %d newly completed, %d failed",
		proj.Name, report.AlreadyCompleted, report.NewlyCompleted, report.Failed)
	if report.Halted {
		log.Warn("Batch halted early: %s", report.HaltReason)
	}
	return report, nil
}

// Assemble merges completed chunk results into the final subtitle file.
// outputOverride, when non-empty, replaces the default output path.
func (p *Pipeline) Assemble(ctx context.Context, dir string, outputOverride string) (string, int, error) {
	proj, file, err := p.loadSource(dir)
	if err != nil {
		return "", 0, err
	}

	unlock, err := lockProject(proj)
	if err != nil {
		return "", 0, err
	}
	defer unlock()

	store, err := batch.Open(proj.BatchDBPath())
	if err != nil {
		return "", 0, WrapError(err, ErrState, "cannot open batch state")
	}
	defer store.Close()

	outputPath := proj.OutputPath(p.cfg.Translate.TargetLanguage)
	if outputOverride != "" {
		outputPath = outputOverride
	}

	count, err := assembler.Assemble(ctx, store, file, outputPath)
	if err != nil {
		var incomplete *assembler.IncompleteBatchError
		if errors.As(err, &incomplete) {
			return "", 0, WrapError(err, ErrIncompleteBatch, "not every chunk is completed").
				WithContext("missing_chunks", incomplete.MissingChunkIDs)
		}
		return "", 0, WrapError(err, ErrState, "assembly failed")
	}

	return outputPath, count, nil
}

// Status reports the batch state without mutating anything.
func (p *Pipeline) Status(ctx context.Context, dir string) (batch.Summary, []batch.ChunkState, error) {
	proj, err := project.Open(dir)
	if err != nil {
		return batch.Summary{}, nil, WrapError(err, ErrFileRead, "cannot open project")
	}

	if _, statErr := os.Stat(proj.BatchDBPath()); statErr != nil {
		return batch.Summary{}, nil, WrapError(statErr, ErrState, "no batch state; run the prepare stage first")
	}

	store, err := batch.Open(proj.BatchDBPath())
	if err != nil {
		return batch.Summary{}, nil, WrapError(err, ErrState, "cannot open batch state")
	}
	defer store.Close()

	summary, err := store.Summarize(ctx)
	if err != nil {
		return batch.Summary{}, nil, WrapError(err, ErrState, "cannot read batch state")
	}
	states, err := store.All(ctx)
	if err != nil {
		return batch.Summary{}, nil, WrapError(err, ErrState, "cannot read batch state")
	}
	return summary, states, nil
}
