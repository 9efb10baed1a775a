package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/movie-sub-pipeline/internal/project"
	"github.com/MimeLyc/movie-sub-pipeline/pkg/log"
)

// Watcher periodically scans the movies root and drives every project that
// still lacks a translated output through the full pipeline. Overlapping
// cron fires collapse into one run via singleflight.
type Watcher struct {
	pipeline *Pipeline
	cron     *cron.Cron
	group    singleflight.Group
}

func NewWatcher(pipeline *Pipeline) *Watcher {
	return &Watcher{
		pipeline: pipeline,
		cron:     cron.New(),
	}
}

// Run schedules the scan and blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	log.Info("Watching %s (cron %q)", w.pipeline.cfg.Watch.MoviesDir, w.pipeline.cfg.Watch.CronExpr)

	runFunc := func() {
		_, _, _ = w.group.Do("scan", func() (any, error) {
			w.scan(ctx)
			return nil, nil
		})
	}

	if _, err := w.cron.AddFunc(w.pipeline.cfg.Watch.CronExpr, runFunc); err != nil {
		return WrapError(err, ErrConfig, "invalid WATCH_CRON expression")
	}

	// One immediate pass so a fresh deployment does not idle until the
	// first cron fire.
	runFunc()

	w.cron.Start()
	<-ctx.Done()

	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

func (w *Watcher) scan(ctx context.Context) {
	root := w.pipeline.cfg.Watch.MoviesDir
	entries, err := os.ReadDir(root)
	if err != nil {
		log.Error("Failed to scan %s: %v", root, err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		dir := filepath.Join(root, entry.Name())
		if done, err := w.projectDone(dir); err != nil || done {
			continue
		}

		log.Info("Watch: processing project %s", entry.Name())
		w.process(ctx, dir)
	}
}

// projectDone reports whether the project already has its translated output
// or holds no subtitle to translate at all.
func (w *Watcher) projectDone(dir string) (bool, error) {
	proj, err := project.Open(dir)
	if err != nil {
		return false, err
	}
	if _, err := proj.SourceSubtitlePath(); err != nil {
		return true, nil
	}
	_, err = os.Stat(proj.OutputPath(w.pipeline.cfg.Translate.TargetLanguage))
	return err == nil, nil
}

// process runs the remaining stages for one project. Errors are logged and
// the scan moves on; the next fire resumes from the batch state.
func (w *Watcher) process(ctx context.Context, dir string) {
	if _, err := w.pipeline.Prepare(ctx, dir); err != nil {
		log.Error("Watch: prepare failed for %s: %v", dir, err)
		return
	}

	report, err := w.pipeline.Translate(ctx, dir)
	if err != nil {
		log.Error("Watch: translate failed for %s: %v", dir, err)
		return
	}
	if report.Failed > 0 || report.Halted {
		log.Warn("Watch: %s has unfinished chunks, retrying on the next fire", dir)
		return
	}

	outputPath, count, err := w.pipeline.Assemble(ctx, dir, "")
	if err != nil {
		log.Error("Watch: assemble failed for %s: %v", dir, err)
		return
	}
	log.Info("Watch: wrote %s (%d cues)", outputPath, count)
}
