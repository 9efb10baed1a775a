package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MimeLyc/movie-sub-pipeline/internal/pipeline"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "analyze <project-dir>",
		Short: "Generate the metadata artifact from the source subtitle",
		Args:  singleProjectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			return p.Analyze(cmd.Context(), args[0], force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Regenerate metadata.json even if it exists")
	return cmd
}

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare <project-dir>",
		Short: "Chunk the source subtitle and seed the batch state",
		Args:  singleProjectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			result, err := p.Prepare(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Prepared %d cues in %d chunks (%d new, %d kept)\n",
				result.CueCount, len(result.Chunks), result.NewChunks, result.KeptChunks)
			return nil
		},
	}
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <project-dir>",
		Short: "Translate every chunk not yet completed",
		Args:  singleProjectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			report, err := p.Translate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Chunks: %d already completed, %d newly completed, %d failed\n",
				report.AlreadyCompleted, report.NewlyCompleted, report.Failed)
			if report.Halted {
				fmt.Printf("Batch halted early: %s\n", report.HaltReason)
			}
			if report.Failed > 0 {
				fmt.Println("Re-run translate to retry failed chunks")
			}
			return nil
		},
	}
}

func newAssembleCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "assemble <project-dir>",
		Short: "Merge completed chunks into the final subtitle file",
		Args:  singleProjectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			outputPath, count, err := p.Assemble(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d cues)\n", outputPath, count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default <project>/<name>.<lang>.srt)")
	return cmd
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Scan the movies root on a schedule and process incomplete projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			return pipeline.NewWatcher(p).Run(cmd.Context())
		},
	}
}
