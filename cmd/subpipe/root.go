package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MimeLyc/movie-sub-pipeline/internal/config"
	"github.com/MimeLyc/movie-sub-pipeline/internal/pipeline"
)

// commandContext lazily loads configuration once for whichever subcommand
// runs. Flag overrides are applied on top of the environment.
type commandContext struct {
	chunkSizeFlag   int
	contextCuesFlag int

	cfg *config.Config
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	// Optional .env next to the working directory, same as the container
	// deployments use.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, pipeline.WrapError(err, pipeline.ErrConfig, "invalid configuration")
	}

	if c.chunkSizeFlag > 0 {
		cfg.Chunk.MaxChunkSize = c.chunkSizeFlag
	}
	if c.contextCuesFlag >= 0 {
		cfg.Chunk.ContextCues = c.contextCuesFlag
	}

	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) pipeline() (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg), nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "subpipe",
		Short:         "Movie subtitle translation pipeline",
		Long:          "subpipe moves a movie subtitle file through analysis, chunking, LLM translation and reassembly. Every stage is safely re-runnable.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().IntVar(&ctx.chunkSizeFlag, "chunk-size", 0, "Override maximum cues per chunk")
	rootCmd.PersistentFlags().IntVar(&ctx.contextCuesFlag, "context-cues", -1, "Override read-only context cues per chunk")

	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newPrepareCommand(ctx))
	rootCmd.AddCommand(newTranslateCommand(ctx))
	rootCmd.AddCommand(newAssembleCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))

	return rootCmd
}

func singleProjectArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one project directory argument")
	}
	return nil
}
