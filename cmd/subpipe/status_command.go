package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/MimeLyc/movie-sub-pipeline/internal/batch"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <project-dir>",
		Short: "Show batch progress for a project",
		Args:  singleProjectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			summary, states, err := p.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), summary, states)
			return nil
		},
	}
	return cmd
}

func renderStatus(w io.Writer, summary batch.Summary, states []batch.ChunkState) {
	fmt.Fprintf(w, "chunks: %d total, %d completed, %d failed, %d sent, %d pending\n\n",
		summary.Total, summary.Completed, summary.Failed, summary.Sent, summary.Pending)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if shouldColorize(w) {
		tw.SetStyle(table.StyleColoredBright)
	} else {
		tw.SetStyle(table.StyleRounded)
	}
	tw.AppendHeader(table.Row{"Chunk", "Cues", "Status", "Updated", "Error"})
	for _, st := range states {
		tw.AppendRow(table.Row{
			st.ChunkID,
			fmt.Sprintf("%d-%d", st.StartIndex, st.EndIndex),
			string(st.Status),
			st.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
			truncateError(st.Error),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
	})
	tw.Render()
}

func truncateError(msg string) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	const limit = 60
	if len(msg) > limit {
		return msg[:limit-3] + "..."
	}
	return msg
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
