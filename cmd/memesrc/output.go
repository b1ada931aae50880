package main

import (
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/memesrc/memesrc-functions/internal/votes"
)

// report is where a subcommand sends its result: JSON for scripts, or the
// command's own text rendering.
type report struct {
	w      io.Writer
	asJSON bool
}

func newReport(cmd *cobra.Command, asJSON bool) report {
	return report{w: cmd.OutOrStdout(), asJSON: asJSON}
}

func (r report) emit(v any, render func(w io.Writer)) error {
	if !r.asJSON {
		render(r.w)
		return nil
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// rankTable renders ranked series with the vote columns right-aligned.
// Terminals get box drawing; pipes get plain ASCII.
func rankTable(w io.Writer, ranks []votes.Rank) string {
	tw := table.NewWriter()
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"#", "Series", "Net", "Up", "Down", "Mine"})
	for i, r := range ranks {
		mine := ""
		if r.Mine != 0 {
			mine = strconv.Itoa(r.Mine)
		}
		tw.AppendRow(table.Row{i + 1, r.SeriesID, r.Net, r.Up, r.Down, mine})
	}

	right := table.ColumnConfig{Align: text.AlignRight, AlignHeader: text.AlignRight}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		withNumber(right, 3),
		withNumber(right, 4),
		withNumber(right, 5),
		withNumber(right, 6),
	})
	return tw.Render()
}

func withNumber(c table.ColumnConfig, n int) table.ColumnConfig {
	c.Number = n
	return c
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
