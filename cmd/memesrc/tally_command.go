package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/memesrc/memesrc-functions/internal/domain"
	"github.com/memesrc/memesrc-functions/internal/votes"
)

func newTallyCommand() *cobra.Command {
	var (
		file   string
		user   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Aggregate a dump of SeriesUserVote records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var records []domain.SeriesUserVote
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("decode %s: %w", file, err)
			}

			tally := votes.Aggregate(records, user)
			return newReport(cmd, asJSON).emit(tally, func(out io.Writer) {
				ranked := tally.Ranked()
				if len(ranked) == 0 {
					fmt.Fprintln(out, "No votes.")
					return
				}
				fmt.Fprintln(out, rankTable(out, ranked))
			})
		},
	}
	cmd.Flags().StringVarP(&file, "votes", "f", "", "JSON file with an array of vote records")
	cmd.Flags().StringVar(&user, "user", "", "Cognito sub whose votes are reported as Mine")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the raw tally as JSON")
	_ = cmd.MarkFlagRequired("votes")
	return cmd
}
