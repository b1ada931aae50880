package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memesrc/memesrc-functions/internal/chunker"
	"github.com/memesrc/memesrc-functions/internal/transcode"
)

type locateResult struct {
	chunker.FrameRef
	chunker.Location
	Key string `json:"key"`
}

func locate(index, season, episode, frame string) (locateResult, error) {
	ref, err := chunker.ParseFrameRef(index, season, episode, frame)
	if err != nil {
		return locateResult{}, err
	}
	key, err := chunker.ObjectKey(ref)
	if err != nil {
		return locateResult{}, err
	}
	loc, err := chunker.Locate(ref.Frame)
	if err != nil {
		return locateResult{}, err
	}
	return locateResult{FrameRef: ref, Location: loc, Key: key}, nil
}

func newLocateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "locate INDEX SEASON EPISODE FRAME",
		Short: "Resolve a frame number to its chunk key and offset",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := locate(args[0], args[1], args[2], args[3])
			if err != nil {
				return err
			}
			return newReport(cmd, asJSON).emit(res, func(out io.Writer) {
				fmt.Fprintf(out, "key:    %s\n", res.Key)
				fmt.Fprintf(out, "chunk:  %d\n", res.Chunk)
				fmt.Fprintf(out, "offset: %ss\n", chunker.FormatOffset(res.Offset))
				fmt.Fprintf(out, "ffmpeg: ffmpeg %s\n", strings.Join(transcode.Args("<chunk>", res.Offset, "<frame.jpg>"), " "))
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
