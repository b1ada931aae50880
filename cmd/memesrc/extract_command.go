package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memesrc/memesrc-functions/internal/chunker"
	"github.com/memesrc/memesrc-functions/internal/config"
	"github.com/memesrc/memesrc-functions/internal/storage"
	"github.com/memesrc/memesrc-functions/internal/transcode"
)

type extractOptions struct {
	chunk  string
	bucket string
	region string
	ffmpeg string
	out    string
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	opts := extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract INDEX SEASON EPISODE FRAME",
		Short: "Extract one frame as JPEG from a local chunk or the bucket",
		Long: "Extract one frame as JPEG. With --chunk the file is treated as the chunk\n" +
			"holding FRAME; otherwise the chunk is downloaded from --bucket.",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd.OutOrStdout(), ctx.log(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.chunk, "chunk", "", "Local chunk file")
	cmd.Flags().StringVar(&opts.bucket, "bucket", os.Getenv("STORAGE_MEMESRCGENERATEDIMAGES_BUCKETNAME"), "Bucket holding source chunks")
	cmd.Flags().StringVar(&opts.region, "region", "us-east-1", "AWS region of the bucket")
	cmd.Flags().StringVar(&opts.ffmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output JPEG path (default frame-<n>.jpg)")
	return cmd
}

func runExtract(ctx context.Context, out io.Writer, logger *zap.Logger, opts extractOptions, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := locate(args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}
	if opts.out == "" {
		opts.out = "frame-" + strconv.Itoa(res.Frame) + ".jpg"
	}

	input := opts.chunk
	if input == "" {
		if opts.bucket == "" {
			return errors.New("either --chunk or --bucket is required")
		}
		awsCfg, err := config.AWS(ctx, opts.region)
		if err != nil {
			return err
		}
		logger.Debug("downloading chunk", zap.String("bucket", opts.bucket), zap.String("key", res.Key))
		input, err = storage.NewFromConfig(awsCfg, opts.bucket).DownloadToTemp(ctx, res.Key, os.TempDir(), ".mp4")
		if err != nil {
			return err
		}
		defer os.Remove(input)
	}

	logger.Debug("extracting", zap.String("input", input), zap.String("offset", chunker.FormatOffset(res.Offset)))
	if err := transcode.New(opts.ffmpeg).ExtractFrame(ctx, input, res.Offset, opts.out); err != nil {
		return err
	}
	fmt.Fprintln(out, opts.out)
	return nil
}
