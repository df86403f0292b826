package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pageza/nocapcooking/backend/config"
	"github.com/pageza/nocapcooking/backend/internal/mediagen"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGenAudioCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gen-audio <dir>",
		Short: "Narrate every recipe without an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.mediaConfig()
			if err != nil {
				return err
			}
			return runMediaJob(cmd, a, cfg, args[0], mediagen.NewAudioJob(cfg.Audio))
		},
	}
}

func newGenImagesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gen-images <dir>",
		Short: "Render a dish image for every recipe without one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.mediaConfig()
			if err != nil {
				return err
			}
			return runMediaJob(cmd, a, cfg, args[0], mediagen.NewImageJob(cfg.Image))
		},
	}
}

func runMediaJob(cmd *cobra.Command, a *app, cfg mediagen.Config, dir string, job mediagen.Job) error {
	var uploader mediagen.Uploader
	s3cfg, err := config.NewS3Config(cmd.Context(), cfg.S3Bucket, cfg.S3Region)
	switch {
	case errors.Is(err, config.ErrNoBucket):
		a.logger.Debug("no s3_bucket configured, skipping upload")
	case err != nil:
		return fmt.Errorf("configure S3: %w", err)
	default:
		uploader = mediagen.NewS3Uploader(s3cfg)
		a.logger.Info("uploading to S3", zap.String("bucket", cfg.S3Bucket))
	}

	summary, err := mediagen.NewRunner(cfg, a.logger, uploader).Run(cmd.Context(), dir, job)
	if summary != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Files: %d  Generated: %d  Skipped: %d  Uploaded: %d  Failed: %d\n",
			summary.Files, summary.Generated, summary.Skipped, summary.Uploaded, len(summary.Failed))
		if len(summary.Failed) > 0 {
			rows := make([][]string, 0, len(summary.Failed))
			for _, f := range summary.Failed {
				rows = append(rows, []string{f.File, f.Name, f.Err.Error()})
			}
			fmt.Fprintln(out, renderTable([]string{"File", "Recipe", "Error"}, rows, nil))
		}
	}
	return err
}

func newMissingImagesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "missing-images <dir>",
		Short: "List recipes that have no generated image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.mediaConfig()
			if err != nil {
				return err
			}
			missing, err := mediagen.MissingImages(cfg, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(missing) == 0 {
				fmt.Fprintln(out, "No missing images")
				return nil
			}
			rows := make([][]string, 0, len(missing))
			for _, m := range missing {
				rows = append(rows, []string{m.File, m.Name})
			}
			fmt.Fprintln(out, renderTable([]string{"File", "Recipe"}, rows, nil, "Missing", strconv.Itoa(len(missing))))
			return nil
		},
	}
}

func newPromptsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prompts <dir>",
		Short: "Write describe-prompt lists for an external language model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.mediaConfig()
			if err != nil {
				return err
			}
			written, err := mediagen.WritePrompts(cfg, args[0])
			for _, w := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d prompts to %s\n", w.Prompts, w.Path)
			}
			return err
		},
	}
}
