package cli

import (
	"context"
	"time"

	"github.com/danfragoso/orpheus/internal/version"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAboutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Show version, installation and project information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fprintf(out, "%s\n", version.String())
			fprintf(out, "Installation: %s\n", e.settings.InstallationID)
			fprintf(out, "Music root:   %s\n", e.cfg.MusicRoot)
			fprintf(out, "Data:         %s\n", e.cfg.DataDir)
			if store, err := e.artworkStore(); err == nil {
				if used, err := store.Size(); err == nil {
					limit := "no limit"
					if e.cfg.ArtworkMaxBytes > 0 {
						limit = humanize.Bytes(uint64(e.cfg.ArtworkMaxBytes))
					}
					fprintf(out, "Artwork:      %s of %s\n", humanize.Bytes(uint64(used)), limit)
				}
			}
			fprintf(out, "Project:      %s\n\n", version.ProjectURL)

			qr, err := qrcode.New(version.ProjectURL, qrcode.Medium)
			if err != nil {
				return errors.Wrap(err, "encode QR code")
			}
			fprintf(out, "%s", qr.ToSmallString(false))
			return nil
		},
	}
}

func newConfigCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := e.cfg.TOML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newVersionCommand(e *env) *cobra.Command {
	var (
		check bool
		url   string
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version, optionally checking for a newer one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fprintf(out, "%s\n", version.String())
			if !check {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			latest, update, err := version.Check(ctx, url)
			if err != nil {
				e.logger.Warn("version check failed", zap.Error(err))
				return err
			}
			if update {
				fprintf(out, "Update available: %s (running %s), see %s\n", latest, version.Version, version.ProjectURL)
			} else {
				fprintf(out, "Up to date\n")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Compare with the latest published version.")
	cmd.Flags().StringVar(&url, "check-url", version.CheckURL, "Where the published version is read from.")
	_ = cmd.Flags().MarkHidden("check-url")
	return cmd
}
