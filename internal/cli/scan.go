package cli

import (
	"github.com/danfragoso/orpheus/internal/library"
	"github.com/spf13/cobra"
)

func newScanCommand(e *env) *cobra.Command {
	var fetchArt bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the music root and rebuild the library cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unlock, err := e.lock()
			if err != nil {
				return err
			}
			defer unlock()

			store, err := e.artworkStore()
			if err != nil {
				return err
			}

			scanner := library.NewScanner(e.cfg.ScanWorkers, store, e.logger.Named("scan"))
			stderr := cmd.ErrOrStderr()
			scanner.Progress = func(n, total int) {
				if n%100 == 0 || n == total {
					fprintf(stderr, "\rReading tags %d/%d", n, total)
				}
				if n == total {
					fprintf(stderr, "\n")
				}
			}

			lib, err := scanner.Scan(cmd.Context(), e.cfg.MusicRoot)
			if err != nil {
				return err
			}
			if err := lib.Save(e.cfg.LibraryPath()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fprintf(out, "Scanned %d tracks, %d albums, %d artists, %d playlists\n",
				len(lib.Tracks), len(lib.Albums), len(lib.Artists), len(lib.Playlists))
			if fetchArt {
				return e.fetchArt(cmd.Context(), out, lib, store)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fetchArt, "fetch-art", false, "Fetch missing artwork from MusicBrainz after scanning.")
	return cmd
}

func newArtCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "art",
		Short: "Fetch missing album artwork from MusicBrainz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unlock, err := e.lock()
			if err != nil {
				return err
			}
			defer unlock()

			lib, err := e.loadLibrary()
			if err != nil {
				return err
			}
			store, err := e.artworkStore()
			if err != nil {
				return err
			}
			return e.fetchArt(cmd.Context(), cmd.OutOrStdout(), lib, store)
		},
	}
}
