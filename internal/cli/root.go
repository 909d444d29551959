// Package cli implements the orpheus command line.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/danfragoso/orpheus/internal/artwork"
	"github.com/danfragoso/orpheus/internal/config"
	"github.com/danfragoso/orpheus/internal/library"
	"github.com/danfragoso/orpheus/internal/logging"
	"github.com/danfragoso/orpheus/internal/settings"
	"github.com/danfragoso/orpheus/internal/source"
	"github.com/danfragoso/orpheus/internal/version"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// env is what every command gets once configuration has been applied.
type env struct {
	cfg      *config.Config
	settings *settings.Settings
	logger   *zap.Logger
	closeLog func() error
}

func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	e := &env{cfg: config.Default(), logger: zap.NewNop(), closeLog: func() error { return nil }}

	rc := &cobra.Command{
		Use:   "orpheus",
		Short: "Orpheus is a music library and play queue manager.",
		Long: `Orpheus scans a music folder, lets you browse it through content
sources, keeps a play queue between runs and fetches missing album artwork.

` + version.String() + "\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(viper.New(), cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			_ = e.logger.Sync()
			return e.closeLog()
		},
	}
	e.cfg.Flags(rc.PersistentFlags())

	rc.AddCommand(newScanCommand(e))
	rc.AddCommand(newSourcesCommand(e))
	rc.AddCommand(newBrowseCommand(e))
	rc.AddCommand(newQueueCommand(e))
	rc.AddCommand(newArtCommand(e))
	rc.AddCommand(newSettingsCommand(e))
	rc.AddCommand(newConfigCommand(e))
	rc.AddCommand(newAboutCommand(e))
	rc.AddCommand(newVersionCommand(e))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

func (e *env) setup(v *viper.Viper, cmd *cobra.Command) error {
	if err := config.Apply(v, cmd.Flags()); err != nil {
		return err
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(e.cfg.DataDir, 0755); err != nil {
		return errors.Wrapf(err, "create data directory %s", e.cfg.DataDir)
	}

	st, err := settings.Load(e.cfg.SettingsPath(), nil)
	if err != nil {
		return err
	}
	e.settings = st
	// Saved preferences apply unless the option was given explicitly.
	if !v.IsSet("page-size") {
		e.cfg.PageSize = st.PageSize
	}
	if !v.IsSet("queue-window") {
		e.cfg.QueueWindow = st.QueueWindow
	}

	logCfg := logging.Config{Level: e.cfg.LogLevel, Verbose: e.cfg.Verbose}
	if st.LocalLogsEnabled {
		logCfg.File = e.cfg.LogFile
	}
	logger, closeLog, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	e.logger, e.closeLog = logger, closeLog
	e.logger.Debug("orpheus starting",
		zap.String("command", cmd.CommandPath()),
		zap.String("version", version.Version),
		zap.String("installation", st.InstallationID))
	return nil
}

// lock takes the data directory lock held by commands that rewrite the
// library or the queue.
func (e *env) lock() (func(), error) {
	fl := flock.New(filepath.Join(e.cfg.DataDir, "orpheus.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "lock %s", fl.Path())
	}
	if !ok {
		return nil, errors.Errorf("another orpheus is using %s", e.cfg.DataDir)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			e.logger.Warn("could not release data lock", zap.Error(err))
		}
	}, nil
}

// loadLibrary reads the library cache written by the scan command.
func (e *env) loadLibrary() (*library.Library, error) {
	lib, err := library.Load(e.cfg.LibraryPath())
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Errorf("no library at %s, run 'orpheus scan' first", e.cfg.LibraryPath())
		}
		return nil, err
	}
	return lib, nil
}

// registry returns the built-in sources, narrowed by filter when it is set.
func (e *env) registry(lib *library.Library, filter string) (*source.Registry, error) {
	return source.NewRegistry(
		source.Filtered(source.NewLibrarySource(lib), filter),
		source.Filtered(source.NewFolderSource(e.cfg.MusicRoot), filter),
	)
}

func (e *env) artworkStore() (*artwork.Store, error) {
	return artwork.NewStore(e.cfg.ArtworkDir(), e.cfg.ArtworkMaxBytes, e.cfg.ArtworkSize, e.logger.Named("artwork"))
}

// fetchArt fills in missing artwork from MusicBrainz and saves the library.
func (e *env) fetchArt(ctx context.Context, w io.Writer, lib *library.Library, store *artwork.Store) error {
	if !e.cfg.MusicBrainz {
		return errors.New("MusicBrainz lookups are disabled (--musicbrainz=false)")
	}
	mb := artwork.NewMusicBrainz(artwork.DefaultMusicBrainzConfig(version.Version), e.logger.Named("musicbrainz"))
	f := artwork.NewFetcher(mb, store, e.logger.Named("artwork"))
	f.Status = func(album *library.Album, msg string) {
		fprintf(w, "%s - %s: %s\n", album.Artist, album.Name, msg)
	}

	res, err := f.FetchMissing(ctx, lib)
	if err != nil {
		return err
	}
	fprintf(w, "Artwork: %d missing, %d fetched, %d not found\n", res.Missing, res.Fetched, res.Failed)
	return lib.Save(e.cfg.LibraryPath())
}
