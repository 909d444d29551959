// Package config holds the command line configuration of orpheus and binds
// it to flags, ORPHEUS_* environment variables and an optional config file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/danfragoso/orpheus/internal/window"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "ORPHEUS"

// Config field tags match the flag names, which are also the keys of the
// config file.
type Config struct {
	MusicRoot string `toml:"music-root"`
	DataDir   string `toml:"data-dir"`
	LogFile   string `toml:"log-file"`
	LogLevel  string `toml:"log-level"`
	Verbose   bool   `toml:"verbose"`

	PageSize     int `toml:"page-size"`
	QueueWindow  int `toml:"queue-window"`
	CacheEntries int `toml:"cache-entries"`

	ArtworkMaxBytes int64 `toml:"artwork-max-bytes"`
	ArtworkSize     int   `toml:"artwork-size"`
	ScanWorkers     int   `toml:"scan-workers"`
	MusicBrainz     bool  `toml:"musicbrainz"`
}

func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		MusicRoot:       filepath.Join(home, "Music"),
		DataDir:         filepath.Join(home, ".orpheus"),
		LogLevel:        "info",
		PageSize:        50,
		QueueWindow:     window.MaxWindow,
		CacheEntries:    64,
		ArtworkMaxBytes: 64 << 20,
		ArtworkSize:     500,
		ScanWorkers:     4,
		MusicBrainz:     true,
	}
}

// Flags registers every option on fs, each writing into c.
func (c *Config) Flags(fs *pflag.FlagSet) {
	fs.StringVar(&c.MusicRoot, "music-root", c.MusicRoot, "Directory holding the music collection.")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "Directory for the library cache, queue state, settings and artwork.")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Log file, defaults to orpheus.log in the data directory.")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error).")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Also log to stderr.")
	fs.IntVar(&c.PageSize, "page-size", c.PageSize, "Items per browse page.")
	fs.IntVar(&c.QueueWindow, "queue-window", c.QueueWindow, "Queue entries shown around the current track.")
	fs.IntVar(&c.CacheEntries, "cache-entries", c.CacheEntries, "Browse results kept for paging, 0 for no limit.")
	fs.Int64Var(&c.ArtworkMaxBytes, "artwork-max-bytes", c.ArtworkMaxBytes, "Size limit of the artwork cache, 0 for no limit.")
	fs.IntVar(&c.ArtworkSize, "artwork-size", c.ArtworkSize, "Maximum artwork edge in pixels.")
	fs.IntVar(&c.ScanWorkers, "scan-workers", c.ScanWorkers, "Files read in parallel while scanning.")
	fs.BoolVar(&c.MusicBrainz, "musicbrainz", c.MusicBrainz, "Allow fetching missing artwork from MusicBrainz.")
	fs.StringP("config", "c", "", "Configuration file to read from (toml, json or yaml).")
}

// Apply reads the command line, the environment and the config file named
// by the config flag, in that priority order, and sets every flag of flags
// that was not given on the command line.
//
// Environment variables are the flag names upper-cased with dashes replaced
// by underscores and prefixed with ORPHEUS_.
func Apply(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return errors.Wrap(err, "bind flags")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	validTags := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
	})

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading configuration file '%s'", c)
		}
		for _, key := range v.AllKeys() {
			if !validTags[key] {
				return errors.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		if err := f.Value.Set(v.GetString(f.Name)); err != nil {
			flagErr = errors.Wrapf(err, "option %s", f.Name)
		}
	})
	return flagErr
}

// Validate checks option ranges and fills in derived paths.
func (c *Config) Validate() error {
	switch {
	case c.MusicRoot == "":
		return errors.New("music-root must be set")
	case c.DataDir == "":
		return errors.New("data-dir must be set")
	case c.PageSize <= 0:
		return errors.Errorf("page-size must be positive, got %d", c.PageSize)
	case c.QueueWindow <= 0:
		return errors.Errorf("queue-window must be positive, got %d", c.QueueWindow)
	case c.CacheEntries < 0:
		return errors.Errorf("cache-entries must not be negative, got %d", c.CacheEntries)
	case c.ArtworkMaxBytes < 0:
		return errors.Errorf("artwork-max-bytes must not be negative, got %d", c.ArtworkMaxBytes)
	case c.ArtworkSize <= 0:
		return errors.Errorf("artwork-size must be positive, got %d", c.ArtworkSize)
	case c.ScanWorkers <= 0:
		return errors.Errorf("scan-workers must be positive, got %d", c.ScanWorkers)
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "orpheus.log")
	}
	return nil
}

// TOML renders c as a config file Apply accepts.
func (c *Config) TOML() ([]byte, error) {
	data, err := toml.Marshal(*c)
	return data, errors.Wrap(err, "marshal config")
}

func (c *Config) LibraryPath() string  { return filepath.Join(c.DataDir, "library.json") }
func (c *Config) PlaybackPath() string { return filepath.Join(c.DataDir, "playback.json") }
func (c *Config) SettingsPath() string { return filepath.Join(c.DataDir, "settings.json") }
func (c *Config) ArtworkDir() string   { return filepath.Join(c.DataDir, "artwork") }
