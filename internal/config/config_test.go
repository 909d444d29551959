package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	c := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.Flags(fs)
	require.NoError(t, fs.Parse(args))
	return c, Apply(viper.New(), fs)
}

func TestDefaults(t *testing.T) {
	c, err := parse(t)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, 50, c.PageSize)
	assert.Equal(t, 100, c.QueueWindow)
	assert.True(t, c.MusicBrainz)
	assert.Equal(t, filepath.Join(c.DataDir, "orpheus.log"), c.LogFile)
	assert.Equal(t, filepath.Join(c.DataDir, "library.json"), c.LibraryPath())
	assert.Equal(t, filepath.Join(c.DataDir, "playback.json"), c.PlaybackPath())
	assert.Equal(t, filepath.Join(c.DataDir, "settings.json"), c.SettingsPath())
	assert.Equal(t, filepath.Join(c.DataDir, "artwork"), c.ArtworkDir())
}

func TestPriority(t *testing.T) {
	file := filepath.Join(t.TempDir(), "orpheus.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
page-size = 10
queue-window = 30
scan-workers = 2
music-root = "/from/file"
`), 0644))

	t.Setenv("ORPHEUS_PAGE_SIZE", "20")
	t.Setenv("ORPHEUS_QUEUE_WINDOW", "40")
	t.Setenv("ORPHEUS_MUSICBRAINZ", "false")

	c, err := parse(t, "--config", file, "--page-size", "30")
	require.NoError(t, err)
	assert.Equal(t, 30, c.PageSize)
	assert.Equal(t, 40, c.QueueWindow)
	assert.Equal(t, 2, c.ScanWorkers)
	assert.Equal(t, "/from/file", c.MusicRoot)
	assert.False(t, c.MusicBrainz)
}

func TestUnknownOption(t *testing.T) {
	file := filepath.Join(t.TempDir(), "orpheus.yaml")
	require.NoError(t, os.WriteFile(file, []byte("page-size: 5\nshiny: true\n"), 0644))

	_, err := parse(t, "--config", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shiny")
}

func TestMissingFile(t *testing.T) {
	_, err := parse(t, "--config", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestBadEnv(t *testing.T) {
	t.Setenv("ORPHEUS_SCAN_WORKERS", "many")
	_, err := parse(t)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"page size":  func(c *Config) { c.PageSize = 0 },
		"window":     func(c *Config) { c.QueueWindow = -1 },
		"entries":    func(c *Config) { c.CacheEntries = -1 },
		"art bytes":  func(c *Config) { c.ArtworkMaxBytes = -1 },
		"art size":   func(c *Config) { c.ArtworkSize = 0 },
		"workers":    func(c *Config) { c.ScanWorkers = 0 },
		"music root": func(c *Config) { c.MusicRoot = "" },
		"data dir":   func(c *Config) { c.DataDir = "" },
	} {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	c := Default()
	c.LogFile = "/tmp/custom.log"
	require.NoError(t, c.Validate())
	assert.Equal(t, "/tmp/custom.log", c.LogFile)
}

func TestTOMLRoundTrip(t *testing.T) {
	want := Default()
	want.MusicRoot = "/srv/music"
	want.PageSize = 17
	want.ArtworkMaxBytes = 1 << 20
	want.MusicBrainz = false
	require.NoError(t, want.Validate())

	data, err := want.TOML()
	require.NoError(t, err)
	assert.Contains(t, string(data), `music-root = "/srv/music"`)

	file := filepath.Join(t.TempDir(), "orpheus.toml")
	require.NoError(t, os.WriteFile(file, data, 0644))
	got, err := parse(t, "--config", file)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
