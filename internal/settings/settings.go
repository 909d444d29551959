// Package settings persists user preferences in a small JSON file.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/danfragoso/orpheus/internal/window"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultPageSize   = 50
	DefaultLastSource = "library"
)

type Settings struct {
	InstallationID   string `json:"installation_id,omitempty"`
	PageSize         int    `json:"page_size,omitempty"`
	QueueWindow      int    `json:"queue_window,omitempty"`
	LastSource       string `json:"last_source,omitempty"`
	LocalLogsEnabled bool   `json:"local_logs_enabled"`
}

// Default returns the settings of a fresh install, without an installation ID.
func Default() *Settings {
	return &Settings{
		PageSize:         DefaultPageSize,
		QueueWindow:      window.MaxWindow,
		LastSource:       DefaultLastSource,
		LocalLogsEnabled: true,
	}
}

// Load reads the settings file at path. A missing file gives the defaults.
// An installation ID is generated and saved the first time one is missing.
func Load(path string, logger *zap.Logger) (*Settings, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		logger.Info("no settings file, using defaults", zap.String("path", path))
	case err != nil:
		return nil, errors.Wrapf(err, "read settings %s", path)
	default:
		if err := json.Unmarshal(data, s); err != nil {
			return nil, errors.Wrapf(err, "parse settings %s", path)
		}
	}
	s.fill()

	if s.InstallationID == "" {
		s.InstallationID = uuid.New().String()
		logger.Info("generated new installation ID", zap.String("id", s.InstallationID))
		if err := s.Save(path); err != nil {
			return nil, err
		}
	} else {
		logger.Debug("loaded installation ID", zap.String("id", s.InstallationID))
	}
	return s, nil
}

// fill replaces unset or invalid values with their defaults.
func (s *Settings) fill() {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.QueueWindow <= 0 {
		s.QueueWindow = window.MaxWindow
	}
	if s.LastSource == "" {
		s.LastSource = DefaultLastSource
	}
}

func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write settings %s", path)
}
