// Package logging builds the zap logger shared by all components.
package logging

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const TimeLayout = "2006-01-02 15:04:05.999"

type Config struct {
	// File is appended to; empty disables the log file.
	File  string
	Level string
	// Verbose also writes the log to stderr.
	Verbose bool
}

// New returns a logger writing to the configured outputs and a function
// closing the log file.
func New(cfg Config) (*zap.Logger, func() error, error) {
	var level zapcore.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(TimeLayout)
	encCfg.EncodeCaller = nil
	enc := zapcore.NewConsoleEncoder(encCfg)

	var (
		cores   []zapcore.Core
		closeFn = func() error { return nil }
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, errors.Wrapf(err, "create log directory for %s", cfg.File)
		}
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "open log file %s", cfg.File)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(f), level))
		closeFn = f.Close
	}
	if cfg.Verbose {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stderr), level))
	}
	if len(cores) == 0 {
		return zap.NewNop(), closeFn, nil
	}
	return zap.New(zapcore.NewTee(cores...)), closeFn, nil
}
