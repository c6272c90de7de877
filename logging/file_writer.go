package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationPolicy controls when a log file is rotated and how many old files are kept.
type RotationPolicy struct {
	// MaxSizeMB is the size in megabytes at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files retained.
	MaxBackups int
	// MaxAgeDays is the number of days a rotated file is retained.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

// NewRotatingFileWriter returns a writer that appends to <directory>/<name> and rotates it according to policy.
// The caller is responsible for closing it.
func NewRotatingFileWriter(directory string, name string, policy RotationPolicy) (io.WriteCloser, error) {
	if directory == "" {
		return nil, errors.New("log directory must be provided")
	}
	if name == "" {
		return nil, errors.New("log file name must be provided")
	}
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, errors.WithStack(err)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(directory, name),
		MaxSize:    policy.MaxSizeMB,
		MaxBackups: policy.MaxBackups,
		MaxAge:     policy.MaxAgeDays,
		Compress:   policy.Compress,
	}, nil
}
