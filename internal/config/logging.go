package config

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

type Logging struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func NewLogging() (*Logging, error) {
	cfg := &Logging{File: os.Getenv("LOG_FILE")}

	var err error
	if cfg.MaxSizeMB, err = lookupInt("LOG_MAX_SIZE_MB", 50); err != nil {
		return nil, err
	}
	if cfg.MaxBackups, err = lookupInt("LOG_MAX_BACKUPS", 3); err != nil {
		return nil, err
	}
	if cfg.MaxAgeDays, err = lookupInt("LOG_MAX_AGE_DAYS", 28); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds the process logger: colored text at debug level in
// development, JSON at info level otherwise. A rotating JSON file hook is
// attached when a log file is configured.
func NewLogger(out io.Writer, cfg *Logging) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	if Development() {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg == nil || cfg.File == "" {
		return log, nil
	}

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Level:      log.GetLevel(),
		Formatter:  &logrus.JSONFormatter{TimestampFormat: time.RFC3339},
	})
	if err != nil {
		return nil, err
	}
	log.AddHook(hook)
	return log, nil
}
