package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

// NewLogger builds the process logger from the log settings.
func NewLogger(c Log) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", graph.ErrConfiguration, err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	switch c.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", graph.ErrConfiguration, c.Format)
	}
	return logger, nil
}
