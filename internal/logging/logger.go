// ABOUTME: Logger setup for the rehab CLI, MCP server and HTTP API.
// ABOUTME: Logrus with optional JSON output and lumberjack file rotation.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params configures the logger.
type Params struct {
	// FileName enables a rotating log file. ".log" is appended when missing.
	FileName string
	// Level is one of trace, debug, info, warn, error. Unknown levels mean info.
	Level string
	// JSON switches to the JSON formatter.
	JSON bool
	// Output overrides stderr when no file is set. Stdout is reserved for
	// command output and the MCP stdio transport.
	Output io.Writer
}

// Setup builds a logger from params. The returned closer releases the log
// file, if any.
func Setup(params Params) (*logrus.Logger, io.Closer) {
	log := logrus.New()
	log.SetLevel(GetLevel(params.Level))
	if params.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out := params.Output
	if out == nil {
		out = os.Stderr
	}

	if params.FileName == "" {
		log.SetOutput(out)
		return log, nopCloser{}
	}

	name := params.FileName
	if !strings.HasSuffix(name, ".log") {
		name += ".log"
	}
	rotating := &lumberjack.Logger{
		Filename:   name,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		Compress:   true,
	}
	log.SetOutput(rotating)
	return log, rotating
}

// GetLevel parses a level name.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
