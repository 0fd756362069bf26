// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by the CLI and its components.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a logger writing to w (stderr when nil) at the given level.
// Format is "json" or "console".
func New(level, format string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var enc zapcore.Encoder
	switch format {
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(encoderConfig())
	case FormatConsole, "":
		enc = zapcore.NewConsoleEncoder(encoderConfig())
	default:
		return nil, fmt.Errorf("invalid log format %q (expected %s or %s)", format, FormatJSON, FormatConsole)
	}

	if w == nil {
		w = os.Stderr
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
