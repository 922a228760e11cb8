package app

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// logLevels are the accepted values of Config.LogLevel.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func levelNames() string {
	names := make([]string, 0, len(logLevels))
	for name := range logLevels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return logLevels[names[i]] < logLevels[names[j]] })
	return strings.Join(names, ", ")
}

// newLogger creates an isolated slog.Logger writing to outW. The level must
// be one of logLevels; NewConfig rejects anything else, so an unknown level
// here is a programming error.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, ok := logLevels[levelStr]
	if !ok {
		panic(fmt.Sprintf("unknown log level %q, want one of %s", levelStr, levelNames()))
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}
