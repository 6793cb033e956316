// Package log holds the process-wide logger.
package log

import (
	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
)

const loggerName = "scratchpad"

// Logger is the shared root logger; components derive named children from it.
var Logger logSDK.Logger

func init() {
	var err error
	if Logger, err = logSDK.NewConsoleWithName(loggerName, logSDK.LevelInfo); err != nil {
		logSDK.Shared.Panic("new logger", zap.Error(err))
	}
}

// RedirectToStderr rebuilds Logger so that nothing is written to stdout.
// The stdio transport owns stdout for protocol frames.
func RedirectToStderr() error {
	l, err := logSDK.New(
		logSDK.WithName(loggerName),
		logSDK.WithEncoding(logSDK.EncodingConsole),
		logSDK.WithLevel(logSDK.Level(Logger.Level().String())),
		logSDK.WithOutputPaths([]string{"stderr"}),
		logSDK.WithErrorOutputPaths([]string{"stderr"}),
	)
	if err != nil {
		return errors.Wrap(err, "new stderr logger")
	}

	Logger = l
	return nil
}
