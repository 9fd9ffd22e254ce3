package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// Init sets up the global logger. Pass development=true for console-friendly
// output during local play.
func Init(development bool) {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
