package common

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a development logger for the "development" environment and a
// production JSON logger for anything else.
func NewLogger(environment string) *zap.SugaredLogger {
	var baseLogger *zap.Logger
	var err error
	if strings.EqualFold(environment, "development") {
		baseLogger, err = zap.NewDevelopment()
	} else {
		baseLogger, err = zap.NewProduction()
	}
	if err != nil {
		baseLogger = zap.NewNop()
	}
	return baseLogger.Sugar()
}

// NewWriterLogger writes JSON entries at or above level to w.
func NewWriterLogger(w io.Writer, level zapcore.Level) *zap.SugaredLogger {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}
