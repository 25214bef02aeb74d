// Package ulogger provides the logger used throughout the frozen-TXO registry.
package ulogger

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
	colorCyan
	colorWhite

	colorBold     = 1
	colorDarkGray = 90
)

// Log levels as returned by Logger.LogLevel.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

type Logger interface {
	LogLevel() int
	SetLogLevel(level string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	New(service string, options ...Option) Logger
	Duplicate(options ...Option) Logger
}

func New(service string, options ...Option) Logger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	switch opts.loggerType {
	case "json":
		return NewZeroLogger(service, append(options, WithPretty(false))...)
	default:
		return NewZeroLogger(service, options...)
	}
}
