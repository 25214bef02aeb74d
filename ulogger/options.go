package ulogger

import (
	"io"
	"os"
)

type Options struct {
	logLevel   string
	loggerType string
	writer     io.Writer
	pretty     bool
}

type Option func(*Options)

func DefaultOptions() *Options {
	return &Options{
		logLevel:   "INFO",
		loggerType: "zerolog",
		writer:     os.Stdout,
		pretty:     true,
	}
}

func WithLevel(level string) Option {
	return func(o *Options) {
		o.logLevel = level
	}
}

func WithLoggerType(loggerType string) Option {
	return func(o *Options) {
		o.loggerType = loggerType
	}
}

func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.writer = w
	}
}

// WithPretty toggles the human readable console output. JSON is written when false.
func WithPretty(pretty bool) Option {
	return func(o *Options) {
		o.pretty = pretty
	}
}
