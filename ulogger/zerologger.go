package ulogger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

type ZLoggerWrapper struct {
	zerolog.Logger
	service string
	w       io.Writer
	pretty  bool
}

func NewZeroLogger(service string, options ...Option) *ZLoggerWrapper {
	if service == "" {
		service = "frozentxo"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	var z *ZLoggerWrapper
	if opts.pretty {
		z = prettyZeroLogger(opts.writer, service)
	} else {
		z = &ZLoggerWrapper{
			zerolog.New(opts.writer).With().
				CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount+1).
				Timestamp().
				Str("service", service).
				Logger(),
			service,
			opts.writer,
			false,
		}
	}

	z.SetLogLevel(opts.logLevel)

	return z
}

func prettyZeroLogger(writer io.Writer, service string) *ZLoggerWrapper {
	isTerminal := false
	if f, ok := writer.(*os.File); ok {
		isTerminal = term.IsTerminal(int(f.Fd()))
	}

	output := zerolog.ConsoleWriter{
		Out:        writer,
		NoColor:    !isTerminal,
		TimeFormat: time.RFC3339,
	}

	output.FormatTimestamp = func(i interface{}) string {
		s, _ := i.(string)
		parse, _ := time.Parse(time.RFC3339, s)

		return parse.Format("15:04:05")
	}

	output.FormatLevel = func(i interface{}) string {
		l := strings.ToUpper(fmt.Sprintf("%-6s", i))

		switch i {
		case "debug":
			l = colorize(l, colorBlue, !isTerminal)
		case "info":
			l = colorize(l, colorGreen, !isTerminal)
		case "warn":
			l = colorize(l, colorYellow, !isTerminal)
		case "error", "fatal", "panic":
			l = colorize(l, colorRed, !isTerminal)
		default:
			l = colorize(l, colorWhite, !isTerminal)
		}

		return fmt.Sprintf("| %s|", l)
	}

	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %-9s| %s", service, i)
	}

	output.FormatCaller = func(i interface{}) string {
		c, _ := i.(string)
		if len(c) == 0 {
			return c
		}

		// keep the last two path elements, e.g. frozentxo/registry.go:123
		dir, file := filepath.Split(c)
		c = filepath.Join(filepath.Base(dir), file)

		return colorize(fmt.Sprintf("%-32s", c), colorBold, !isTerminal)
	}

	return &ZLoggerWrapper{
		zerolog.New(output).With().
			CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1).
			Timestamp().
			Logger(),
		service,
		writer,
		true,
	}
}

func (z *ZLoggerWrapper) New(service string, options ...Option) Logger {
	o := []Option{
		WithWriter(z.w),
		WithLevel(z.Logger.GetLevel().String()),
		WithPretty(z.pretty),
	}

	return NewZeroLogger(service, append(o, options...)...)
}

func (z *ZLoggerWrapper) Duplicate(options ...Option) Logger {
	opts := &Options{
		writer:   z.w,
		logLevel: z.Logger.GetLevel().String(),
		pretty:   z.pretty,
	}

	for _, o := range options {
		o(opts)
	}

	newLogger := &ZLoggerWrapper{z.Logger, z.service, z.w, z.pretty}
	newLogger.SetLogLevel(opts.logLevel)

	return newLogger
}

func (z *ZLoggerWrapper) SetLogLevel(logLevel string) {
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		z.Logger = z.Logger.Level(zerolog.DebugLevel)
	case "INFO":
		z.Logger = z.Logger.Level(zerolog.InfoLevel)
	case "WARN":
		z.Logger = z.Logger.Level(zerolog.WarnLevel)
	case "ERROR":
		z.Logger = z.Logger.Level(zerolog.ErrorLevel)
	case "FATAL":
		z.Logger = z.Logger.Level(zerolog.FatalLevel)
	case "PANIC":
		z.Logger = z.Logger.Level(zerolog.PanicLevel)
	default:
		z.Logger = z.Logger.Level(zerolog.InfoLevel)
	}
}

func (z *ZLoggerWrapper) LogLevel() int {
	switch z.Logger.GetLevel() {
	case zerolog.DebugLevel:
		return LevelDebug
	case zerolog.InfoLevel:
		return LevelInfo
	case zerolog.WarnLevel:
		return LevelWarn
	case zerolog.ErrorLevel:
		return LevelError
	case zerolog.FatalLevel:
		return LevelFatal
	default:
		return LevelInfo
	}
}

func (z *ZLoggerWrapper) Debugf(format string, args ...interface{}) {
	z.Logger.Debug().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Infof(format string, args ...interface{}) {
	z.Logger.Info().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Warnf(format string, args ...interface{}) {
	z.Logger.Warn().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Errorf(format string, args ...interface{}) {
	z.Logger.Error().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Fatalf(format string, args ...interface{}) {
	z.Logger.Fatal().Msgf(format, args...)
}

// colorize returns the string s wrapped in ANSI code c, unless disabled is true or c is 0.
func colorize(s interface{}, c int, disabled bool) string {
	e := os.Getenv("NO_COLOR")
	if e != "" || c == 0 {
		disabled = true
	}

	if disabled {
		return fmt.Sprintf("%s", s)
	}

	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
