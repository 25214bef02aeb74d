package ulogger

// TestLogger discards everything.
type TestLogger struct{}

func (l TestLogger) LogLevel() int                                { return LevelInfo }
func (l TestLogger) SetLogLevel(level string)                     {}
func (l TestLogger) Debugf(format string, args ...interface{})    {}
func (l TestLogger) Infof(format string, args ...interface{})     {}
func (l TestLogger) Warnf(format string, args ...interface{})     {}
func (l TestLogger) Errorf(format string, args ...interface{})    {}
func (l TestLogger) Fatalf(format string, args ...interface{})    {}
func (l TestLogger) New(service string, options ...Option) Logger { return l }
func (l TestLogger) Duplicate(options ...Option) Logger           { return l }
