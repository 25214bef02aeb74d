package ulogger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bsv-blockchain/frozentxo/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroLoggerJSON(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("frozentxo", ulogger.WithWriter(&buf), ulogger.WithLoggerType("json"), ulogger.WithLevel("DEBUG"))
	assert.Equal(t, ulogger.LevelDebug, logger.LogLevel())

	logger.Infof("frozen %d txos", 3)

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "frozen 3 txos", entry["message"])
	assert.Equal(t, "frozentxo", entry["service"])
}

func TestZeroLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("frozentxo", ulogger.WithWriter(&buf), ulogger.WithPretty(false), ulogger.WithLevel("WARN"))
	assert.Equal(t, ulogger.LevelWarn, logger.LogLevel())

	logger.Debugf("hidden")
	logger.Infof("hidden")
	assert.Empty(t, buf.String())

	logger.Warnf("shown")
	assert.Contains(t, buf.String(), "shown")

	logger.SetLogLevel("ERROR")
	assert.Equal(t, ulogger.LevelError, logger.LogLevel())

	dup := logger.Duplicate(ulogger.WithLevel("DEBUG"))
	assert.Equal(t, ulogger.LevelDebug, dup.LogLevel())
	assert.Equal(t, ulogger.LevelError, logger.LogLevel())
}

func TestZeroLoggerChild(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("parent", ulogger.WithWriter(&buf), ulogger.WithPretty(false))
	child := logger.New("check")

	child.Infof("rejected")
	assert.Contains(t, buf.String(), `"service":"check"`)
}

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("registry", ulogger.WithWriter(&buf))
	logger.Infof("hello %s", "world")

	out := buf.String()
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "registry")
	assert.Contains(t, out, "INFO")
}

func TestTestLoggers(t *testing.T) {
	var l ulogger.Logger = ulogger.TestLogger{}
	l.Infof("nothing")
	assert.Equal(t, l, l.New("x"))

	el := ulogger.NewErrorTestLogger(t)
	el.Errorf("logged to test output %d", 1)
	el.Shutdown()
	el.Errorf("dropped")
}
