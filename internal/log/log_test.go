package log_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/mixremap/internal/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   log.LevelTrace,
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, log.ParseLevel(in), in)
	}
}

func TestMultiHandlerAndFilter(t *testing.T) {
	var low, high bytes.Buffer
	h := log.NewMultiHandler(
		log.NewLevelFilter(func(l slog.Level) bool { return l < slog.LevelError }, slog.NewTextHandler(&low, &slog.HandlerOptions{Level: slog.LevelDebug})),
		log.NewLevelFilter(func(l slog.Level) bool { return l >= slog.LevelError }, slog.NewTextHandler(&high, nil)),
	)
	logger := slog.New(h).With("run", 1)
	logger.Debug("Quiet")
	logger.Error("Loud")

	assert.Contains(t, low.String(), "msg=Quiet run=1")
	assert.NotContains(t, low.String(), "Loud")
	assert.Contains(t, high.String(), "msg=Loud run=1")
	assert.NotContains(t, high.String(), "Quiet")
}

func TestSetupLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, closers, err := log.SetupLogger("trace", path)
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Log(t.Context(), log.LevelTrace, "Tiny detail", "entry", "a.class")
	require.NoError(t, closers[0].Close())

	data := readFile(t, path)
	assert.Contains(t, data, "level=TRACE")
	assert.Contains(t, data, "entry=a.class")
}

func TestEntryLogger(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewEntryLogger(&buf)
	l.Log("pkg/A.class", []byte("in"), []byte("output"))
	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "pkg/A.class in: 2 bytes ")
	assert.Contains(t, line, "out: 6 bytes ")

	log.NewEntryLogger(nil).Log("ignored", nil, nil)
}

func TestPhase(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	done := log.Phase(logger, "scan", "entries", 3)
	elapsed := done("mixins", 2)
	assert.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))
	assert.Contains(t, buf.String(), `msg="Starting scan" entries=3`)
	assert.Contains(t, buf.String(), `msg="Finished scan" mixins=2 elapsed=`)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}
