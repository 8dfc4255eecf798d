package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"ERROR", ERROR},
		{"", DEBUG},
	}
	for _, c := range cases {
		got, err := ParseLogLevel(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, c.in)
	}
	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestLoggerFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "navmesh.log")
	require.NoError(t, InitLogger(&Config{
		AppName:      "logger_test",
		Level:        "INFO",
		EnableFile:   true,
		FilePath:     name,
		DisableColor: true,
	}))
	Debug("hidden %d", 1)
	Warn("logger test %d", 2)
	CloseLogger()

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logger test 2")
	assert.NotContains(t, string(data), "hidden")
}

func TestLoggerDefaultsToNop(t *testing.T) {
	CloseLogger()
	Info("nothing %v", "here")
	Error("nothing %v", "here")
}
