package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"audiofetch/pkg/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level", cfg: &config.LoggingConfig{Level: "debug"}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "file output", cfg: &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewWithWriter(tt.cfg, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestConsoleOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&config.LoggingConfig{Level: "debug", NoColor: true}, &buf)
	require.NoError(t, err)

	l.WithField("category", "npc").InfoWithFields("Query finished", map[string]interface{}{
		"downloaded": 2,
	})

	out := buf.String()
	assert.Contains(t, out, "Query finished")
	assert.Contains(t, out, "category=npc")
	assert.Contains(t, out, "downloaded=2")
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&config.LoggingConfig{Level: "info", NoColor: true}, &buf)
	require.NoError(t, err)

	_ = l.WithField("query", "wind")
	l.Info("plain")

	assert.NotContains(t, buf.String(), "query=wind")
}

func TestTestLoggerCapturesFields(t *testing.T) {
	tl := NewTestLogger()

	tl.WithField("category", "ambiance").WithError(errors.New("boom")).Error("Download failed")
	tl.Info("done")

	require.Len(t, tl.GetMessages(), 2)
	assert.True(t, tl.HasError())
	assert.True(t, tl.HasMessage("done"))

	failed := tl.GetMessagesByLevel("ERROR")[0]
	assert.Equal(t, "ambiance", failed.Fields["category"])
	assert.Equal(t, "boom", failed.Fields["error"])
}

func TestLogDownloadLevels(t *testing.T) {
	tl := NewTestLogger()

	LogDownload(tl, "npc", "bat_0_screech.ogg", 512, nil)
	LogDownload(tl, "npc", "bat_1_flap.ogg", 0, errors.New("timeout"))

	assert.Len(t, tl.GetMessagesByLevel("INFO"), 1)
	assert.Len(t, tl.GetMessagesByLevel("ERROR"), 1)
}
