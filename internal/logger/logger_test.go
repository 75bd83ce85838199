package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	lgr := New(WarningLevel, buf)

	lgr.Debug().Println("debug line")
	lgr.Info().Println("info line")
	lgr.Warning().Println("warning line")
	lgr.Error().Println("error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "[WRN] ")
	assert.Contains(t, out, "warning line")
	assert.Contains(t, out, "[ERR] ")
	assert.Contains(t, out, "error line")
}

func TestJSONWriter(t *testing.T) {
	text := &bytes.Buffer{}
	raw := &bytes.Buffer{}
	lgr := New(InfoLevel, text, JSONWriter(raw))

	lgr.Info().Println("Test. hello")
	lgr.Error().Println("Test. failure")

	lines := strings.Split(strings.TrimSpace(raw.String()), "\n")
	require.Len(t, lines, 2)

	var first, second jsonLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "INFO", first.Level)
	assert.Contains(t, first.Message, "Test. hello")
	assert.False(t, strings.HasSuffix(first.Message, "\n"))
	assert.Equal(t, "ERROR", second.Level)
	assert.NotEmpty(t, second.Timestamp)

	// plain writer receives the same lines
	assert.Contains(t, text.String(), "Test. hello")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarningLevel},
		{"Error", ErrorLevel},
		{"", InfoLevel},
		{"bogus", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.want {
			t.Errorf("ParseLevel(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
