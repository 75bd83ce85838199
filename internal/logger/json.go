package logger

import (
	"io"
	"strings"
	"time"

	"github.com/SyntropyNet/nwswitch/internal/env"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/natefinch/lumberjack.v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonLine struct {
	Timestamp string `json:"time"`
	Level     string `json:"severity"`
	Message   string `json:"message"`
}

// jsonLogger wraps every log line into a JSON object.
// It must know its log level, thus is instantiated per level in New()
type jsonLogger struct {
	wr    io.Writer
	level string
}

// JSONWriter marks a writer as a JSON log destination. Pass it to New()
// together with plain text writers.
func JSONWriter(w io.Writer) io.Writer {
	return &jsonLogger{wr: w}
}

// RotatingFile returns a size rotated log file writer
func RotatingFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

func (l *jsonLogger) Write(b []byte) (n int, err error) {
	msg := jsonLine{
		Timestamp: time.Now().Format(env.FileTimeFormat),
		Level:     l.level,
		Message:   strings.TrimRight(string(b), "\n"),
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}
	raw = append(raw, '\n')

	_, err = l.wr.Write(raw)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
