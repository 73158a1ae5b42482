package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Setup("debug", "json")
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", zerolog.GlobalLevel())
	}

	Setup("nonsense", "json")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("expected fallback to info, got %s", zerolog.GlobalLevel())
	}
}

func TestWriter_Format(t *testing.T) {
	var buf bytes.Buffer
	if w := writer("json", &buf); w != &buf {
		t.Fatal("json format should write directly")
	}
	if _, ok := writer("console", &buf).(zerolog.ConsoleWriter); !ok {
		t.Fatal("console format should use ConsoleWriter")
	}
}
