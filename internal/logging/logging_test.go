package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("hidden info")
	l.Warn("shown warning", "path", "/tmp/vault.xml")

	out := buf.String()
	if strings.Contains(out, "hidden info") {
		t.Fatalf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown warning") {
		t.Fatalf("missing warning; got: %s", out)
	}
	if !strings.Contains(out, "/tmp/vault.xml") {
		t.Fatalf("missing key/value; got: %s", out)
	}
}

func TestNew_DefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("default level should drop info, got: %s", buf.String())
	}
}

func TestNew_CaseInsensitive(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, " DEBUG ")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Debug("dbg line")
	if !strings.Contains(buf.String(), "dbg line") {
		t.Fatalf("missing debug output; got: %s", buf.String())
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud"); err == nil {
		t.Fatal("New() expected error for unknown level")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("goes nowhere")
}
