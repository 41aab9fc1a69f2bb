package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	defer SetLevel(GetLevel())

	logger := New("test")

	SetLevel(Notice)
	logger.Debug("hidden-debug")
	logger.Info("hidden-info")
	logger.Notice("shown-notice")
	logger.Warningf("shown-%s", "warning")

	out := buf.String()
	for _, hidden := range []string{"hidden-debug", "hidden-info"} {
		if strings.Contains(out, hidden) {
			t.Fatalf("expected %q to be filtered; got output:\n%s", hidden, out)
		}
	}
	for _, shown := range []string{"shown-notice", "shown-warning", "[test]"} {
		if !strings.Contains(out, shown) {
			t.Fatalf("expected output to contain %q; got:\n%s", shown, out)
		}
	}

	buf.Reset()
	SetLevel(Debug)
	logger.Debug("now-visible")
	if !strings.Contains(buf.String(), "now-visible") {
		t.Fatalf("expected debug message after raising verbosity; got:\n%s", buf.String())
	}
}

func TestModuleLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	SetLevel(Notice)
	SetModuleLevel("chatty", Debug)

	New("chatty").Debug("chatty-debug")
	New("quiet").Debug("quiet-debug")

	out := buf.String()
	if !strings.Contains(out, "chatty-debug") {
		t.Fatalf("expected module override to enable debug output; got:\n%s", out)
	}
	if strings.Contains(out, "quiet-debug") {
		t.Fatalf("expected other modules to keep the global level; got:\n%s", out)
	}
}

func TestParseLevel(t *testing.T) {
	type spec struct {
		in     string
		exp    Level
		expErr bool
	}

	specs := []spec{
		{"debug", Debug, false},
		{"INFO", Info, false},
		{"Warning", Warning, false},
		{"error", Error, false},
		{"verbose", Notice, true},
	}

	for index, s := range specs {
		level, err := ParseLevel(s.in)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error for %q", index, s.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if level != s.exp {
			t.Fatalf("[spec %d] expected level %s; got %s", index, s.exp, level)
		}
	}
}
