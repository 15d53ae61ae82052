package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{"debug": DEBUG, " ERROR ": ERROR, "INFO": INFO, "": INFO, "verbose": INFO}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %d, want %d", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, ERROR)
	l.Printf("cache hit %d", 1)
	l.Debugf("stale response %d", 2)
	l.Errorf("upstream failed: %s", "timeout")

	out := buf.String()
	if strings.Contains(out, "cache hit") || strings.Contains(out, "stale response") {
		t.Errorf("info/debug lines should be filtered at ERROR:\n%s", out)
	}
	if !strings.Contains(out, "upstream failed: timeout") {
		t.Errorf("error line missing:\n%s", out)
	}

	buf.Reset()
	l = New(&buf, DEBUG)
	l.Debugf("generation=%d", 7)
	l.Println("server", "started")
	if !strings.Contains(buf.String(), "generation=7") || !strings.Contains(buf.String(), "server started") {
		t.Errorf("debug logger output:\n%s", buf.String())
	}
}
