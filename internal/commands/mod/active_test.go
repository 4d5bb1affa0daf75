package mod

import (
	"strings"
	"testing"
)

func TestFormatActiveLine(t *testing.T) {
	line := formatActiveLine("123", 3)

	if want := "> <@123>: 3 active\n"; line != want {
		t.Errorf("formatActiveLine() = %q, want %q", line, want)
	}
	if strings.ContainsRune(line, '—') {
		t.Error("formatActiveLine() should use plain punctuation")
	}
}
