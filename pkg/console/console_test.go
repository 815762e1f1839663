package console

import (
	"bytes"
	"testing"
)

func TestPrintln(t *testing.T) {
	testCases := []struct {
		color bool
		tgt   string
	}{
		{false, " **IMPORTANT** run the IDE first\n"},
		{true, "\x1b[33;1m **IMPORTANT** \x1b[0mrun the IDE first\n"},
	}
	for _, tc := range testCases {
		var buf bytes.Buffer
		c := NewWriter(&buf, tc.color)
		c.Println(S(Attention, " **IMPORTANT** "), S(Normal, "run the IDE first"))
		if buf.String() != tc.tgt {
			t.Errorf("color=%v: expected %q, got %q", tc.color, tc.tgt, buf.String())
		}
	}
}

func TestStyles(t *testing.T) {
	var buf bytes.Buffer
	c := NewWriter(&buf, true)
	c.Println(S(Warning, "w %s:%d", "127.0.0.1", 9000), S(Success, "s"))
	const tgt = "\x1b[31;1mw 127.0.0.1:9000\x1b[0m\x1b[32;1ms\x1b[0m\n"
	if buf.String() != tgt {
		t.Fatalf("expected %q, got %q", tgt, buf.String())
	}
}
