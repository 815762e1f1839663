package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	v := Version{Major: "1", Minor: "2", Patch: "3", Metadata: "rc1", Build: "abcdef"}
	const tgt = "Version: 1.2.3-rc1\nBuild: abcdef"
	if v.String() != tgt {
		t.Fatalf("expected %q, got %q", tgt, v.String())
	}
	if !strings.HasPrefix(AttachVersion.String(), "Version: 0.3.0\n") {
		t.Fatalf("unexpected version %q", AttachVersion.String())
	}
}
