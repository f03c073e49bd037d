package engine

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestTailWriterKeepsLastBytes(t *testing.T) {
	w := newTailWriter(8)
	for _, s := range []string{"abc", "defg", "hij", "k"} {
		if n, err := w.Write([]byte(s)); err != nil || n != len(s) {
			t.Fatalf("Write(%q) = %d, %v", s, n, err)
		}
	}
	if got := w.String(); got != "defghijk" {
		t.Fatalf("String() = %q", got)
	}

	if _, err := w.Write([]byte("0123456789")); err != nil {
		t.Fatal(err)
	}
	if got := w.String(); got != "23456789" {
		t.Fatalf("oversized write: String() = %q", got)
	}
	if cap(w.buf) > 16 {
		t.Fatalf("buffer grew to %d", cap(w.buf))
	}
}

func TestExecRunnerBoundsOutput(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	script := `i=0; while [ $i -lt 2000 ]; do echo "line $i"; echo "err $i" >&2; i=$((i+1)); done; exit 3`

	res, err := execRunner{}.Run(context.Background(), sh, "-c", script)
	if err == nil {
		t.Fatal("expected exit error")
	}
	if res.ExitCode != 3 {
		t.Fatalf("ExitCode = %d", res.ExitCode)
	}
	if len(res.Stdout) > stderrTailBytes || len(res.Stderr) > stderrTailBytes {
		t.Fatalf("output not bounded: stdout=%d stderr=%d", len(res.Stdout), len(res.Stderr))
	}
	if !strings.HasSuffix(res.Stderr, "err 1999\n") || !strings.HasSuffix(res.Stdout, "line 1999\n") {
		t.Fatalf("tail lost: %q", res.Stderr[len(res.Stderr)-20:])
	}
}
