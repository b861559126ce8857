package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"bulwark/internal/deps"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Backup mount", statusError, "not a mountpoint", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Backup mount:", "[ERROR] not a mountpoint")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Backup root", statusOK, "read/write ok", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Dependencies", false)
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %d lines", len(lines))
	}
	if lines[0] != "== Dependencies ==" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("rule does not match header width: %q", lines[1])
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "7-Zip", Available: true, Command: "7z"},
		{Name: "par2", Available: false, Detail: `binary "par2" not found`},
		{Name: "Git", Available: false, Optional: true},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	requireContains(t, lines[0], "[OK] Ready (command: 7z)")
	requireContains(t, lines[1], `[ERROR] binary "par2" not found`)
	requireContains(t, lines[2], "[WARN] not available")
	requireContains(t, lines[3], "par2, Git")
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
