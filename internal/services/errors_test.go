package services_test

import (
	"errors"
	"strings"
	"testing"

	"bulwark/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "protect", "par2 create", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"protect", "par2 create", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "archive", "verify", "", errors.New("io"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsFatalClassification(t *testing.T) {
	cfgErr := services.Wrap(services.ErrConfiguration, "runner", "load", "missing dest", nil)
	if !services.IsFatal(cfgErr) {
		t.Fatalf("expected configuration error to be fatal: %v", cfgErr)
	}

	toolErr := services.Wrap(services.ErrExternalTool, "protect", "par2 create", "exit 1", errors.New("exit status 1"))
	if services.IsFatal(toolErr) {
		t.Fatalf("expected tool error to be retryable per archive: %v", toolErr)
	}

	if services.IsFatal(nil) {
		t.Fatal("nil error must not be fatal")
	}
}
