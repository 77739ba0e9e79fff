package services_test

import (
	"errors"
	"testing"

	"civicintel/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := services.Wrap(services.ErrExternalTool, "deepgram", "transcribe", "upload failed", base)

	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient fallback, got %v", err)
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapJoinsDetailParts(t *testing.T) {
	err := services.Wrap(services.ErrConfiguration, "anthropic", "analyze", "api key missing", nil)
	want := "configuration error: anthropic: analyze: api key missing"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
