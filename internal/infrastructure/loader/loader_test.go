package loader

import (
	"context"
	"testing"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

func TestRegistryRejectsUnknownType(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Load(context.Background(), domain.DocumentType("spreadsheet"), []byte("x"), "x.xlsx")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestRegistryDispatchesMarkdown(t *testing.T) {
	registry := NewRegistry()

	sections, err := registry.Load(context.Background(), domain.TypeMarkdown, []byte("# Title\n\nbody"), "doc.md")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(sections) == 0 {
		t.Fatal("expected at least one section")
	}
}
