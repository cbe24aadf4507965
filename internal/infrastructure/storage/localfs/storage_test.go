package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestPutAndGetRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	key := "documents/user-1/doc-1/openapi.yaml"
	if err := storage.Put(context.Background(), key, strings.NewReader("openapi: 3.0.0"), "application/yaml"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	rc, err := storage.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(data) != "openapi: 3.0.0" {
		t.Errorf("unexpected blob content %q", data)
	}
}

func TestGetMissingKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := storage.Get(context.Background(), "documents/none/missing.md"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	for _, key := range []string{"../escape.txt", "/etc/passwd", "a/../../b"} {
		if err := storage.Put(context.Background(), key, strings.NewReader("x"), ""); err == nil {
			t.Errorf("expected rejection for key %q", key)
		}
	}
}
