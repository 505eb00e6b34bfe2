package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTripsNestedKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := storage.Save(context.Background(), "handbooks/hb-1.pdf", strings.NewReader("handbook bytes")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := storage.Open(context.Background(), "handbooks/hb-1.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "handbook bytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestSaveRejectsKeyEscapingBasePath(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = storage.Save(context.Background(), "../../etc/passwd", strings.NewReader("nope"))
	if err == nil {
		t.Fatalf("expected error for escaping key")
	}
}

func TestOpenMissingKeyFails(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := storage.Open(context.Background(), "bills/unknown.pdf"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}
