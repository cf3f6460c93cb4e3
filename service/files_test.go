package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAllowedFile(t *testing.T) {
	allowed := []string{"png", "jpg", "jpeg", "gif", "bmp", "tiff", "pdf"}
	tests := []struct {
		name string
		want bool
	}{
		{"scan.png", true},
		{"SCAN.PNG", true},
		{"photo.jpeg", true},
		{"doc.pdf", true},
		{"archive.tar.gz", false},
		{"notes.txt", false},
		{"noext", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := allowedFile(tt.name, allowed); got != tt.want {
			t.Errorf("allowedFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSafeFilename(t *testing.T) {
	now := time.Unix(1700000000, 0)

	got := safeFilename("My Scan (1).PNG", now)
	if !strings.HasPrefix(got, "1700000000_") {
		t.Errorf("missing timestamp prefix: %q", got)
	}
	if !strings.HasSuffix(got, "_MyScan1.png") {
		t.Errorf("name not sanitized: %q", got)
	}
	if strings.ContainsAny(got, " ()") {
		t.Errorf("unsafe characters survive: %q", got)
	}

	got = safeFilename("../../etc/passwd", now)
	if strings.Contains(got, "/") || strings.Contains(got, "..") {
		t.Errorf("path traversal survives: %q", got)
	}

	got = safeFilename("...", now)
	if !strings.Contains(got, "_upload") {
		t.Errorf("empty name fallback missing: %q", got)
	}

	// Two uploads of the same name in the same second must not collide.
	if safeFilename("a.png", now) == safeFilename("a.png", now) {
		t.Error("names collide for identical input")
	}
}

func TestImageWarnings(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("normal image", func(t *testing.T) {
		warnings, err := imageWarnings(write("ok.png", pngBytes(t, 200, 120)))
		if err != nil {
			t.Fatalf("imageWarnings: %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v, want none", warnings)
		}
	})

	t.Run("tiny image", func(t *testing.T) {
		warnings, err := imageWarnings(write("tiny.png", pngBytes(t, 20, 20)))
		if err != nil {
			t.Fatalf("imageWarnings: %v", err)
		}
		if len(warnings) != 1 || !strings.Contains(warnings[0], "low") {
			t.Errorf("warnings = %v", warnings)
		}
	})

	t.Run("not an image", func(t *testing.T) {
		if _, err := imageWarnings(write("fake.png", []byte("plain text"))); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("pdf passthrough", func(t *testing.T) {
		warnings, err := imageWarnings(write("doc.pdf", []byte("%PDF-1.4")))
		if err != nil || warnings != nil {
			t.Errorf("pdf: warnings=%v err=%v, want nil/nil", warnings, err)
		}
	})
}

func TestRemoveOldFiles(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.png")
	newPath := filepath.Join(dir, "new.png")
	for _, p := range []string{oldPath, newPath} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatal(err)
	}

	removed, err := removeOldFiles(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("removeOldFiles: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("stale file should be gone")
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Error("fresh file should remain")
	}
}

func TestRemoveOldFilesMissingDir(t *testing.T) {
	removed, err := removeOldFiles(filepath.Join(t.TempDir(), "absent"), time.Hour)
	if err != nil {
		t.Fatalf("removeOldFiles: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}
