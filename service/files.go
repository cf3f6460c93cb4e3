package service

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/wudi/ocrkit/observability"
)

// Dimension bounds outside of which a scan is flagged as likely to OCR
// poorly.
const (
	minUsefulDimension = 50
	maxUsefulDimension = 10000
)

// allowedFile reports whether filename carries one of the allowed
// extensions. Files without an extension are rejected.
func allowedFile(filename string, allowed []string) bool {
	ext := fileExt(filename)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// fileExt returns the lowercased extension without the leading dot.
func fileExt(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// safeFilename builds a collision-free name for a stored upload: the unix
// timestamp, a random tag, and the client's name stripped down to
// alphanumerics, dashes, and underscores.
func safeFilename(original string, now time.Time) string {
	ext := fileExt(original)
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "upload"
	}
	tag := uuid.NewString()[:8]
	if ext == "" {
		return fmt.Sprintf("%d_%s_%s", now.Unix(), tag, name)
	}
	return fmt.Sprintf("%d_%s_%s.%s", now.Unix(), tag, name, ext)
}

// saveUpload streams uploaded content to path, removing the partial file
// on failure.
func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}

// imageWarnings sanity-checks a stored upload. Undecodable image files are
// an error; unusual dimensions come back as warnings. PDFs pass through
// untouched since their pages are rasterized by the engine.
func imageWarnings(path string) ([]string, error) {
	if fileExt(path) == "pdf" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var warnings []string
	if cfg.Width < minUsefulDimension || cfg.Height < minUsefulDimension {
		warnings = append(warnings, "image resolution is very low, recognition may be inaccurate")
	}
	if cfg.Width > maxUsefulDimension || cfg.Height > maxUsefulDimension {
		warnings = append(warnings, "image resolution is very high, processing may be slow")
	}
	return warnings, nil
}

// cleanupLoop removes expired upload files on a fixed interval until ctx
// ends. Files older than the interval itself are considered expired.
func (s *Server) cleanupLoop(ctx context.Context) {
	interval := s.cfg.CleanupInterval()
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.cleanupOnce()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupOnce()
		}
	}
}

func (s *Server) cleanupOnce() {
	removed, err := removeOldFiles(s.cfg.TempDir, s.cfg.CleanupInterval())
	if err != nil {
		s.log.Warn("upload cleanup failed", observability.Error("err", err))
		return
	}
	if removed > 0 {
		s.log.Info("expired uploads removed", observability.Int("count", removed))
	}
}

// removeOldFiles deletes regular files in dir older than maxAge and
// reports how many went away. A missing directory is not an error.
func removeOldFiles(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
