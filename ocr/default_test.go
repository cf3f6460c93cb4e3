package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeEngine struct {
	batch     bool
	batchSeen int
	fail      string
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(_ context.Context, in Input) (Result, error) {
	if f.fail != "" && in.ID == f.fail {
		return Result{}, fmt.Errorf("engine broke on %s", in.ID)
	}
	return Result{InputID: in.ID, PlainText: "text from " + in.ID}, nil
}

type fakeBatchEngine struct{ fakeEngine }

func (f *fakeBatchEngine) RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error) {
	f.batchSeen = len(inputs)
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		res, err := f.Recognize(ctx, in)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func writeTempFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestRecognizeFiles(t *testing.T) {
	paths := writeTempFiles(t, "a.png", "b.jpg")

	results, err := RecognizeFiles(context.Background(), &fakeEngine{}, paths)
	if err != nil {
		t.Fatalf("RecognizeFiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].InputID != "a.png" || results[1].InputID != "b.jpg" {
		t.Fatalf("results out of order: %+v", results)
	}
}

func TestRecognizeFilesUsesBatch(t *testing.T) {
	paths := writeTempFiles(t, "a.png", "b.jpg", "c.gif")

	engine := &fakeBatchEngine{}
	results, err := RecognizeFiles(context.Background(), engine, paths)
	if err != nil {
		t.Fatalf("RecognizeFiles: %v", err)
	}
	if engine.batchSeen != 3 {
		t.Fatalf("batch saw %d inputs, want 3", engine.batchSeen)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
}

func TestRecognizeFilesWrapsEngineError(t *testing.T) {
	paths := writeTempFiles(t, "a.png", "b.jpg")

	_, err := RecognizeFiles(context.Background(), &fakeEngine{fail: "b.jpg"}, paths)
	if err == nil || !strings.Contains(err.Error(), "b.jpg") {
		t.Fatalf("error = %v, want wrapped failure naming the input", err)
	}
}

func TestRecognizeFileCancelled(t *testing.T) {
	paths := writeTempFiles(t, "a.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RecognizeFiles(ctx, &fakeEngine{}, paths); err == nil {
		t.Fatal("expected context error")
	}
}

func TestDefaultEngineIsNoop(t *testing.T) {
	if DefaultEngine().Name() != "noop" {
		t.Skipf("default engine replaced to %q by another import", DefaultEngine().Name())
	}
	res, err := DefaultEngine().Recognize(context.Background(), Input{ID: "x"})
	if err != nil {
		t.Fatalf("noop recognize: %v", err)
	}
	if res.InputID != "x" || res.PlainText != "" {
		t.Fatalf("unexpected noop result: %+v", res)
	}
}
