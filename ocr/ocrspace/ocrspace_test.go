package ocrspace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wudi/ocrkit/ocr"
)

func testEngine(t *testing.T, handler http.HandlerFunc) *Engine {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEngine("test-key",
		WithEndpoint(srv.URL),
		WithRateInterval(time.Millisecond),
	)
}

func TestRecognize(t *testing.T) {
	e := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("apikey"); got != "test-key" {
			t.Errorf("apikey = %q", got)
		}
		if got := r.FormValue("language"); got != "eng" {
			t.Errorf("language = %q", got)
		}
		if got := r.FormValue("OCREngine"); got != "2" {
			t.Errorf("OCREngine = %q", got)
		}
		if got := r.FormValue("scale"); got != "true" {
			t.Errorf("scale = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		file.Close()
		if header.Filename != "scan.png" {
			t.Errorf("filename = %q, want scan.png", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ParsedResults": []map[string]any{
				{"ParsedText": "Dear freind,\r\n", "FileParseExitCode": 1},
			},
			"OCRExitCode":           1,
			"IsErroredOnProcessing": false,
		})
	})

	res, err := e.Recognize(context.Background(), ocr.Input{
		ID:     "scan.png",
		Image:  []byte("fake-png-bytes"),
		Format: ocr.ImageFormatPNG,
	})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.PlainText != "Dear freind," {
		t.Errorf("text = %q", res.PlainText)
	}
	if res.InputID != "scan.png" {
		t.Errorf("input id = %q", res.InputID)
	}
	if len(res.Blocks) != 1 {
		t.Errorf("blocks = %d, want 1", len(res.Blocks))
	}
	if res.Language != "eng" {
		t.Errorf("language = %q", res.Language)
	}
}

func TestRecognizeMultiPage(t *testing.T) {
	e := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ParsedResults": []map[string]any{
				{"ParsedText": "page one"},
				{"ParsedText": "page two"},
			},
			"IsErroredOnProcessing": false,
		})
	})

	res, err := e.Recognize(context.Background(), ocr.Input{ID: "doc.pdf", Format: ocr.ImageFormatPDF})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.PlainText != "page one\npage two" {
		t.Errorf("text = %q", res.PlainText)
	}
	if len(res.Blocks) != 2 {
		t.Errorf("blocks = %d, want 2", len(res.Blocks))
	}
}

func TestRecognizeProcessingError(t *testing.T) {
	t.Run("array error message", func(t *testing.T) {
		e := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"IsErroredOnProcessing":true,"ErrorMessage":["bad image","unsupported"]}`))
		})
		_, err := e.Recognize(context.Background(), ocr.Input{ID: "x.png"})
		if err == nil || !strings.Contains(err.Error(), "bad image") {
			t.Fatalf("error = %v, want processing failure with message", err)
		}
	})

	t.Run("string error message", func(t *testing.T) {
		e := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"IsErroredOnProcessing":true,"ErrorMessage":"quota exceeded"}`))
		})
		_, err := e.Recognize(context.Background(), ocr.Input{ID: "x.png"})
		if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
			t.Fatalf("error = %v, want processing failure with message", err)
		}
	})
}

func TestRecognizeRetriesOn429(t *testing.T) {
	var calls int32
	e := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"ok"}],"IsErroredOnProcessing":false}`))
	})

	res, err := e.Recognize(context.Background(), ocr.Input{ID: "x.png"})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.PlainText != "ok" {
		t.Errorf("text = %q", res.PlainText)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestRecognizeClientError(t *testing.T) {
	var calls int32
	e := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := e.Recognize(context.Background(), ocr.Input{ID: "x.png"})
	if err == nil {
		t.Fatal("expected error for 403")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d calls, want 1 (4xx must not retry)", got)
	}
}

func TestAvailable(t *testing.T) {
	if NewEngine("").Available() {
		t.Error("engine without key should not be available")
	}
	if !NewEngine("key").Available() {
		t.Error("engine with key should be available")
	}
	if _, err := NewEngine("").Recognize(context.Background(), ocr.Input{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestUploadNameExtensions(t *testing.T) {
	tests := []struct {
		in   ocr.Input
		want string
	}{
		{ocr.Input{ID: "scan.jpeg"}, "scan.jpeg"},
		{ocr.Input{ID: "scan", Format: ocr.ImageFormatJPEG}, "scan.jpg"},
		{ocr.Input{ID: "scan", Format: ocr.ImageFormatPDF}, "scan.pdf"},
		{ocr.Input{Format: ocr.ImageFormatTIFF}, "document.tif"},
		{ocr.Input{}, "document.png"},
	}
	for _, tt := range tests {
		if got := uploadName(tt.in); got != tt.want {
			t.Errorf("uploadName(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
