package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wudi/ocrkit/correct"
	"github.com/wudi/ocrkit/history"
	"github.com/wudi/ocrkit/observability"
	"github.com/wudi/ocrkit/ocr"
	"github.com/wudi/ocrkit/report"
)

// Handler returns the fully wired HTTP handler: all API routes behind the
// recovery, CORS, and request-logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/test", s.handleTest)
	mux.HandleFunc("/api/extract-text", s.handleExtractText)
	mux.HandleFunc("/api/correct", s.handleCorrect)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRunByID)
	mux.HandleFunc("/api/custom-word", s.handleCustomWordAdd)
	mux.HandleFunc("/api/custom-word/", s.handleCustomWordRemove)
	return s.withRecovery(withCORS(s.withLogging(mux)))
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// correctionResponse is the wire shape shared by the extraction and
// correction endpoints. ProcessingTime is reported in seconds.
type correctionResponse struct {
	Success        bool             `json:"success"`
	Filename       string           `json:"filename,omitempty"`
	OriginalText   string           `json:"original_text"`
	CorrectedText  string           `json:"corrected_text"`
	Corrections    []correct.Record `json:"corrections"`
	Confidence     float64          `json:"confidence"`
	MethodsUsed    []string         `json:"methods_used"`
	ProcessingTime float64          `json:"processing_time"`
	Statistics     correct.Stats    `json:"statistics"`
	Warnings       []string         `json:"warnings,omitempty"`
}

func newCorrectionResponse(filename, original string, res *correct.Result, warnings []string) correctionResponse {
	return correctionResponse{
		Success:        true,
		Filename:       filename,
		OriginalText:   original,
		CorrectedText:  res.CorrectedText,
		Corrections:    res.Corrections,
		Confidence:     res.Confidence,
		MethodsUsed:    res.MethodsUsed,
		ProcessingTime: res.ProcessingTime.Seconds(),
		Statistics:     correct.Summarize(res),
		Warnings:       warnings,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleIndex serves the service banner on exactly "/" and a JSON 404 for
// every unknown path that falls through the mux.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed for this endpoint")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"message":    "OCR correction server is running",
		"version":    Version,
		"ocr_engine": s.engineName(),
		"ocr_ready":  s.engine != nil,
		"endpoints": map[string]string{
			"test":         "GET /api/test",
			"extract_text": "POST /api/extract-text",
			"correct":      "POST /api/correct",
			"status":       "GET /api/status",
			"runs":         "GET /api/runs",
			"custom_word":  "POST /api/custom-word",
		},
	})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed for this endpoint")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "backend connection working",
		"timestamp": time.Now().Unix(),
	})
}

// handleExtractText accepts a multipart upload in the "file" field, runs
// it through the OCR engine and the correction pipeline, and returns both
// texts with the applied corrections. The stored copy of the upload is
// removed before the response goes out.
func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed for this endpoint")
		return
	}
	if s.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "no OCR engine configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file too large, maximum size is %dMB", s.cfg.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no file selected")
		return
	}
	if !allowedFile(header.Filename, s.cfg.AllowedExtensions) {
		writeError(w, http.StatusBadRequest,
			"invalid file type, allowed: "+strings.Join(s.cfg.AllowedExtensions, ", "))
		return
	}

	path := filepath.Join(s.cfg.TempDir, safeFilename(header.Filename, time.Now()))
	if err := saveUpload(path, file); err != nil {
		s.log.Error("store upload", observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "could not store uploaded file")
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			s.log.Warn("remove temp file",
				observability.String("path", path),
				observability.Error("err", err))
		}
	}()

	warnings, err := imageWarnings(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image file: "+err.Error())
		return
	}

	var inputOpts []ocr.InputOption
	if langs := s.cfg.OCR.Tesseract.Languages; len(langs) > 0 {
		inputOpts = append(inputOpts, ocr.WithLanguages(langs...))
	}
	if dpi := s.cfg.OCR.Tesseract.DPI; dpi > 0 {
		inputOpts = append(inputOpts, ocr.WithDPI(dpi))
	}
	ocrRes, err := ocr.RecognizeFile(r.Context(), s.engine, path, inputOpts...)
	if err != nil {
		s.log.Error("recognition failed",
			observability.String("engine", s.engine.Name()),
			observability.String("file", header.Filename),
			observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "OCR processing failed: "+err.Error())
		return
	}
	rawText := strings.TrimSpace(ocrRes.PlainText)
	if rawText == "" {
		writeError(w, http.StatusBadRequest, "no text found in the image, try a clearer scan")
		return
	}

	res, err := s.pipeline().Run(r.Context(), rawText)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "correction failed: "+err.Error())
		return
	}

	s.record(r.Context(), header.Filename, rawText, res)
	writeJSON(w, http.StatusOK, newCorrectionResponse(header.Filename, rawText, res, warnings))
}

// handleCorrect runs the pipeline over text that was extracted elsewhere.
func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed for this endpoint")
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.pipeline().Run(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, correct.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, "no text provided")
			return
		}
		writeError(w, http.StatusInternalServerError, "correction failed: "+err.Error())
		return
	}
	s.record(r.Context(), "", req.Text, res)
	writeJSON(w, http.StatusOK, newCorrectionResponse("", req.Text, res, nil))
}

type statusResponse struct {
	Status           string               `json:"status"`
	Version          string               `json:"version"`
	Engine           string               `json:"ocr_engine"`
	EngineReady      bool                 `json:"ocr_ready"`
	SupportedFormats []string             `json:"supported_formats"`
	MaxFileSizeMB    int                  `json:"max_file_size_mb"`
	Capabilities     correct.Capabilities `json:"capabilities"`
	Methods          []correct.Method     `json:"correction_methods"`
	CustomWords      bool                 `json:"custom_words_enabled"`
	History          bool                 `json:"history_enabled"`
	UptimeSeconds    float64              `json:"uptime_seconds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed for this endpoint")
		return
	}
	caps := s.pipeline().Capabilities()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:           "running",
		Version:          Version,
		Engine:           s.engineName(),
		EngineReady:      s.engine != nil,
		SupportedFormats: s.cfg.AllowedExtensions,
		MaxFileSizeMB:    s.cfg.MaxUploadMB,
		Capabilities:     caps,
		Methods:          caps.Methods(),
		CustomWords:      s.custom != nil,
		History:          s.hist != nil,
		UptimeSeconds:    time.Since(s.start).Seconds(),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed for this endpoint")
		return
	}
	if s.hist == nil {
		writeError(w, http.StatusNotFound, "run history is not enabled")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.hist.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("history query failed", observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "could not read run history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(runs),
		"runs":    runs,
	})
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed for this endpoint")
		return
	}
	if s.hist == nil {
		writeError(w, http.StatusNotFound, "run history is not enabled")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	run, err := s.hist.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.log.Error("history query failed", observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "could not read run history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"run":     run,
		"diff":    report.Build(run.OriginalText, run.CorrectedText, run.Corrections),
	})
}

func (s *Server) handleCustomWordAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed for this endpoint")
		return
	}
	if s.custom == nil {
		writeError(w, http.StatusServiceUnavailable, "custom dictionary is not configured")
		return
	}
	var req struct {
		Word string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Word) == "" {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}
	word := strings.ToLower(strings.TrimSpace(req.Word))
	if err := s.custom.Add(r.Context(), word); err != nil {
		s.log.Error("custom word add failed",
			observability.String("word", word),
			observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "could not store custom word")
		return
	}
	if err := s.rebuildPipeline(r.Context()); err != nil {
		s.log.Error("pipeline rebuild failed", observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "word stored but pipeline rebuild failed")
		return
	}
	s.log.Info("custom word added", observability.String("word", word))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"word":    word,
	})
}

func (s *Server) handleCustomWordRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed for this endpoint")
		return
	}
	if s.custom == nil {
		writeError(w, http.StatusServiceUnavailable, "custom dictionary is not configured")
		return
	}
	word := strings.ToLower(strings.TrimPrefix(r.URL.Path, "/api/custom-word/"))
	if word == "" {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}
	if err := s.custom.Remove(r.Context(), word); err != nil {
		s.log.Error("custom word remove failed",
			observability.String("word", word),
			observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "could not remove custom word")
		return
	}
	if err := s.rebuildPipeline(r.Context()); err != nil {
		s.log.Error("pipeline rebuild failed", observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "word removed but pipeline rebuild failed")
		return
	}
	s.log.Info("custom word removed", observability.String("word", word))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"word":    word,
	})
}

// record stores a finished run in history when enabled. Failures are
// logged, not surfaced to the client.
func (s *Server) record(ctx context.Context, filename, original string, res *correct.Result) {
	if s.hist == nil {
		return
	}
	if _, err := s.hist.Save(ctx, history.FromResult(filename, original, res)); err != nil {
		s.log.Warn("history save failed", observability.Error("err", err))
	}
}
