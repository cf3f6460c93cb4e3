// Package ocrspace implements an ocr.Engine backed by the OCR.space HTTP
// API. Requests are rate limited and retried on transient failures, so the
// engine can sit behind the service's extract endpoint without special
// handling for the free-tier quotas.
package ocrspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wudi/ocrkit/ocr"
)

const defaultEndpoint = "https://api.ocr.space/parse/image"

// Engine calls the OCR.space parse API. It implements ocr.Engine and
// ocr.BatchEngine; batch inputs share the rate limiter.
type Engine struct {
	apiKey     string
	endpoint   string
	language   string
	engineMode int
	client     *http.Client
	limiter    *rate.Limiter
}

// Option configures an Engine under construction.
type Option func(*Engine)

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(url string) Option {
	return func(e *Engine) { e.endpoint = url }
}

// WithLanguage sets the default OCR language code (e.g. "eng", "ger").
func WithLanguage(lang string) Option {
	return func(e *Engine) {
		if lang != "" {
			e.language = lang
		}
	}
}

// WithEngineMode selects the OCR.space engine variant (1 or 2).
func WithEngineMode(mode int) Option {
	return func(e *Engine) {
		if mode > 0 {
			e.engineMode = mode
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		if c != nil {
			e.client = c
		}
	}
}

// WithRateInterval sets the minimum spacing between API requests.
func WithRateInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// NewEngine constructs an OCR.space engine with the given API key.
func NewEngine(apiKey string, opts ...Option) *Engine {
	e := &Engine{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		language:   "eng",
		engineMode: 2,
		client:     &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string { return "ocrspace" }

// Available reports whether an API key is configured.
func (e *Engine) Available() bool {
	return e != nil && e.apiKey != ""
}

// Recognize uploads the input and returns the parsed text, one block per
// page for multi-page documents.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if !e.Available() {
		return ocr.Result{}, fmt.Errorf("ocrspace: no API key configured")
	}
	payload, contentType, err := e.buildForm(in)
	if err != nil {
		return ocr.Result{}, err
	}
	parsed, err := e.doWithRetry(ctx, payload, contentType)
	if err != nil {
		return ocr.Result{}, err
	}
	if parsed.IsErroredOnProcessing {
		return ocr.Result{}, fmt.Errorf("ocrspace: processing failed: %s", parsed.errorText())
	}
	if len(parsed.ParsedResults) == 0 {
		return ocr.Result{}, fmt.Errorf("ocrspace: response contains no parsed results")
	}

	blocks := make([]ocr.TextBlock, 0, len(parsed.ParsedResults))
	texts := make([]string, 0, len(parsed.ParsedResults))
	for _, page := range parsed.ParsedResults {
		text := strings.TrimSpace(page.ParsedText)
		texts = append(texts, text)
		blocks = append(blocks, ocr.TextBlock{Text: text})
	}
	return ocr.Result{
		InputID:   in.ID,
		PlainText: strings.TrimSpace(strings.Join(texts, "\n")),
		Blocks:    blocks,
		Language:  e.languageFor(in),
	}, nil
}

// RecognizeBatch processes inputs sequentially; the shared limiter paces
// the remote calls.
func (e *Engine) RecognizeBatch(ctx context.Context, inputs []ocr.Input) ([]ocr.Result, error) {
	results := make([]ocr.Result, 0, len(inputs))
	for _, in := range inputs {
		res, err := e.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) languageFor(in ocr.Input) string {
	if len(in.Languages) > 0 {
		return in.Languages[0]
	}
	return e.language
}

// buildForm assembles the multipart payload once so retries can replay it.
func (e *Engine) buildForm(in ocr.Input) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"apikey":    e.apiKey,
		"language":  e.languageFor(in),
		"OCREngine": strconv.Itoa(e.engineMode),
		"scale":     "true",
	}
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("ocrspace: write form field %s: %w", key, err)
		}
	}
	part, err := w.CreateFormFile("file", uploadName(in))
	if err != nil {
		return nil, "", fmt.Errorf("ocrspace: create form file: %w", err)
	}
	if _, err := part.Write(in.Image); err != nil {
		return nil, "", fmt.Errorf("ocrspace: write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("ocrspace: close form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// uploadName picks a filename whose extension tells the API the payload
// type, since OCR.space keys content detection off the name.
func uploadName(in ocr.Input) string {
	name := in.ID
	if name == "" {
		name = "document"
	}
	if filepath.Ext(name) != "" {
		return name
	}
	switch in.Format {
	case ocr.ImageFormatJPEG:
		return name + ".jpg"
	case ocr.ImageFormatGIF:
		return name + ".gif"
	case ocr.ImageFormatBMP:
		return name + ".bmp"
	case ocr.ImageFormatTIFF:
		return name + ".tif"
	case ocr.ImageFormatPDF:
		return name + ".pdf"
	default:
		return name + ".png"
	}
}

type parseResponse struct {
	ParsedResults         []parsedResult `json:"ParsedResults"`
	OCRExitCode           int            `json:"OCRExitCode"`
	IsErroredOnProcessing bool           `json:"IsErroredOnProcessing"`
	ErrorMessage          errorMessage   `json:"ErrorMessage"`
	ErrorDetails          string         `json:"ErrorDetails"`
}

type parsedResult struct {
	ParsedText        string `json:"ParsedText"`
	FileParseExitCode int    `json:"FileParseExitCode"`
	ErrorMessage      string `json:"ErrorMessage"`
}

func (r *parseResponse) errorText() string {
	if len(r.ErrorMessage) > 0 {
		return strings.Join(r.ErrorMessage, "; ")
	}
	if r.ErrorDetails != "" {
		return r.ErrorDetails
	}
	return fmt.Sprintf("exit code %d", r.OCRExitCode)
}

// errorMessage absorbs the API's habit of returning either a string or an
// array of strings in the ErrorMessage field.
type errorMessage []string

func (m *errorMessage) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*m = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one != "" {
		*m = []string{one}
	}
	return nil
}

// doWithRetry posts the form with retry on HTTP 429 and 5xx, honoring
// Retry-After on 429. The limiter is consulted before every attempt.
func (e *Engine) doWithRetry(ctx context.Context, payload []byte, contentType string) (*parseResponse, error) {
	const maxRetries = 3
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("ocrspace: rate limiter wait failed: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("ocrspace: create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := e.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("ocrspace: request cancelled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("ocrspace: request failed: %w", err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("ocrspace: read response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			var parsed parseResponse
			if err := json.Unmarshal(body, &parsed); err != nil {
				return nil, fmt.Errorf("ocrspace: parse response: %w", err)
			}
			return &parsed, nil
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable {
			return nil, fmt.Errorf("ocrspace: API returned status %d: %s", resp.StatusCode, string(body))
		}
		lastErr = fmt.Errorf("ocrspace: API returned status %d: %s", resp.StatusCode, string(body))

		if attempt < maxRetries {
			delay := backoffs[attempt]
			if resp.StatusCode == http.StatusTooManyRequests {
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
						delay = time.Duration(seconds) * time.Second
						if delay > 30*time.Second {
							delay = 30 * time.Second
						}
					}
				}
			}
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("ocrspace: request cancelled during retry: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("ocrspace: all retries exhausted: %w", lastErr)
}
