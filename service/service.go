// Package service exposes the OCR correction toolkit over HTTP: image
// upload with text extraction, standalone text correction, run history
// queries, and custom dictionary administration. Every response is JSON
// with a success flag, including errors, so browser front ends never have
// to parse a text body.
package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/wudi/ocrkit/config"
	"github.com/wudi/ocrkit/correct"
	"github.com/wudi/ocrkit/dictionary"
	"github.com/wudi/ocrkit/fuzzy"
	"github.com/wudi/ocrkit/history"
	"github.com/wudi/ocrkit/observability"
	"github.com/wudi/ocrkit/ocr"
)

// Version is reported by the info and status endpoints.
const Version = "2.0.0"

// WordStore is the backend for user-managed dictionary words. Additions
// and removals must be visible to Words immediately. *redisdict.Store
// satisfies it.
type WordStore interface {
	Add(ctx context.Context, word string) error
	Remove(ctx context.Context, word string) error
	Words(ctx context.Context) ([]string, error)
}

// Server wires the OCR engine, correction pipeline, and auxiliary stores
// behind the HTTP API. Construct it with New; the zero value is not usable.
type Server struct {
	cfg    *config.Config
	log    observability.Logger
	engine ocr.Engine
	hist   *history.Store
	custom WordStore
	pred   correct.Predictor

	base  *dictionary.Dict
	vocab *fuzzy.Matcher

	// pipe holds the active pipeline. Custom-word changes swap in a fresh
	// one; requests already running keep the snapshot they loaded.
	pipe  atomic.Pointer[correct.Pipeline]
	start time.Time
}

// Option configures a Server under construction.
type Option func(*Server)

// WithEngine sets the OCR engine behind /api/extract-text. Without one the
// endpoint reports the service unavailable.
func WithEngine(e ocr.Engine) Option {
	return func(s *Server) { s.engine = e }
}

// WithPredictor supplies the fill-mask predictor for the context stage.
func WithPredictor(p correct.Predictor) Option {
	return func(s *Server) { s.pred = p }
}

// WithHistory records every correction run into the given store and
// enables the /api/runs endpoints.
func WithHistory(h *history.Store) Option {
	return func(s *Server) { s.hist = h }
}

// WithCustomWords enables the custom dictionary endpoints.
func WithCustomWords(ws WordStore) Option {
	return func(s *Server) { s.custom = ws }
}

// WithLogger sets the server's logger. Nil restores the no-op logger.
func WithLogger(l observability.Logger) Option {
	return func(s *Server) {
		if l == nil {
			s.log = observability.NopLogger{}
			return
		}
		s.log = l
	}
}

// New builds a Server from cfg. It loads the word-frequency dictionary
// (from cfg.Correct.DictionaryPath, or the embedded list), opens the
// history store when cfg.HistoryPath is set and none was injected, creates
// the upload directory, and assembles the initial correction pipeline.
// ctx bounds the initial custom-word fetch.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:   cfg,
		log:   observability.NopLogger{},
		start: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if cfg.Correct.DictionaryPath != "" {
		s.base, err = dictionary.LoadFile(cfg.Correct.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
	} else {
		s.base = dictionary.Default()
	}
	s.vocab = fuzzy.Default()

	if s.hist == nil && cfg.HistoryPath != "" {
		s.hist, err = history.NewStore(cfg.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	var words []string
	if s.custom != nil {
		words, err = s.custom.Words(ctx)
		if err != nil {
			s.log.Warn("custom words unavailable at startup",
				observability.Error("err", err))
			words = nil
		}
	}
	s.pipe.Store(s.buildPipeline(words))
	return s, nil
}

// buildPipeline assembles a pipeline from the base dictionary plus the
// given custom words, honoring the stage toggles in the configuration.
func (s *Server) buildPipeline(customWords []string) *correct.Pipeline {
	dict := s.base
	if len(customWords) > 0 {
		dict = dict.WithWords(customWords)
	}
	opts := []correct.Option{
		correct.WithDictionary(dict),
		correct.WithVocabulary(s.vocab),
		correct.WithFrequencies(dict),
		correct.WithLogger(s.log),
		correct.WithFuzzyThreshold(s.cfg.Correct.FuzzyThreshold),
		correct.WithRarityThreshold(s.cfg.Correct.RarityThreshold),
	}
	if s.pred != nil {
		opts = append(opts, correct.WithPredictor(s.pred))
	}
	if !s.cfg.Correct.EnableSpell {
		opts = append(opts, correct.WithoutSpell())
	}
	if !s.cfg.Correct.EnableFuzzy {
		opts = append(opts, correct.WithoutFuzzy())
	}
	if !s.cfg.Correct.EnableContext {
		opts = append(opts, correct.WithoutContext())
	}
	return correct.New(opts...)
}

// pipeline returns the active pipeline snapshot.
func (s *Server) pipeline() *correct.Pipeline {
	return s.pipe.Load()
}

// rebuildPipeline re-reads the custom word list and atomically swaps in a
// pipeline that includes it.
func (s *Server) rebuildPipeline(ctx context.Context) error {
	var words []string
	if s.custom != nil {
		var err error
		words, err = s.custom.Words(ctx)
		if err != nil {
			return fmt.Errorf("list custom words: %w", err)
		}
	}
	s.pipe.Store(s.buildPipeline(words))
	return nil
}

// Run serves the HTTP API until ctx is cancelled, then shuts down
// gracefully. The temp-file cleanup loop runs alongside for the same
// lifetime.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go s.cleanupLoop(ctx)

	errc := make(chan error, 1)
	go func() { errc <- httpServer.ListenAndServe() }()
	s.log.Info("server listening",
		observability.String("addr", httpServer.Addr),
		observability.String("engine", s.engineName()))

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// Close releases the history store and, when it supports closing, the
// custom word store.
func (s *Server) Close() error {
	var firstErr error
	if s.hist != nil {
		if err := s.hist.Close(); err != nil {
			firstErr = err
		}
	}
	if c, ok := s.custom.(io.Closer); ok {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) engineName() string {
	if s.engine == nil {
		return "none"
	}
	return s.engine.Name()
}
