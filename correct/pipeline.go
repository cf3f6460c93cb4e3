package correct

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wudi/ocrkit/dictionary"
	"github.com/wudi/ocrkit/fuzzy"
	"github.com/wudi/ocrkit/observability"
)

const (
	// DefaultFuzzyThreshold is the similarity score a fuzzy match must
	// strictly exceed before it replaces a word.
	DefaultFuzzyThreshold = 85
	// DefaultRarityThreshold is the relative word frequency below which
	// the context stage treats a word as suspect.
	DefaultRarityThreshold = 1e-6
)

// state is the text handed from one stage to the next. orig maps each
// whitespace-delimited token of text back to its index in the original
// input, so records always report positions in the caller's text.
type state struct {
	text string
	orig []int
}

// stage is one correction pass. Implementations must not retain or mutate
// the input state beyond the returned value.
type stage interface {
	method() Method
	run(ctx context.Context, st state) (state, []Record, error)
}

func identityIndexes(n int) []int {
	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}
	return indexes
}

// Pipeline runs the correction stages in a fixed order. The set of active
// stages is decided once in New from the injected collaborators and never
// changes afterwards. A Pipeline is safe for concurrent use.
type Pipeline struct {
	caps   Capabilities
	stages []stage
	log    observability.Logger

	fuzzyThreshold  int
	rarityThreshold float64

	noSpell   bool
	noFuzzy   bool
	noContext bool

	dict  Dictionary
	vocab Vocabulary
	freq  Frequencies
	pred  Predictor
}

// New builds a pipeline from the given options. The pattern stage is always
// active; the spell, fuzzy, and context stages activate only when their
// collaborators are present and they have not been switched off with a
// Without option. The context stage additionally requires the predictor to
// report itself available and word frequencies to be injected.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		log:             observability.NopLogger{},
		fuzzyThreshold:  DefaultFuzzyThreshold,
		rarityThreshold: DefaultRarityThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.caps = Capabilities{
		Pattern:  true,
		Spell:    p.dict != nil && !p.noSpell,
		Fuzzy:    p.vocab != nil && !p.noFuzzy,
		WordFreq: p.freq != nil,
		Context:  p.pred != nil && !p.noContext && p.pred.Available(),
	}

	p.stages = append(p.stages, &patternStage{dict: p.dict})
	if p.caps.Spell {
		p.stages = append(p.stages, &spellStage{dict: p.dict})
	}
	if p.caps.Fuzzy {
		p.stages = append(p.stages, &fuzzyStage{vocab: p.vocab, threshold: p.fuzzyThreshold})
	}
	if p.caps.Context && p.caps.WordFreq {
		p.stages = append(p.stages, &contextStage{freq: p.freq, pred: p.pred, rarity: p.rarityThreshold})
	}
	return p
}

// NewDefault builds a pipeline backed by the embedded word-frequency
// dictionary and corpus vocabulary. It has no context stage; callers that
// run a fill-mask model pass it with WithPredictor through New.
func NewDefault(opts ...Option) *Pipeline {
	defaults := []Option{
		WithDictionary(dictionary.Default()),
		WithVocabulary(fuzzy.Default()),
		WithFrequencies(dictionary.Default()),
	}
	return New(append(defaults, opts...)...)
}

// Capabilities reports which stages this pipeline runs.
func (p *Pipeline) Capabilities() Capabilities {
	return p.caps
}

// Run corrects text through every active stage and reports the applied
// corrections. Empty or whitespace-only input returns ErrEmptyInput. When
// ctx is cancelled mid-run the result of the stages completed so far is
// returned rather than an error, and a stage failure downgrades that stage
// to a pass-through instead of failing the run.
func (p *Pipeline) Run(ctx context.Context, text string) (result *Result, err error) {
	start := time.Now()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("correction run recovered",
				observability.String("panic", fmt.Sprint(r)))
			result = &Result{
				CorrectedText:  text,
				Corrections:    []Record{},
				Confidence:     1.0,
				MethodsUsed:    []string{},
				ProcessingTime: time.Since(start),
			}
			err = nil
		}
	}()

	totalTokens := len(strings.Fields(text))
	st := state{text: text, orig: identityIndexes(totalTokens)}
	records := make([]Record, 0, 8)

	for _, s := range p.stages {
		if ctx.Err() != nil {
			p.log.Warn("correction run cut short",
				observability.String("method", string(s.method())),
				observability.Error("cause", ctx.Err()))
			break
		}
		next, recs, stageErr := p.runStage(ctx, s, st)
		if stageErr != nil {
			p.log.Warn("correction stage skipped",
				observability.String("method", string(s.method())),
				observability.Error("err", stageErr))
			continue
		}
		st = next
		records = append(records, recs...)
	}

	confidence := float64(totalTokens-len(records)) / float64(totalTokens)
	if confidence < 0 {
		confidence = 0
	}

	elapsed := time.Since(start)
	p.log.Debug("correction run finished",
		observability.Int("tokens", totalTokens),
		observability.Int("corrections", len(records)),
		observability.Float64("confidence", confidence),
		observability.Duration("elapsed", elapsed))

	return &Result{
		CorrectedText:  st.text,
		Corrections:    records,
		Confidence:     confidence,
		MethodsUsed:    methodsUsed(records),
		ProcessingTime: elapsed,
	}, nil
}

// runStage executes a single stage, converting a panic inside it into an
// error so one misbehaving stage cannot take down the whole run.
func (p *Pipeline) runStage(ctx context.Context, s stage, st state) (out state, records []Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage %s panicked: %v", s.method(), r)
		}
	}()
	return s.run(ctx, st)
}

// methodsUsed lists the distinct methods of records in first-use order.
func methodsUsed(records []Record) []string {
	seen := make(map[Method]struct{}, 4)
	used := make([]string, 0, 4)
	for _, r := range records {
		if _, ok := seen[r.Method]; ok {
			continue
		}
		seen[r.Method] = struct{}{}
		used = append(used, string(r.Method))
	}
	return used
}
