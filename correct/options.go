package correct

import "github.com/wudi/ocrkit/observability"

// Option configures a Pipeline under construction.
type Option func(*Pipeline)

// WithDictionary enables the pattern stage's word check and the spell
// stage. A nil dictionary leaves the spell stage disabled and makes the
// pattern stage accept nothing.
func WithDictionary(d Dictionary) Option {
	return func(p *Pipeline) { p.dict = d }
}

// WithVocabulary enables the fuzzy matching stage.
func WithVocabulary(v Vocabulary) Option {
	return func(p *Pipeline) { p.vocab = v }
}

// WithFrequencies supplies the word-frequency source the context stage
// uses to spot rare words.
func WithFrequencies(f Frequencies) Option {
	return func(p *Pipeline) { p.freq = f }
}

// WithPredictor enables the context stage, provided the predictor reports
// itself available and frequencies are also configured.
func WithPredictor(pr Predictor) Option {
	return func(p *Pipeline) { p.pred = pr }
}

// WithLogger sets the pipeline's logger. Nil restores the no-op logger.
func WithLogger(l observability.Logger) Option {
	return func(p *Pipeline) {
		if l == nil {
			p.log = observability.NopLogger{}
			return
		}
		p.log = l
	}
}

// WithoutSpell keeps the spell stage off even when a dictionary is
// configured. The pattern stage still uses the dictionary to validate its
// rewrites.
func WithoutSpell() Option {
	return func(p *Pipeline) { p.noSpell = true }
}

// WithoutFuzzy keeps the fuzzy matching stage off even when a vocabulary
// is configured.
func WithoutFuzzy() Option {
	return func(p *Pipeline) { p.noFuzzy = true }
}

// WithoutContext keeps the context stage off even when a predictor is
// configured, and skips the predictor's availability probe.
func WithoutContext() Option {
	return func(p *Pipeline) { p.noContext = true }
}

// WithFuzzyThreshold overrides the similarity score a fuzzy match must
// strictly exceed. Values outside the 0-100 range are ignored.
func WithFuzzyThreshold(score int) Option {
	return func(p *Pipeline) {
		if score < 0 || score > 100 {
			return
		}
		p.fuzzyThreshold = score
	}
}

// WithRarityThreshold overrides the relative frequency below which the
// context stage treats a word as suspect. Non-positive values are ignored.
func WithRarityThreshold(f float64) Option {
	return func(p *Pipeline) {
		if f <= 0 {
			return
		}
		p.rarityThreshold = f
	}
}
