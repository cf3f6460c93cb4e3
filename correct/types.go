package correct

import (
	"context"
	"time"

	"github.com/wudi/ocrkit/langmodel"
)

// Method identifies the correction stage that produced a record.
type Method string

const (
	// MethodPattern marks corrections from the confusion-pattern stage.
	MethodPattern Method = "pattern_matching"
	// MethodSpell marks corrections from the dictionary spell stage.
	MethodSpell Method = "spell_check"
	// MethodFuzzy marks corrections from the fuzzy vocabulary stage.
	MethodFuzzy Method = "fuzzy_matching"
	// MethodContext marks corrections from the context-prediction stage.
	MethodContext Method = "context_prediction"
)

// Record describes a single applied correction. Position refers to the
// whitespace-delimited token index in the original input text, not in the
// intermediate text of the stage that produced the record. Fields that are
// meaningful for only one method are omitted from JSON when unset.
type Record struct {
	Position  int    `json:"position"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Method    Method `json:"method"`

	// Pattern holds the "seen → fix" rule applied by the pattern stage.
	Pattern string `json:"pattern,omitempty"`
	// Suggestions holds up to three ranked dictionary candidates.
	Suggestions []string `json:"suggestions,omitempty"`
	// SimilarityScore holds the fuzzy match score in the 0-100 range.
	SimilarityScore int `json:"similarity_score,omitempty"`
	// Confidence holds the context model's score for the chosen token.
	Confidence float64 `json:"confidence,omitempty"`
	// Alternatives holds up to two runner-up context predictions.
	Alternatives []string `json:"alternatives,omitempty"`
}

// Result is the outcome of one pipeline run. Confidence is a coarse
// whole-run signal derived from the fraction of original tokens that were
// corrected, clamped to the 0.0-1.0 range. MethodsUsed lists the methods
// that produced at least one record, in first-use order.
type Result struct {
	CorrectedText string   `json:"corrected_text"`
	Corrections   []Record `json:"corrections"`
	Confidence    float64  `json:"confidence"`
	MethodsUsed   []string `json:"methods_used"`

	// ProcessingTime is the wall-clock duration of the run. Callers that
	// expose results over the wire reshape it into their own unit.
	ProcessingTime time.Duration `json:"-"`
}

// Capabilities reports which correction stages a pipeline can run, as
// determined once at construction from the injected collaborators.
type Capabilities struct {
	Pattern  bool `json:"pattern_matching"`
	Spell    bool `json:"spell_check"`
	Fuzzy    bool `json:"fuzzy_matching"`
	WordFreq bool `json:"word_frequencies"`
	Context  bool `json:"context_prediction"`
}

// Methods returns the stage methods that will run, in pipeline order.
func (c Capabilities) Methods() []Method {
	methods := []Method{MethodPattern}
	if c.Spell {
		methods = append(methods, MethodSpell)
	}
	if c.Fuzzy {
		methods = append(methods, MethodFuzzy)
	}
	if c.Context && c.WordFreq {
		methods = append(methods, MethodContext)
	}
	return methods
}

// Dictionary supplies known-word checks and ranked spelling candidates.
// *dictionary.Dict satisfies it.
type Dictionary interface {
	Known(word string) bool
	Candidates(word string) []string
}

// Vocabulary supplies best-effort fuzzy matches against a fixed word list.
// *fuzzy.Matcher satisfies it.
type Vocabulary interface {
	BestMatch(word string) (match string, score int, ok bool)
}

// Frequencies reports how common a word is in general language use, as a
// relative frequency in the 0.0-1.0 range. *dictionary.Dict satisfies it.
type Frequencies interface {
	Rel(word string) float64
}

// Predictor proposes replacements for a masked token given its sentence.
// *langmodel.Client satisfies it. Available is consulted once when the
// pipeline is built; an unavailable predictor disables the context stage.
type Predictor interface {
	Available() bool
	PredictMasked(ctx context.Context, tokens []string, maskIndex int) ([]langmodel.Prediction, error)
}
