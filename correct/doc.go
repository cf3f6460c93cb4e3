package correct

// Package correct implements the multi-stage OCR text-correction pipeline:
// confusion-pattern rewriting, dictionary spell checking, fuzzy vocabulary
// matching, and optional context-based prediction. Stages run in a fixed
// order, each consuming the previous stage's output, and every applied
// change is reported as an auditable correction record. Optional
// capabilities (dictionary, vocabulary, word frequencies, context model)
// are injected at construction; an absent capability silently disables its
// stage without affecting the rest of the pipeline.
