package correct

import "errors"

// ErrEmptyInput is returned by Run when the input text is empty or
// contains only whitespace.
var ErrEmptyInput = errors.New("correct: empty input text")
