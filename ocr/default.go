package ocr

import (
	"context"
	"fmt"
)

var defaultEngine Engine = noopEngine{}

// DefaultEngine returns the package default OCR engine. Importing the
// tesseract sub-package installs Tesseract; until then the default is a
// no-op that recognizes nothing.
func DefaultEngine() Engine {
	return defaultEngine
}

// SetDefaultEngine replaces the package default OCR engine.
func SetDefaultEngine(engine Engine) {
	defaultEngine = engine
}

// RecognizeFile reads one document from disk and runs it through engine.
func RecognizeFile(ctx context.Context, engine Engine, path string, opts ...InputOption) (Result, error) {
	in, err := InputFromFile(path, opts...)
	if err != nil {
		return Result{}, err
	}
	res, err := engine.Recognize(ctx, in)
	if err != nil {
		return Result{}, fmt.Errorf("recognize %s: %w", in.ID, err)
	}
	return res, nil
}

// RecognizeFiles reads documents from disk and recognizes them all,
// through RecognizeBatch when the engine supports it and one at a time
// otherwise.
func RecognizeFiles(ctx context.Context, engine Engine, paths []string, opts ...InputOption) ([]Result, error) {
	inputs := make([]Input, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in, err := InputFromFile(path, opts...)
		if err != nil {
			return nil, fmt.Errorf("build input for %s: %w", path, err)
		}
		inputs[i] = in
	}
	if b, ok := engine.(BatchEngine); ok {
		return b.RecognizeBatch(ctx, inputs)
	}
	results := make([]Result, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := engine.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		results[i] = res
	}
	return results, nil
}

type noopEngine struct{}

func (noopEngine) Name() string { return "noop" }

func (noopEngine) Recognize(_ context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, nil
}
