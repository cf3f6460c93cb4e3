package ocr

import "context"

// Engine is the contract every OCR provider satisfies: one scanned
// document in, one recognition result out. Implementations must be safe
// for concurrent use and must honor ctx cancellation between pages.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// BatchEngine is an optional extension for providers that can amortize
// client setup or remote round-trips across several inputs. Callers fall
// back to repeated Recognize calls when an engine does not implement it.
type BatchEngine interface {
	Engine
	RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error)
}

// ImageFormat is the declared content type of an upload handed to an
// engine. Engines reject formats they cannot decode.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
	ImageFormatGIF  ImageFormat = "image/gif"
	ImageFormatBMP  ImageFormat = "image/bmp"
	ImageFormatTIFF ImageFormat = "image/tiff"
	ImageFormatPDF  ImageFormat = "application/pdf"
)

// Input is a single scanned document submitted for recognition.
type Input struct {
	// ID identifies the upload (typically its file name) and is echoed
	// back on the Result so callers can correlate batches.
	ID string
	// Image holds the raw encoded bytes, in the format named by Format.
	Image []byte
	// Format is the content type of Image.
	Format ImageFormat
	// Languages hints which trained data the provider should load, as
	// provider language codes ("eng", "deu"). Empty means engine default.
	Languages []string
	// DPI is the scan resolution when the caller knows it; zero lets the
	// engine guess. Tesseract uses it for its layout heuristics.
	DPI int
	// Region limits recognition to part of the image, in pixel
	// coordinates. Nil processes the whole image.
	Region *Region
	// Metadata passes provider-specific knobs through untouched, e.g.
	// "tessedit_pageseg_mode" for Tesseract.
	Metadata map[string]string
}

// Result is what an engine recognized in one input.
type Result struct {
	// InputID echoes Input.ID.
	InputID string
	// PlainText is the full recognized text, reading order, ready for
	// the correction pipeline.
	PlainText string
	// Blocks preserves layout and per-word confidence for callers that
	// need more than the flat text. One block per page on multi-page
	// inputs.
	Blocks []TextBlock
	// Language is the dominant detected language, when the provider
	// reports one.
	Language string
}

// TextBlock is a paragraph-level region of recognized text.
type TextBlock struct {
	Text       string
	Bounds     Region
	Lines      []TextLine
	Confidence float64
}

// TextLine is one baseline of words within a block.
type TextLine struct {
	Text       string
	Bounds     Region
	Words      []TextWord
	Confidence float64
}

// TextWord is a single recognized token with its box and confidence.
type TextWord struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// Region is an axis-aligned rectangle in pixel coordinates, origin at
// the top-left of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }
