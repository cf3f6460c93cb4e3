package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/wudi/ocrkit/ocr"
)

func init() {
	ocr.SetDefaultEngine(NewEngine())
}

// Engine runs recognition through a local Tesseract installation via the
// gosseract client. It satisfies ocr.Engine and ocr.BatchEngine. Every
// call gets a fresh client, so a failed scan cannot poison the next one.
type Engine struct {
	newClient func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine() *Engine {
	return &Engine{newClient: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Available reports whether the tesseract binary is reachable on PATH.
func Available() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// Recognize performs OCR on a single input. PDF uploads are rejected up
// front; Tesseract only decodes raster images.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if in.Format == ocr.ImageFormatPDF {
		return ocr.Result{}, fmt.Errorf("tesseract engine cannot process PDF input %s", in.ID)
	}
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c := e.newClient()
	defer c.Close()
	if err := configure(c, in); err != nil {
		return ocr.Result{}, err
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	plain := strings.TrimSpace(text)

	res := ocr.Result{
		InputID:   in.ID,
		PlainText: plain,
		Blocks:    []ocr.TextBlock{buildBlock(c, plain)},
	}
	if len(in.Languages) > 0 {
		res.Language = in.Languages[0]
	}
	return res, nil
}

// RecognizeBatch runs the inputs sequentially and stops at the first
// failure or context cancellation.
func (e *Engine) RecognizeBatch(ctx context.Context, inputs []ocr.Input) ([]ocr.Result, error) {
	out := make([]ocr.Result, len(inputs))
	for i, in := range inputs {
		res, err := e.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		out[i] = res
	}
	return out, nil
}

// configure loads the input image into the client and applies language,
// DPI, and passthrough variable hints.
func configure(c *gosseract.Client, in ocr.Input) error {
	img := in.Image
	if in.Region != nil && !in.Region.IsEmpty() {
		cropped, err := cropToRegion(in.Image, *in.Region)
		if err != nil {
			return err
		}
		img = cropped
	}
	if err := c.SetImageFromBytes(img); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return fmt.Errorf("set languages: %w", err)
		}
	}
	vars := make(map[string]string, len(in.Metadata)+1)
	if in.DPI > 0 {
		vars["user_defined_dpi"] = strconv.Itoa(in.DPI)
	}
	for k, v := range in.Metadata {
		vars[k] = v
	}
	for k, v := range vars {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	return nil
}

// buildBlock assembles the structured layout from Tesseract's word boxes.
// Tesseract reports confidence on a 0-100 scale; Result uses 0-1.
func buildBlock(c *gosseract.Client, plain string) ocr.TextBlock {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return ocr.TextBlock{Text: plain, Lines: []ocr.TextLine{{Text: plain}}}
	}
	words := make([]ocr.TextWord, len(boxes))
	var total float64
	for i, b := range boxes {
		words[i] = ocr.TextWord{
			Text: b.Word,
			Bounds: ocr.Region{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
			Confidence: b.Confidence / 100,
		}
		total += words[i].Confidence
	}
	conf := total / float64(len(words))
	bounds := union(words)
	return ocr.TextBlock{
		Text:       plain,
		Bounds:     bounds,
		Lines:      []ocr.TextLine{{Text: plain, Bounds: bounds, Words: words, Confidence: conf}},
		Confidence: conf,
	}
}

// union returns the tightest region covering every word box. words must
// be non-empty.
func union(words []ocr.TextWord) ocr.Region {
	first := words[0].Bounds
	left, top := first.X, first.Y
	right, bottom := first.X+first.Width, first.Y+first.Height
	for _, w := range words[1:] {
		left = math.Min(left, w.Bounds.X)
		top = math.Min(top, w.Bounds.Y)
		right = math.Max(right, w.Bounds.X+w.Bounds.Width)
		bottom = math.Max(bottom, w.Bounds.Y+w.Bounds.Height)
	}
	return ocr.Region{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// cropToRegion re-encodes the image restricted to r. The intermediate is
// PNG regardless of the source format, which Tesseract accepts.
func cropToRegion(data []byte, r ocr.Region) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode for region: %w", err)
	}
	rect := image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region outside image bounds")
	}
	si, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("cannot crop %T image", img)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, si.SubImage(rect)); err != nil {
		return nil, fmt.Errorf("encode region: %w", err)
	}
	return buf.Bytes(), nil
}
