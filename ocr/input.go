package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// InputOption mutates an OCR input under construction.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithRegion sets the recognition region on the OCR input.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// WithTesseractPSM sets the page segmentation mode (PSM) variable for Tesseract.
// See https://tesseract-ocr.github.io/tessdoc/ImproveQuality.html#page-segmentation-method for values.
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata["tessedit_pageseg_mode"] = strconv.Itoa(mode)
	}
}

// WithTesseractWhitelist restricts recognition to the provided characters.
func WithTesseractWhitelist(chars string) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata["tessedit_char_whitelist"] = chars
	}
}

// FormatFromPath infers the image format from a file extension. Unknown
// extensions yield an empty format, which engines treat as auto-detect.
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return ImageFormatPNG
	case ".jpg", ".jpeg":
		return ImageFormatJPEG
	case ".gif":
		return ImageFormatGIF
	case ".bmp":
		return ImageFormatBMP
	case ".tif", ".tiff":
		return ImageFormatTIFF
	case ".pdf":
		return ImageFormatPDF
	default:
		return ""
	}
}

// InputFromBytes builds an OCR input from an in-memory payload.
func InputFromBytes(id string, data []byte, format ImageFormat, opts ...InputOption) Input {
	in := Input{
		ID:     id,
		Image:  data,
		Format: format,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// InputFromFile reads a document from disk and builds an OCR input. The ID
// defaults to the file's base name and the format is inferred from the
// extension.
func InputFromFile(path string, opts ...InputOption) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read input file: %w", err)
	}
	return InputFromBytes(filepath.Base(path), data, FormatFromPath(path), opts...), nil
}
