package ocr

// Package ocr defines the engine contract and input/result model shared by
// every text recognition provider in the toolkit. An Engine turns one scanned
// document into recognized text; the concrete providers live in subpackages
// (tesseract for the local native library, ocrspace for the hosted API) and
// register themselves or are constructed explicitly. Helpers here build
// inputs from files or raw bytes and fan file sets out to an engine.
