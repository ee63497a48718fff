// Package ocr wraps one or more text-recognition backends behind a uniform
// adapter.
//
// A Backend is an opaque capability: given an image it returns text spans
// with confidences in [0, 100] and bounding boxes. The Adapter invokes every
// registered backend independently and concurrently; no backend is treated
// as authoritative.
//
// # Failure Isolation
//
// A backend that returns an error, panics, or exceeds the per-call timeout
// contributes zero detections. Its failure is logged and never aborts the
// other backends or variants. Timeouts are the only condition retried, and
// at most once, since transient backend latency is the dominant failure
// mode of real recognition services.
//
// # Backends
//
// The Tesseract backend (gosseract/v2) is the production implementation.
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Tests register in-process fakes through the same Backend interface.
//
// # Temporary Files
//
// The Tesseract backend writes each image variant to a temporary PNG file
// for processing; the file is deleted after the call completes.
package ocr
