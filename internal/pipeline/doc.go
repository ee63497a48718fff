// Package pipeline orchestrates the full extraction run: preprocessing
// fan-out, concurrent recognition, classification, fusion and dictionary
// correction.
//
// # Data Flow
//
// One scan produces N preprocessed variants (tiles x rotations). Each
// variant goes through the recognition adapter; raw detections are
// classified into place names and numbers (rejects dropped), their
// bounding boxes mapped back to source-scan coordinates, then fused into
// at most one fragment per (lowercased text, kind) key and corrected
// against the dictionaries. Correction can re-converge distinct raw
// spellings onto one canonical entry, so fusion runs once more afterwards.
//
// # Concurrency
//
// Variants are dispatched across a bounded worker pool. They share only
// the read-only dictionary and configuration; every variant owns its pixel
// buffer. Workers may finish in any order; output ordering is imposed by the
// fusion stage's stable sort, never by completion order.
//
// Cancelling the context stops dispatch of further variants; an Observer
// channel, if provided, receives progress events as variants complete.
package pipeline
