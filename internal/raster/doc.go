// Package raster provides the pixel buffer abstraction shared by all
// preprocessing algorithms, plus loading and caching of scanned map images.
//
// # Pixel Buffer
//
// A Buffer is a row-major grid of 8-bit channel values, either single-channel
// (grayscale) or four-channel (RGBA). Every preprocessing transform operates
// on a Buffer and either mutates it in place or returns a new owned Buffer;
// a transform never holds both a mutable and a read-only alias of the same
// buffer at the same time.
//
// # Coordinate System
//
// Coordinates are 0-based with origin at the top-left corner: X increases
// rightward, Y increases downward.
//
// # Thread Safety
//
// Buffers are not synchronized. Concurrent preprocessing branches must each
// work on their own clone. The ScanCache type is safe for concurrent use.
package raster
