// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

package nefmeta

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is the base error for structurally invalid images.
// Header, bounds and directory failures all wrap it; use IsInvalidFormat
// (or errors.Is against the specific sentinel) to classify.
var ErrInvalidFormat = errors.New("nefmeta: invalid format")

var (
	// ErrBadHeader signals a bad byte-order marker or TIFF magic.
	// Big-endian images are rejected here and never reach the decoder.
	ErrBadHeader = fmt.Errorf("%w: invalid header", ErrInvalidFormat)

	// ErrOutOfBounds signals a computed offset or length beyond the image.
	ErrOutOfBounds = fmt.Errorf("%w: out of bounds", ErrInvalidFormat)

	// ErrMalformedDirectory signals an entry count that implies truncated data.
	ErrMalformedDirectory = fmt.Errorf("%w: malformed directory", ErrInvalidFormat)

	// ErrInvalidMakernote signals a makernote signature mismatch. This is a
	// degraded condition, not a fatal one: the Nikon fields become absent
	// while the EXIF fields already decoded are kept.
	ErrInvalidMakernote = errors.New("nefmeta: invalid makernote")

	// ErrTypeMismatch signals a resolver invoked against the wrong declared
	// type, which is a format-assumption error rather than bad input.
	ErrTypeMismatch = fmt.Errorf("%w: type mismatch", ErrInvalidFormat)
)

// IsInvalidFormat reports whether err was caused by a structurally
// invalid image.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

// errStop is the sentinel panic value used to unwind a failed decode;
// Decode recovers it and returns the error recorded on the view.
var errStop = errors.New("stop")
