// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

package nefmeta

import (
	"encoding/binary"
	"fmt"
)

// imageView is a read-only, bounds-checked view over the whole file image.
// Every byte access in the decoder goes through it; there is no other
// pointer arithmetic over the buffer. Numeric reads are little-endian,
// the only byte order accepted at header validation.
//
// Note that this is not thread safe.
type imageView struct {
	buf []byte

	err error
}

func newImageView(buf []byte) *imageView {
	return &imageView{buf: buf}
}

// slice returns buf[off : off+n], or unwinds with ErrOutOfBounds when the
// range exceeds the image. Offsets are 64-bit so that origin+value sums
// computed from hostile 32-bit entry values cannot wrap back into
// bounds. The returned slice aliases the underlying image; the lens-data
// decryptor relies on that to transform its range in place.
func (v *imageView) slice(off uint64, n uint32) []byte {
	end := off + uint64(n)
	if end > uint64(len(v.buf)) {
		v.stop(fmt.Errorf("%w: range %d+%d exceeds image size %d", ErrOutOfBounds, off, n, len(v.buf)))
	}
	return v.buf[off:end]
}

func (v *imageView) read1(off uint64) uint8 {
	return v.slice(off, 1)[0]
}

func (v *imageView) read2(off uint64) uint16 {
	return binary.LittleEndian.Uint16(v.slice(off, 2))
}

func (v *imageView) read4(off uint64) uint32 {
	return binary.LittleEndian.Uint32(v.slice(off, 4))
}

// stop records the first error and unwinds to Decode's recover.
// This keeps the read paths free of error plumbing.
func (v *imageView) stop(err error) {
	if err != nil && v.err == nil {
		v.err = err
	}
	panic(errStop)
}
