// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

package nefmeta

import (
	"encoding/binary"
	"fmt"
	"math"
)

// A directory entry is represented in 12 bytes:
//   - 2 bytes for the tag ID
//   - 2 bytes for the data type
//   - 4 bytes for the number of data values of the specified type
//   - 4 bytes for the value itself, if it fits, otherwise for an offset
//     (relative to the directory's origin) to where the data is stored.
const entrySize = 12

// entry is one directory record. The raw field preserves the value field
// as stored on disk; inline values (including the vendor's 4-character
// "undefined" strings) are decoded from it.
type entry struct {
	tag   uint16
	typ   tiffType
	count uint32
	value uint32
	raw   [4]byte
}

// byteLen is the encoded size of the entry's value in bytes.
func (e entry) byteLen() uint32 {
	return tiffTypeSize[e.typ] * e.count
}

// inline reports whether the value field holds the value itself rather
// than an offset. This predicate, not any explicit flag, selects the
// decoding path everywhere an entry is resolved.
func (e entry) inline() bool {
	return e.byteLen() <= 4
}

// readDirectory reads the IFD at origin+rel: a 2-byte entry count
// followed by that many fixed-size records and a 4-byte next-IFD offset.
// Entries are returned in on-disk order; tag semantics are left to the
// caller. Unwinds with ErrMalformedDirectory when the count implies a
// range beyond the image.
func (d *decoder) readDirectory(origin uint64, rel uint32) ([]entry, uint32) {
	off := origin + uint64(rel)
	n := uint32(d.read2(off))
	need := 2 + uint64(n)*entrySize + 4
	if off+need > uint64(len(d.buf)) {
		d.stop(fmt.Errorf("%w: %d entries at offset %#x exceed image size %d",
			ErrMalformedDirectory, n, off, len(d.buf)))
	}

	table := d.slice(off+2, n*entrySize)
	entries := make([]entry, 0, n)
	for i := uint32(0); i < n; i++ {
		rec := table[i*entrySize : (i+1)*entrySize]
		ent := entry{
			tag:   binary.LittleEndian.Uint16(rec),
			typ:   tiffType(binary.LittleEndian.Uint16(rec[2:])),
			count: binary.LittleEndian.Uint32(rec[4:]),
			value: binary.LittleEndian.Uint32(rec[8:]),
		}
		copy(ent.raw[:], rec[8:12])
		entries = append(entries, ent)
	}

	next := d.read4(off + 2 + uint64(n)*entrySize)
	return entries, next
}

// resolveASCII decodes an ASCII entry (or one of the vendor fields of
// "undefined" type that hold character data) against the given origin.
// Indirect values read count bytes at origin+value; inline values use
// the raw value field itself. A trailing NUL is dropped when present.
func (d *decoder) resolveASCII(ent entry, origin uint64) string {
	var b []byte
	if ent.inline() {
		b = ent.raw[:min(ent.count, 4)]
	} else {
		b = d.slice(origin+uint64(ent.value), ent.count)
	}
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	// Vendor strings are ISO 8859-1; pure ASCII passes through unchanged.
	if s, err := d.charset.String(string(b)); err == nil {
		return printableString(s)
	}
	return printableString(string(b))
}

// resolveRational decodes a rational entry: two consecutive unsigned
// 32-bit integers at origin+value. A zero denominator yields +Inf; the
// caller renders it as unavailable rather than crashing.
func (d *decoder) resolveRational(ent entry, origin uint64) float64 {
	if ent.typ != tiffTypeRational && ent.typ != tiffTypeSRational {
		d.stop(fmt.Errorf("%w: tag %#04x declares type %d, want rational", ErrTypeMismatch, ent.tag, ent.typ))
	}
	b := d.slice(origin+uint64(ent.value), 8)
	num := binary.LittleEndian.Uint32(b)
	den := binary.LittleEndian.Uint32(b[4:])
	if den == 0 {
		return math.Inf(1)
	}
	return float64(num) / float64(den)
}

// resolveScalar returns the first numeric value of a byte, short, long or
// undefined entry, following the value field when the array does not fit
// inline. For multi-valued long entries (the SubIFD offset list) this is
// the first element.
func (d *decoder) resolveScalar(ent entry, origin uint64) uint32 {
	if ent.inline() {
		switch ent.typ {
		case tiffTypeByte, tiffTypeUndef:
			return uint32(ent.raw[0])
		case tiffTypeShort:
			return uint32(binary.LittleEndian.Uint16(ent.raw[:2]))
		default:
			return ent.value
		}
	}
	off := origin + uint64(ent.value)
	switch ent.typ {
	case tiffTypeByte, tiffTypeUndef:
		return uint32(d.read1(off))
	case tiffTypeShort:
		return uint32(d.read2(off))
	default:
		return d.read4(off)
	}
}
