// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

package nefmeta

// UnknownLensModel is reported when the composite key matches no table
// entry. An unknown lens is an expected outcome: the table is
// intentionally partial.
const UnknownLensModel = "Unknown Model."

// LensID maps an 8-byte composite key to a lens model name. The first
// seven bytes come from the decrypted lens-data payload; the last byte
// is the low byte of the lens-type tag.
type LensID struct {
	Key   [8]byte
	Model string
}

// builtinLensTable covers a handful of known models. Callers with a
// fuller reference table supply their own via Options.LensTable.
// Source: https://exiftool.org/TagNames/Nikon.html#LensID
var builtinLensTable = []LensID{
	{[8]byte{0xe3, 0x40, 0x76, 0xa6, 0x38, 0x40, 0xdf, 0x4e}, "Tamron SP 150-600mm f/5-6.3 Di VC USD G2"},
	{[8]byte{0xaa, 0x48, 0x37, 0x5c, 0x24, 0x24, 0xc5, 0x4e}, "AF-S Nikkor 24-70mm f/2.8E ED VR"},
	{[8]byte{0xae, 0x3c, 0x80, 0xa0, 0x3c, 0x3c, 0xc9, 0x4e}, "AF-S Nikkor 200-500mm f/5.6E ED VR"},
	{[8]byte{0x01, 0x58, 0x50, 0x50, 0x14, 0x14, 0x02, 0x00}, "AF Nikkor 50mm f/1.8"},
	{[8]byte{0x02, 0x42, 0x44, 0x5c, 0x2a, 0x34, 0x02, 0x00}, "AF Zoom-Nikkor 35-70mm f/3.3-4.5"},
	{[8]byte{0x11, 0x48, 0x44, 0x5c, 0x24, 0x24, 0x08, 0x00}, "AF Zoom-Nikkor 35-70mm f/2.8"},
	{[8]byte{0x48, 0x48, 0x8e, 0x8e, 0x24, 0x24, 0x4b, 0x02}, "AF-S Nikkor 300mm f/2.8D IF-ED"},
	{[8]byte{0x4b, 0x3c, 0xa0, 0xa0, 0x30, 0x30, 0x4e, 0x02}, "AF-S Nikkor 500mm f/4D IF-ED"},
}

// lookupLens linear-scans table for an exact byte-for-byte match; the
// first match wins (keys are expected to be unique).
func lookupLens(table []LensID, key [8]byte) (string, bool) {
	for _, e := range table {
		if e.Key == key {
			return e.Model, true
		}
	}
	return "", false
}
