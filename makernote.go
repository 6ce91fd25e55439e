// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

package nefmeta

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Makernote header layout:
//
//	[6]byte signature "Nikon\x00"
//	uint16  version
//	uint16  reserved
//	[8]byte embedded TIFF header
//
// Offsets inside the embedded directory are measured from the start of
// the embedded TIFF header, not from the start of the file. See
// http://lclevy.free.fr/nef/ section 5.
const (
	makernoteSignatureLen = 6
	makernoteHeaderLen    = makernoteSignatureLen + 2 + 2 + tiffHeaderLen
)

var makernoteSignature = []byte("Nikon\x00")

// Lens-data block: a 4-ASCII-digit version prefix followed by the
// payload, which is encrypted from version 0201 on. The composite
// lens-identity bytes sit at a fixed offset into the decrypted payload.
const (
	lensDataVersionLen    = 4
	lensDataEncryptedFrom = 201
	lensIDKeyOffset       = 8
)

// locateMakernote validates the makernote block at offset and returns
// the rebased origin of its embedded directory together with the
// directory entries. A signature or embedded-header mismatch degrades to
// "no makernote" rather than failing the decode.
func (d *decoder) locateMakernote(offset uint32) (uint64, []entry, bool) {
	sig := d.slice(uint64(offset), makernoteSignatureLen)
	if !bytes.Equal(sig, makernoteSignature) {
		d.warnf("%v: signature %q at offset %#x", ErrInvalidMakernote, sig, offset)
		return 0, nil, false
	}

	origin := uint64(offset) + (makernoteHeaderLen - tiffHeaderLen)
	if err := d.validateHeader(origin); err != nil {
		d.warnf("%v: embedded header: %v", ErrInvalidMakernote, err)
		return 0, nil, false
	}

	ifdOffset := d.read4(origin + 4)
	entries, _ := d.readDirectory(origin, ifdOffset)
	return origin, entries, true
}

// scanMakernote extracts the Nikon fields. The lens-data entry is only
// captured here: decrypting it needs the serial number and shutter
// count, which may appear later in the same directory, so it is resolved
// in a dedicated final step.
func (d *decoder) scanMakernote(origin uint64, entries []entry) {
	for i, ent := range entries {
		switch ent.tag {
		case nikonTagVersion:
			d.result.MakernoteVersion = d.resolveASCII(ent, origin)
		case nikonTagQuality:
			d.result.Quality = d.resolveASCII(ent, origin)
		case nikonTagWhiteBalance:
			d.result.WhiteBalance = d.resolveASCII(ent, origin)
		case nikonTagFocusMode:
			d.result.FocusMode = d.resolveASCII(ent, origin)
		case nikonTagFlashSetting:
			d.result.FlashSetting = d.resolveASCII(ent, origin)
		case nikonTagSerialNumber:
			d.result.SerialNumber = d.resolveASCII(ent, origin)
		case nikonTagISOInfo:
			d.result.ISO = isoFromRaw(uint8(d.resolveScalar(ent, origin)))
		case nikonTagLensType:
			d.lensType = byte(d.resolveScalar(ent, origin))
		case nikonTagShutterCount:
			d.result.ShutterCount = d.resolveScalar(ent, origin)
		case nikonTagLensData:
			d.pendingLensData = &entries[i]
		}
	}
}

// resolveLens finalizes the deferred lens-data entry: decode the version
// prefix, decrypt the payload in place when the version requires it, and
// look the composite key up. An unknown or unusable lens is a normal
// outcome, never an error.
func (d *decoder) resolveLens(origin uint64) {
	d.result.LensModel = UnknownLensModel

	ent := d.pendingLensData
	if ent == nil {
		return
	}
	if ent.inline() || ent.count < lensDataVersionLen+lensIDKeyOffset+7 {
		d.warnf("lens data block too short (%d bytes)", ent.count)
		return
	}

	block := d.slice(origin+uint64(ent.value), ent.count)
	version, err := strconv.Atoi(string(block[:lensDataVersionLen]))
	if err != nil {
		d.warnf("lens data version %q is not numeric", block[:lensDataVersionLen])
		return
	}
	payload := block[lensDataVersionLen:]
	if version >= lensDataEncryptedFrom {
		decryptLensData(payload, d.result.SerialNumber, d.result.ShutterCount)
	}

	var key [8]byte
	copy(key[:7], payload[lensIDKeyOffset:lensIDKeyOffset+7])
	key[7] = d.lensType
	if model, ok := lookupLens(d.lensTable, key); ok {
		d.result.LensModel = model
	}
}

// isoFromRaw converts the vendor's logarithmic single-byte ISO encoding:
// iso = 100 * 2^(raw/12 - 5), rounded up to the next multiple of 10 when
// not already one. Round-up, not round-nearest: raw 68 gives 158.74,
// reported as 160.
func isoFromRaw(raw uint8) int {
	iso := int(math.Ceil(100 * math.Exp2(float64(raw)/12-5)))
	if rem := iso % 10; rem != 0 {
		iso += 10 - rem
	}
	return iso
}

// validateHeader checks the byte-order marker and TIFF magic at off.
// Only little-endian images are supported.
func (d *decoder) validateHeader(off uint64) error {
	switch bo := d.read2(off); bo {
	case byteOrderLittleEndian:
	case byteOrderBigEndian:
		return fmt.Errorf("%w: big-endian images are not supported", ErrBadHeader)
	default:
		return fmt.Errorf("%w: unrecognized byte-order marker %#04x", ErrBadHeader, bo)
	}
	if m := d.read2(off + 2); m != tiffMagic {
		return fmt.Errorf("%w: magic %#04x", ErrBadHeader, m)
	}
	return nil
}
