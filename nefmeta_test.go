// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

package nefmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
	"github.com/rwcarlsen/goexif/exif"
)

// tagSpec describes one directory entry for the synthetic image builder.
// Exactly one of data (indirect payload), inline (raw value field) or
// value (numeric/pointer) is meaningful.
type tagSpec struct {
	tag    uint16
	typ    tiffType
	count  uint32
	value  uint32
	inline []byte
	data   []byte
}

// appendIFD appends a directory at the end of buf: count, entry table,
// next-IFD offset, then the indirect payloads in the order given. Offsets to
// indirect data are stored relative to origin, matching how the decoder
// resolves them.
func appendIFD(buf []byte, origin, next uint32, specs []tagSpec) []byte {
	le := binary.LittleEndian
	dataOff := uint32(len(buf)) + 2 + uint32(len(specs))*entrySize + 4
	buf = le.AppendUint16(buf, uint16(len(specs)))
	var tail []byte
	for _, s := range specs {
		buf = le.AppendUint16(buf, s.tag)
		buf = le.AppendUint16(buf, uint16(s.typ))
		buf = le.AppendUint32(buf, s.count)
		switch {
		case s.data != nil:
			buf = le.AppendUint32(buf, dataOff+uint32(len(tail))-origin)
			tail = append(tail, s.data...)
		case s.inline != nil:
			var raw [4]byte
			copy(raw[:], s.inline)
			buf = append(buf, raw[:]...)
		default:
			buf = le.AppendUint32(buf, s.value)
		}
	}
	buf = le.AppendUint32(buf, next)
	return append(buf, tail...)
}

// dirSize is the total encoded size of a directory built by appendIFD,
// used to precompute forward pointers.
func dirSize(specs []tagSpec) uint32 {
	n := uint32(2 + len(specs)*entrySize + 4)
	for _, s := range specs {
		n += uint32(len(s.data))
	}
	return n
}

func rational(num, den uint32) []byte {
	b := binary.LittleEndian.AppendUint32(nil, num)
	return binary.LittleEndian.AppendUint32(b, den)
}

// buildMakernote assembles a position-independent Nikon makernote block:
// signature, version, reserved, embedded TIFF header, then the embedded
// directory with offsets relative to the embedded header.
func buildMakernote(lensData []byte) []byte {
	mk := append([]byte(nil), makernoteSignature...)
	mk = binary.LittleEndian.AppendUint16(mk, 0x0210)
	mk = binary.LittleEndian.AppendUint16(mk, 0)
	mk = append(mk, 'I', 'I', tiffMagic, 0x00)
	mk = binary.LittleEndian.AppendUint32(mk, tiffHeaderLen)

	isoInfo := make([]byte, 14)
	isoInfo[0] = 68 // 100*2^(68/12-5) = 158.74, reported as 160

	return appendIFD(mk, makernoteHeaderLen-tiffHeaderLen, 0, []tagSpec{
		{tag: nikonTagVersion, typ: tiffTypeUndef, count: 4, inline: []byte("0210")},
		{tag: nikonTagQuality, typ: tiffTypeASCII, count: 8, data: []byte("FINE   \x00")},
		{tag: nikonTagWhiteBalance, typ: tiffTypeASCII, count: 5, data: []byte("AUTO\x00")},
		{tag: nikonTagFocusMode, typ: tiffTypeASCII, count: 5, data: []byte("AF-A\x00")},
		{tag: nikonTagFlashSetting, typ: tiffTypeASCII, count: 7, data: []byte("NORMAL\x00")},
		{tag: nikonTagSerialNumber, typ: tiffTypeASCII, count: 8, data: []byte("3013812\x00")},
		{tag: nikonTagISOInfo, typ: tiffTypeUndef, count: 14, data: isoInfo},
		{tag: nikonTagLensType, typ: tiffTypeByte, count: 1, value: 0x4e},
		{tag: nikonTagLensData, typ: tiffTypeUndef, count: uint32(len(lensData)), data: lensData},
		{tag: nikonTagShutterCount, typ: tiffTypeLong, count: 1, value: 12532},
	})
}

// buildNEF assembles a minimal but structurally complete little-endian
// NEF image: header, IFD0, SubIFD, EXIF IFD and the given makernote
// block. Pass a nil makernote to omit the entry entirely.
func buildNEF(mk []byte) []byte {
	ifd0 := []tagSpec{
		{tag: tagModel, typ: tiffTypeASCII, count: 12, data: []byte("NIKON D5600\x00")},
		{tag: tagDateTime, typ: tiffTypeASCII, count: 20, data: []byte("2021:03:14 15:09:26\x00")},
		{tag: tagSubIFDs, typ: tiffTypeLong, count: 1},
		{tag: tagExifIFDPointer, typ: tiffTypeLong, count: 1},
	}
	subIFD := []tagSpec{
		{tag: 0x0103, typ: tiffTypeShort, count: 1, value: 6}, // Compression
	}
	subOff := tiffHeaderLen + dirSize(ifd0)
	exifOff := subOff + dirSize(subIFD)
	ifd0[2].value = subOff
	ifd0[3].value = exifOff

	exifIFD := []tagSpec{
		{tag: tagExposureTime, typ: tiffTypeRational, count: 1, data: rational(1, 500)},
		{tag: tagFNumber, typ: tiffTypeRational, count: 1, data: rational(9, 1)},
		{tag: tagDateTimeOriginal, typ: tiffTypeASCII, count: 20, data: []byte("2021:03:14 15:09:26\x00")},
		{tag: tagMeteringMode, typ: tiffTypeShort, count: 1, value: 5},
		{tag: tagFocalLength, typ: tiffTypeRational, count: 1, data: rational(48, 1)},
	}
	if mk != nil {
		exifIFD = append(exifIFD, tagSpec{tag: tagMakerNote, typ: tiffTypeUndef, count: uint32(len(mk)), data: mk})
	}

	buf := []byte{'I', 'I', tiffMagic, 0x00}
	buf = binary.LittleEndian.AppendUint32(buf, tiffHeaderLen)
	buf = appendIFD(buf, 0, 0, ifd0)
	buf = appendIFD(buf, 0, 0, subIFD)
	return appendIFD(buf, 0, 0, exifIFD)
}

// unknownLensData is a plain (pre-encryption-era) lens-data block whose
// identity bytes match no table entry.
func unknownLensData() []byte {
	return append([]byte("0150"), make([]byte, 16)...)
}

func TestDecode(t *testing.T) {
	c := qt.New(t)

	data := buildNEF(buildMakernote(unknownLensData()))
	got, err := Decode(Options{Data: data})
	c.Assert(err, qt.IsNil)

	want := Result{
		CameraModel:      "NIKON D5600",
		SerialNumber:     "3013812",
		LensModel:        UnknownLensModel,
		Timestamp:        "2021:03:14 15:09:26",
		ExposureTime:     0.002,
		Aperture:         9,
		ISO:              160,
		FocalLength:      48,
		WhiteBalance:     "AUTO",
		Quality:          "FINE",
		FocusMode:        "AF-A",
		FlashSetting:     "NORMAL",
		MeteringMode:     MeteringMultiSegment,
		ShutterCount:     12532,
		MakernoteVersion: "0210",
	}
	c.Assert(cmp.Diff(want, got), qt.Equals, "")

	c.Assert(got.ExposureTimeString(), qt.Equals, "1/500 second")
	c.Assert(got.ApertureString(), qt.Equals, "f/9.0")
	c.Assert(got.FocalLengthString(), qt.Equals, "48.00 mm")
}

func TestDecodeEncryptedLensData(t *testing.T) {
	c := qt.New(t)

	// Plain identity bytes for the Tamron 150-600 G2, then run the
	// transform once so the fixture carries ciphertext. The cipher is its
	// own inverse under the same serial number and shutter count.
	payload := make([]byte, 16)
	copy(payload[lensIDKeyOffset:], []byte{0xe3, 0x40, 0x76, 0xa6, 0x38, 0x40, 0xdf})
	decryptLensData(payload, "3013812", 12532)
	lensData := append([]byte("0204"), payload...)

	data := buildNEF(buildMakernote(lensData))
	got, err := Decode(Options{Data: data})
	c.Assert(err, qt.IsNil)
	c.Assert(got.LensModel, qt.Equals, "Tamron SP 150-600mm f/5-6.3 Di VC USD G2")
}

func TestDecodeCustomLensTable(t *testing.T) {
	c := qt.New(t)

	table := []LensID{{Key: [8]byte{7: 0x4e}, Model: "Test Lens"}}
	data := buildNEF(buildMakernote(unknownLensData()))
	got, err := Decode(Options{Data: data, LensTable: table})
	c.Assert(err, qt.IsNil)
	c.Assert(got.LensModel, qt.Equals, "Test Lens")
}

func TestDecodeNoMakernote(t *testing.T) {
	c := qt.New(t)

	var warnings []string
	data := buildNEF(nil)
	got, err := Decode(Options{
		Data: data,
		Warnf: func(format string, args ...any) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got.CameraModel, qt.Equals, "NIKON D5600")
	c.Assert(got.ExposureTime, qt.Equals, 0.002)
	c.Assert(got.LensModel, qt.Equals, UnknownLensModel)
	c.Assert(got.SerialNumber, qt.Equals, "")
	c.Assert(warnings, qt.HasLen, 1)
}

func TestDecodeErrors(t *testing.T) {
	c := qt.New(t)

	for _, test := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"big endian", []byte{'M', 'M', 0x00, tiffMagic, 0, 0, 0, 8}},
		{"bad magic", []byte{'I', 'I', 0x2b, 0x00, 8, 0, 0, 0}},
		{"not tiff", []byte("GIF89a..")},
		{"header only", []byte{'I', 'I', tiffMagic, 0x00}},
		{"ifd0 out of range", []byte{'I', 'I', tiffMagic, 0x00, 0xff, 0xff, 0x00, 0x00}},
	} {
		c.Run(test.name, func(c *qt.C) {
			_, err := Decode(Options{Data: test.data})
			c.Assert(err, qt.IsNotNil)
		})
	}

	_, err := Decode(Options{Data: []byte{'M', 'M', 0x00, tiffMagic, 0, 0, 0, 8}})
	c.Assert(IsInvalidFormat(err), qt.IsTrue)
	c.Assert(err, qt.ErrorIs, ErrBadHeader)

	// Empty input is classified like every other structural rejection.
	_, err = Decode(Options{})
	c.Assert(IsInvalidFormat(err), qt.IsTrue)
}

// Fields decoded before a structural failure survive in the result.
func TestDecodePartialResult(t *testing.T) {
	c := qt.New(t)

	data := buildNEF(buildMakernote(unknownLensData()))
	// Truncating the tail cuts into the makernote payloads while leaving
	// IFD0 and the EXIF IFD intact.
	got, err := Decode(Options{Data: data[:len(data)-20]})
	c.Assert(err, qt.ErrorIs, ErrOutOfBounds)
	c.Assert(got.CameraModel, qt.Equals, "NIKON D5600")
}

// The synthetic image is valid TIFF/EXIF as far as an independent
// decoder is concerned, not just self-consistent.
func TestDecodeAgainstGoexif(t *testing.T) {
	c := qt.New(t)

	data := buildNEF(buildMakernote(unknownLensData()))
	x, err := exif.Decode(bytes.NewReader(data))
	c.Assert(err, qt.IsNil)

	tag, err := x.Get(exif.Model)
	c.Assert(err, qt.IsNil)
	model, err := tag.StringVal()
	c.Assert(err, qt.IsNil)
	c.Assert(model, qt.Equals, "NIKON D5600")

	tag, err = x.Get(exif.ExposureTime)
	c.Assert(err, qt.IsNil)
	num, den, err := tag.Rat2(0)
	c.Assert(err, qt.IsNil)
	c.Assert(num, qt.Equals, int64(1))
	c.Assert(den, qt.Equals, int64(500))
}
