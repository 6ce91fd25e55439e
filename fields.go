// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

package nefmeta

// TIFF/EXIF tags consumed from IFD0 and the EXIF IFD.
// Source: https://exiftool.org/TagNames/EXIF.html
const (
	tagModel            = 0x0110
	tagDateTime         = 0x0132
	tagSubIFDs          = 0x014a
	tagExposureTime     = 0x829a
	tagFNumber          = 0x829d
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003
	tagMeteringMode     = 0x9207
	tagFocalLength      = 0x920a
	tagMakerNote        = 0x927c
)

// Nikon type-3 makernote tags.
// Source: https://exiftool.org/TagNames/Nikon.html
const (
	nikonTagVersion      = 0x0001
	nikonTagQuality      = 0x0004
	nikonTagWhiteBalance = 0x0005
	nikonTagFocusMode    = 0x0007
	nikonTagFlashSetting = 0x0008
	nikonTagSerialNumber = 0x001d
	nikonTagISOInfo      = 0x0025
	nikonTagLensType     = 0x0083
	nikonTagLensData     = 0x0098
	nikonTagShutterCount = 0x00a7
)

// tiffType represents the basic TIFF tag data types.
type tiffType uint16

const (
	tiffTypeByte      tiffType = 1
	tiffTypeASCII     tiffType = 2
	tiffTypeShort     tiffType = 3
	tiffTypeLong      tiffType = 4
	tiffTypeRational  tiffType = 5
	tiffTypeSByte     tiffType = 6
	tiffTypeUndef     tiffType = 7
	tiffTypeSShort    tiffType = 8
	tiffTypeSLong     tiffType = 9
	tiffTypeSRational tiffType = 10
	tiffTypeFloat     tiffType = 11
	tiffTypeDouble    tiffType = 12
)

// Size in bytes of one unit of each type.
var tiffTypeSize = map[tiffType]uint32{
	tiffTypeByte:      1,
	tiffTypeASCII:     1,
	tiffTypeShort:     2,
	tiffTypeLong:      4,
	tiffTypeRational:  8,
	tiffTypeSByte:     1,
	tiffTypeUndef:     1,
	tiffTypeSShort:    2,
	tiffTypeSLong:     4,
	tiffTypeSRational: 8,
	tiffTypeFloat:     4,
	tiffTypeDouble:    8,
}
