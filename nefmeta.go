// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

// Package nefmeta decodes camera and exposure metadata from Nikon NEF
// raw images: the TIFF container, the EXIF directory, the proprietary
// Nikon makernote with its rebased embedded directory, and the
// encrypted lens-data block.
package nefmeta

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	tiffHeaderLen         = 8
	tiffMagic             = 0x2a
	byteOrderBigEndian    = 0x4d4d
	byteOrderLittleEndian = 0x4949
)

// Options contains the options for the Decode function. Every call owns
// its state; the same Options value can be reused across files.
type Options struct {
	// Data is the whole file image. The decoder never opens files itself.
	// When an encrypted lens-data block is present, its byte range is
	// decrypted in place, so that range of Data is mutated.
	Data []byte

	// LensTable, if set, replaces the built-in lens identity table.
	LensTable []LensID

	// Warnf will be called for each degraded, non-fatal condition.
	Warnf func(string, ...any)
}

// Result is the decoded field set. Degraded fields hold their zero value
// (or UnknownLensModel for the lens); see the format helpers in report.go
// for the human-readable renditions.
type Result struct {
	CameraModel      string
	SerialNumber     string
	LensModel        string
	Timestamp        string
	ExposureTime     float64 // seconds
	Aperture         float64 // f-number
	ISO              int
	FocalLength      float64 // millimeters
	WhiteBalance     string
	Quality          string
	FocusMode        string
	FlashSetting     string
	MeteringMode     MeteringMode
	ShutterCount     uint32
	MakernoteVersion string
}

type decoder struct {
	*imageView
	opts    Options
	charset *encoding.Decoder
	result  *Result

	lensTable []LensID

	// State threaded between stages.
	lensType        byte
	pendingLensData *entry
}

func (d *decoder) warnf(format string, args ...any) {
	d.opts.Warnf(format, args...)
}

// Decode reads the metadata fields from the NEF image in opts.Data.
//
// The walk is a single forward pass over the fixed structure: header,
// IFD0, SubIFD (structural only), EXIF IFD, makernote IFD, lens data.
// Structural failures (bad header, out-of-bounds, malformed directory)
// abort with an error wrapping ErrInvalidFormat; semantic absences (no
// makernote, unknown lens, zero denominator) degrade to absent fields.
// On error the returned Result holds whatever earlier stages decoded.
func Decode(opts Options) (result Result, err error) {
	if len(opts.Data) == 0 {
		return result, fmt.Errorf("%w: no data provided", ErrInvalidFormat)
	}
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}
	lensTable := opts.LensTable
	if lensTable == nil {
		lensTable = builtinLensTable
	}

	d := &decoder{
		imageView: newImageView(opts.Data),
		opts:      opts,
		charset:   charmap.ISO8859_1.NewDecoder(),
		result:    &result,
		lensTable: lensTable,
	}

	defer func() {
		if r := recover(); r != nil {
			if r != errStop {
				panic(r)
			}
			err = d.imageView.err
		}
	}()

	d.decode()
	return result, nil
}

func (d *decoder) decode() {
	if err := d.validateHeader(0); err != nil {
		d.stop(err)
	}
	ifd0Offset := d.read4(4)

	// IFD0 yields the camera model, the EXIF IFD offset, an optional
	// SubIFD offset and an optional timestamp.
	entries, next := d.readDirectory(0, ifd0Offset)
	var exifOffset, subIFDOffset uint32
	for _, ent := range entries {
		switch ent.tag {
		case tagModel:
			d.result.CameraModel = d.resolveASCII(ent, 0)
		case tagDateTime:
			d.result.Timestamp = d.resolveASCII(ent, 0)
		case tagSubIFDs:
			subIFDOffset = d.resolveScalar(ent, 0)
		case tagExifIFDPointer:
			exifOffset = ent.value
		}
	}
	// The chain after IFD0 (thumbnail IFDs) is read as a terminator
	// check only; its entries carry nothing this decoder reports.
	_ = next

	// The SubIFD holds the embedded JPEG rendition. It is walked so a
	// truncated directory still fails the decode, but its entries are
	// not interpreted.
	if subIFDOffset != 0 {
		d.readDirectory(0, subIFDOffset)
	}

	if exifOffset == 0 {
		d.stop(fmt.Errorf("%w: no EXIF IFD pointer in IFD0", ErrMalformedDirectory))
	}

	// EXIF IFD yields the exposure fields and the makernote offset.
	entries, _ = d.readDirectory(0, exifOffset)
	var makernoteOffset uint32
	for _, ent := range entries {
		switch ent.tag {
		case tagExposureTime:
			d.result.ExposureTime = d.resolveRational(ent, 0)
		case tagFNumber:
			d.result.Aperture = d.resolveRational(ent, 0)
		case tagDateTimeOriginal:
			d.result.Timestamp = d.resolveASCII(ent, 0)
		case tagMeteringMode:
			d.result.MeteringMode = meteringModeFromRaw(uint16(d.resolveScalar(ent, 0)))
		case tagFocalLength:
			d.result.FocalLength = d.resolveRational(ent, 0)
		case tagMakerNote:
			makernoteOffset = ent.value
		}
	}

	if makernoteOffset == 0 {
		d.warnf("no makernote entry; Nikon fields unavailable")
		d.result.LensModel = UnknownLensModel
		return
	}
	origin, mkEntries, ok := d.locateMakernote(makernoteOffset)
	if !ok {
		d.result.LensModel = UnknownLensModel
		return
	}

	d.scanMakernote(origin, mkEntries)
	d.resolveLens(origin)
}
