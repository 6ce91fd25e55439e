// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

package nefmeta

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// MeteringMode is the EXIF metering mode enumeration.
type MeteringMode uint16

const (
	MeteringUnknown MeteringMode = iota
	MeteringAverage
	MeteringCenterWeighted
	MeteringSpot
	MeteringMultiSpot
	MeteringMultiSegment
	MeteringPartial
	MeteringOther MeteringMode = 255
)

func (m MeteringMode) String() string {
	switch m {
	case MeteringUnknown:
		return "Unknown"
	case MeteringAverage:
		return "Average"
	case MeteringCenterWeighted:
		return "Center-Weighted"
	case MeteringSpot:
		return "Spot"
	case MeteringMultiSpot:
		return "Multi-Spot"
	case MeteringMultiSegment:
		return "Multi-Segment"
	case MeteringPartial:
		return "Partial"
	default:
		return "Other"
	}
}

func meteringModeFromRaw(v uint16) MeteringMode {
	if v <= uint16(MeteringPartial) {
		return MeteringMode(v)
	}
	return MeteringOther
}

// ExposureTimeString renders the exposure time the way the camera report
// does, e.g. "1/500 second".
func (r Result) ExposureTimeString() string {
	et := r.ExposureTime
	switch {
	case math.IsNaN(et) || math.IsInf(et, 0) || et <= 0:
		return "n/a"
	case et < 1:
		return fmt.Sprintf("1/%d second", int(math.Round(1/et)))
	default:
		return fmt.Sprintf("%g seconds", et)
	}
}

// ApertureString renders the f-number, e.g. "f/9.0".
func (r Result) ApertureString() string {
	if math.IsNaN(r.Aperture) || math.IsInf(r.Aperture, 0) || r.Aperture <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("f/%.1f", r.Aperture)
}

// FocalLengthString renders the focal length in millimeters, e.g. "48.00 mm".
func (r Result) FocalLengthString() string {
	if math.IsNaN(r.FocalLength) || math.IsInf(r.FocalLength, 0) || r.FocalLength <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f mm", r.FocalLength)
}

// printableString drops non-graphic runes and surrounding whitespace.
func printableString(s string) string {
	ss := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)

	return strings.TrimSpace(ss)
}
