// Copyright 2026 The nefmeta authors
// SPDX-License-Identifier: MIT

// Command nefstat prints the camera and exposure metadata of Nikon NEF
// raw files.
//
// Usage:
//
//	nefstat file.NEF [file2.NEF ...]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/shutterlog/nefmeta"
)

var quiet = flag.Bool("q", false, "suppress decoder warnings")

func main() {
	log.SetFlags(0)
	log.SetPrefix("nefstat: ")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: nefstat [-q] file.NEF ...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	fmt.Println("nefstat - Nikon NEF metadata reader")
	fmt.Println()

	exit := 0
	for _, name := range flag.Args() {
		if err := stat(name); err != nil {
			log.Printf("%s: %v", name, err)
			exit = 1
		}
	}
	os.Exit(exit)
}

func stat(name string) error {
	if ext := strings.ToUpper(filepath.Ext(name)); ext != ".NEF" {
		return fmt.Errorf("not a NEF file (extension %q)", filepath.Ext(name))
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	opts := nefmeta.Options{Data: data}
	if !*quiet {
		opts.Warnf = func(format string, args ...any) {
			log.Printf("%s: "+format, append([]any{name}, args...)...)
		}
	}
	r, err := nefmeta.Decode(opts)
	if err != nil {
		return err
	}

	printReport(name, r)
	return nil
}

func printReport(name string, r nefmeta.Result) {
	fmt.Printf("==== %s ====\n", name)
	fmt.Printf("Camera Model      = %s\n", orNA(r.CameraModel))
	fmt.Printf("Serial Number     = %s\n", orNA(r.SerialNumber))
	fmt.Printf("Lens              = %s\n", orNA(r.LensModel))
	fmt.Printf("Timestamp         = %s\n", orNA(r.Timestamp))
	fmt.Printf("Exposure Time     = %s\n", r.ExposureTimeString())
	fmt.Printf("Aperture          = %s\n", r.ApertureString())
	fmt.Printf("ISO               = %s\n", orNAInt(r.ISO))
	fmt.Printf("Focal Length      = %s\n", r.FocalLengthString())
	fmt.Printf("Metering Mode     = %s\n", r.MeteringMode)
	fmt.Printf("White Balance     = %s\n", orNA(r.WhiteBalance))
	fmt.Printf("Quality           = %s\n", orNA(r.Quality))
	fmt.Printf("Focus Mode        = %s\n", orNA(r.FocusMode))
	fmt.Printf("Flash Setting     = %s\n", orNA(r.FlashSetting))
	fmt.Printf("Shutter Count     = %d\n", r.ShutterCount)
	fmt.Printf("Makernote Version = %s\n", orNA(r.MakernoteVersion))
	fmt.Println()
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func orNAInt(n int) string {
	if n <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", n)
}
