// Command dcm2png converts the frames of an uncompressed DICOM file to PNG.
//
//	dcm2png [flags] <input.dcm> [output.png]
//
// Multi-frame files are written as <output>_<n>.png with n starting at 1.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cocosip/go-dicom/pkg/dicom/element"
	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-pngstream/dicomexport"
	"github.com/cocosip/go-pngstream/png/stream"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("dcm2png: ")

	threshold := flag.Int("flush", stream.DefaultFlushThreshold, "rows buffered before compressing")
	center := flag.Float64("wc", 0, "window center (with -ww)")
	width := flag.Float64("ww", 0, "window width; 0 uses the frame min/max")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: dcm2png [flags] <input.dcm> [output.png]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}
	in := flag.Arg(0)
	out := flag.Arg(1)
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".png"
	}

	opts := dicomexport.Options{
		Encoder: stream.DefaultOptions().WithFlushThreshold(*threshold),
	}
	if *width > 0 {
		opts.Window = &dicomexport.Window{Center: *center, Width: *width}
	}

	pd, err := readPixelData(in)
	if err != nil {
		log.Fatal(err)
	}

	for i, name := range outputNames(out, pd.FrameCount()) {
		if err := exportFrame(pd, i, name, opts); err != nil {
			log.Fatal(err)
		}
		fmt.Println("wrote", name)
	}
}

func readPixelData(path string) (*dicomexport.PixelData, error) {
	res, err := parser.ParseFile(path, parser.WithReadOption(parser.ReadAll))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if res.TransferSyntax != nil && res.TransferSyntax.IsEncapsulated() {
		return nil, fmt.Errorf("%s: %w: transfer syntax %s", path, dicomexport.ErrUnsupportedFrame, res.TransferSyntax.UID().UID())
	}

	ds := res.Dataset
	pi, _ := ds.GetString(tag.PhotometricInterpretation)
	info := &imagetypes.FrameInfo{
		Width:                     uint16(ds.TryGetUInt16(tag.Columns, 0)),
		Height:                    uint16(ds.TryGetUInt16(tag.Rows, 0)),
		BitsAllocated:             uint16(ds.TryGetUInt16(tag.BitsAllocated, 0)),
		BitsStored:                uint16(ds.TryGetUInt16(tag.BitsStored, 0)),
		HighBit:                   uint16(ds.TryGetUInt16(tag.HighBit, 0)),
		SamplesPerPixel:           uint16(ds.TryGetUInt16(tag.SamplesPerPixel, 0)),
		PixelRepresentation:       uint16(ds.TryGetUInt16(tag.PixelRepresentation, 0)),
		PlanarConfiguration:       uint16(ds.TryGetUInt16(tag.PlanarConfiguration, 0)),
		PhotometricInterpretation: strings.TrimSpace(pi),
	}
	if _, ok := ds.Get(tag.SamplesPerPixel); !ok {
		info.SamplesPerPixel = 1
	}

	elem, ok := ds.Get(tag.PixelData)
	if !ok {
		return nil, fmt.Errorf("%s: no pixel data", path)
	}
	var raw []byte
	var wordBits uint16
	switch v := elem.(type) {
	case *element.OtherByte:
		raw, wordBits = v.GetData(), 8
	case *element.OtherWord:
		raw, wordBits = v.GetData(), 16
	default:
		return nil, fmt.Errorf("%s: unexpected pixel data type %T", path, elem)
	}
	// Fall back to the pixel data VR when Bits Allocated is absent
	if _, ok := ds.Get(tag.BitsAllocated); !ok {
		info.BitsAllocated = wordBits
	}

	pd, err := dicomexport.SplitFrames(info, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pd, nil
}

func outputNames(out string, frames int) []string {
	if frames == 1 {
		return []string{out}
	}
	base := strings.TrimSuffix(out, filepath.Ext(out))
	names := make([]string, frames)
	for i := range names {
		names[i] = fmt.Sprintf("%s_%d.png", base, i+1)
	}
	return names
}

func exportFrame(pd *dicomexport.PixelData, frame int, name string, opts dicomexport.Options) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := dicomexport.Export(pd, frame, f, opts); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("frame %d: %w", frame+1, err)
	}
	return nil
}
