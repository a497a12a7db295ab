// Package export writes generated heightmaps in formats other tools consume.
package export

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/OCharnyshevich/heightmap/internal/nbt"
	"github.com/OCharnyshevich/heightmap/pkg/diamondsquare"
)

// Format names an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatNBT  Format = "nbt"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for a format other than png, nbt or json.
var ErrUnknownFormat = errors.New("unknown export format")

// Metadata describes how a heightmap was produced. Entropy maps were drawn
// from crypto/rand; their Seed is 0 and they cannot be regenerated.
type Metadata struct {
	Seed           int64   `json:"seed"`
	Entropy        bool    `json:"entropy,omitempty"`
	SampleSize     int     `json:"sample_size"`
	Scale          float64 `json:"scale"`
	ScaleReduction float64 `json:"scale_reduction"`
}

// ParseFormat accepts "png", "nbt" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatNBT, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "dat" {
		return FormatNBT, nil
	}
	return ParseFormat(ext)
}

// Bounds returns the smallest and largest value of hm.
func Bounds(hm *diamondsquare.Heightmap) (lo, hi float64) {
	if len(hm.Values) == 0 {
		return 0, 0
	}
	return floats.Min(hm.Values), floats.Max(hm.Values)
}

// Normalize maps hm linearly onto [0, 1]. A flat map normalizes to zeros.
func Normalize(hm *diamondsquare.Heightmap) []float64 {
	out := make([]float64, len(hm.Values))
	lo, hi := Bounds(hm)
	span := hi - lo
	if span == 0 || math.IsNaN(span) {
		return out
	}
	copy(out, hm.Values)
	floats.AddConst(-lo, out)
	floats.Scale(1/span, out)
	return out
}

// Grayscale returns RGBA pixels (4 bytes each, row-major) with low
// elevations dark and high elevations light.
func Grayscale(hm *diamondsquare.Heightmap) []byte {
	norm := Normalize(hm)
	pix := make([]byte, 4*len(norm))
	for i, v := range norm {
		c := byte(math.Round(v * 255))
		pix[4*i] = c
		pix[4*i+1] = c
		pix[4*i+2] = c
		pix[4*i+3] = 0xFF
	}
	return pix
}

// Image renders hm as a 16-bit grayscale image.
func Image(hm *diamondsquare.Heightmap) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, hm.Width, hm.Height))
	norm := Normalize(hm)
	for y := 0; y < hm.Height; y++ {
		for x := 0; x < hm.Width; x++ {
			v := norm[y*hm.Width+x]
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(v * math.MaxUint16))})
		}
	}
	return img
}

// Write encodes hm to w in the given format.
func Write(w io.Writer, format Format, hm *diamondsquare.Heightmap, meta Metadata) error {
	switch format {
	case FormatPNG:
		if err := png.Encode(w, Image(hm)); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	case FormatNBT:
		return writeNBT(w, hm, meta)
	case FormatJSON:
		return writeJSON(w, hm, meta)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// writeNBT writes a gzip-compressed compound:
//
//	"" {
//	  Heightmap {
//	    Generator, Width, Height, SampleSize, Scale, ScaleReduction,
//	    Seed, Entropy (byte), Min, Max, Heights (list of double), Preview (byte array)
//	  }
//	}
func writeNBT(w io.Writer, hm *diamondsquare.Heightmap, meta Metadata) error {
	zw := gzip.NewWriter(w)
	nw := nbt.NewWriter(zw)
	lo, hi := Bounds(hm)

	preview := make([]byte, len(hm.Values))
	for i, v := range Normalize(hm) {
		preview[i] = byte(math.Round(v * 255))
	}

	nw.BeginCompound("")
	nw.BeginCompound("Heightmap")
	nw.WriteString("Generator", "diamond-square")
	nw.WriteInt("Width", int32(hm.Width))
	nw.WriteInt("Height", int32(hm.Height))
	nw.WriteInt("SampleSize", int32(meta.SampleSize))
	nw.WriteDouble("Scale", meta.Scale)
	nw.WriteDouble("ScaleReduction", meta.ScaleReduction)
	nw.WriteLong("Seed", meta.Seed)
	nw.WriteBool("Entropy", meta.Entropy)
	nw.WriteDouble("Min", lo)
	nw.WriteDouble("Max", hi)
	nw.WriteDoubleList("Heights", hm.Values)
	nw.WriteByteArray("Preview", preview)
	nw.EndCompound()
	nw.EndCompound()

	if err := nw.Err(); err != nil {
		zw.Close()
		return fmt.Errorf("encode nbt: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress nbt: %w", err)
	}
	return nil
}

// Document is the JSON representation of a heightmap.
type Document struct {
	Metadata
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Values []float64 `json:"values"`
}

func writeJSON(w io.Writer, hm *diamondsquare.Heightmap, meta Metadata) error {
	lo, hi := Bounds(hm)
	doc := Document{
		Metadata: meta,
		Width:    hm.Width,
		Height:   hm.Height,
		Min:      lo,
		Max:      hi,
		Values:   hm.Values,
	}
	if err := json.NewEncoder(w).Encode(&doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
