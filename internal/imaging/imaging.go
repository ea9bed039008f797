// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging generates the registered image conversions for uploaded
// story media. Each conversion fits the source inside a bounding box while
// preserving aspect ratio, never upscales, and is encoded as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"math"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxUploadSize is the largest accepted upload (10 MB).
	MaxUploadSize = 10 << 20

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000

	// defaultQuality is the JPEG quality for generated conversions.
	defaultQuality = 85
)

var (
	ErrUnsupportedType = errors.New("imaging: unsupported image type")
	ErrTooLarge        = errors.New("imaging: file exceeds upload limit")
	ErrTooManyPixels   = errors.New("imaging: image dimensions too large")
)

// allowedTypes are the sniffed MIME types accepted for upload.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Conversion describes a registered rendition.
type Conversion struct {
	Name    string
	Width   int
	Height  int
	Quality int
}

// Conversions are the renditions generated for every story image.
var Conversions = []Conversion{
	{Name: "thumb", Width: 300, Height: 300, Quality: defaultQuality},
	{Name: "story", Width: 800, Height: 600, Quality: defaultQuality},
}

// Info describes a validated upload.
type Info struct {
	MimeType  string
	Extension string
	Width     int
	Height    int
}

// Result is one generated conversion ready for upload.
type Result struct {
	Name     string
	Width    int
	Height   int
	Data     []byte
	MimeType string
}

// Inspect sniffs and validates an upload before anything is persisted. The
// type comes from the content, never the file name.
func Inspect(data []byte) (Info, error) {
	if len(data) > MaxUploadSize {
		return Info{}, ErrTooLarge
	}
	mimeType := http.DetectContentType(data)
	ext, ok := allowedTypes[mimeType]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: decode config: %v", ErrUnsupportedType, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return Info{}, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	return Info{MimeType: mimeType, Extension: ext, Width: cfg.Width, Height: cfg.Height}, nil
}

// Fit returns the largest size with the aspect ratio of w x h that fits in
// maxW x maxH. Images already inside the box keep their size.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(int(math.Round(float64(w)*scale)), 1)
	nh := max(int(math.Round(float64(h)*scale)), 1)
	return nw, nh
}

// Generate decodes data once and renders every conversion.
func Generate(data []byte, conversions []Conversion) ([]Result, error) {
	if len(conversions) == 0 {
		conversions = Conversions
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()

	results := make([]Result, 0, len(conversions))
	for _, c := range conversions {
		w, h := Fit(bounds.Dx(), bounds.Dy(), c.Width, c.Height)

		// JPEG has no alpha channel, so transparent areas become white.
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

		quality := c.Quality
		if quality <= 0 {
			quality = defaultQuality
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.Name, err)
		}

		results = append(results, Result{
			Name:     c.Name,
			Width:    w,
			Height:   h,
			Data:     buf.Bytes(),
			MimeType: "image/jpeg",
		})
	}
	return results, nil
}
