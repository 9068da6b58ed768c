package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
	"github.com/skip2/go-qrcode"
)

type Style struct {
	Size          int     // Output edge in pixels
	QuietZone     int     // Empty modules around the code
	DotScale      float64 // Share of a module covered by a data dot, 0..1
	Background    color.Color
	Foreground    color.Color
	RecoveryLevel qrcode.RecoveryLevel
	LogoPath      string
	LogoScale     float64 // Logo edge relative to Size
}

// Default renders dark rounded dots on white with square finder patterns
var Default = Style{
	Size:          512,
	QuietZone:     2,
	DotScale:      0.85,
	Background:    color.White,
	Foreground:    color.RGBA{R: 24, G: 24, B: 32, A: 255},
	RecoveryLevel: qrcode.High,
	LogoScale:     0.2,
}

// Generate renders content as a PNG.
// Modules hidden behind the logo are skipped; High recovery keeps the code readable.
func (s Style) Generate(content string) ([]byte, error) {
	code, err := qrcode.New(content, s.RecoveryLevel)
	if err != nil {
		return nil, err
	}
	code.DisableBorder = true
	bitmap := code.Bitmap()
	modules := len(bitmap)

	var logo image.Image
	logoSize := 0
	if s.LogoPath != "" {
		logo, err = gg.LoadImage(s.LogoPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load logo: %w", err)
		}
		logoSize = int(float64(s.Size) * s.LogoScale)
	}

	cell := float64(s.Size) / float64(modules+2*s.QuietZone)
	center := float64(s.Size) / 2
	clearance := float64(logoSize)/2 + cell/2

	dc := gg.NewContext(s.Size, s.Size)
	dc.SetColor(s.Background)
	dc.Clear()
	dc.SetColor(s.Foreground)

	for y, row := range bitmap {
		for x, on := range row {
			if !on {
				continue
			}
			cx := (float64(x+s.QuietZone) + 0.5) * cell
			cy := (float64(y+s.QuietZone) + 0.5) * cell
			if logo != nil && math.Abs(cx-center) < clearance && math.Abs(cy-center) < clearance {
				continue
			}
			if inFinder(x, y, modules) {
				dc.DrawRectangle(cx-cell/2, cy-cell/2, cell, cell)
			} else {
				dc.DrawCircle(cx, cy, cell/2*s.DotScale)
			}
		}
	}
	dc.Fill()

	if logo != nil {
		dc.SetColor(s.Background)
		dc.DrawCircle(center, center, float64(logoSize)/2)
		dc.Fill()

		resized := resize.Resize(uint(logoSize), uint(logoSize), logo, resize.Lanczos3)
		dc.DrawImageAnchored(resized, int(center), int(center), 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inFinder reports whether the module belongs to one of the three 7x7 position markers.
func inFinder(x, y, modules int) bool {
	const finder = 7
	near := func(v int) bool { return v < finder }
	far := func(v int) bool { return v >= modules-finder }
	return (near(x) && near(y)) || (far(x) && near(y)) || (near(x) && far(y))
}
