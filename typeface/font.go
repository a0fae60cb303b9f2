// Package typeface loads TrueType fonts and rasterizes single lines of text.
package typeface

import (
	"errors"
	"fmt"
	"image"
	"unicode"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// FontConfig configures rasterization. The zero value is valid.
type FontConfig struct {
	// Hinting selects glyph hinting. Defaults to none, which keeps glyph
	// shapes independent of size so that scaled labels stay consistent.
	Hinting font.Hinting
}

// Metrics describes a rasterized line of text in pixels.
type Metrics struct {
	// Advance is the horizontal extent of the line from the pen start to pen end.
	Advance float32
	// Ascent is the distance from baseline to the top of the bitmap.
	Ascent float32
	// Descent is the distance from baseline to the bottom of the bitmap.
	Descent float32
}

// Height returns Ascent+Descent.
func (m Metrics) Height() float32 { return m.Ascent + m.Descent }

// Font implements font parsing and text rasterization with face caching.
type Font struct {
	ttf   *truetype.Font
	faces map[float64]font.Face
	cfg   FontConfig
}

func (f *Font) Configure(cfg FontConfig) error {
	if cfg.Hinting < font.HintingNone || cfg.Hinting > font.HintingFull {
		return errors.New("invalid hinting")
	}
	f.reset()
	f.cfg = cfg
	return nil
}

// LoadTTFBytes loads a TTF file blob into f. After calling Load the Font is ready to rasterize text.
func (f *Font) LoadTTFBytes(ttf []byte) error {
	parsed, err := truetype.Parse(ttf)
	if err != nil {
		return err
	}
	f.reset()
	f.ttf = parsed
	return nil
}

// Loaded reports whether a font was successfully loaded.
func (f *Font) Loaded() bool { return f.ttf != nil }

// reset drops cached faces without removing the underlying font.
func (f *Font) reset() {
	if f.faces == nil {
		f.faces = make(map[float64]font.Face)
		return
	}
	for k, face := range f.faces {
		face.Close()
		delete(f.faces, k)
	}
}

// maxFaces bounds the number of cached faces of a Font.
const maxFaces = 8

// Face returns a face rendering an em in pxPerEm pixels. Faces are cached per
// size, at most maxFaces at a time.
func (f *Font) Face(pxPerEm float64) (font.Face, error) {
	if f.ttf == nil {
		return nil, errors.New("font not loaded")
	} else if pxPerEm <= 0 {
		return nil, fmt.Errorf("invalid font size %g", pxPerEm)
	}
	if f.faces == nil {
		f.faces = make(map[float64]font.Face)
	}
	face, ok := f.faces[pxPerEm]
	if !ok {
		if len(f.faces) >= maxFaces {
			for k, old := range f.faces {
				old.Close()
				delete(f.faces, k)
				break
			}
		}
		face = truetype.NewFace(f.ttf, &truetype.Options{
			Size:    pxPerEm,
			DPI:     72, // 72 DPI makes points equal to pixels.
			Hinting: f.cfg.Hinting,
		})
		f.faces[pxPerEm] = face
	}
	return face, nil
}

// Measure returns the metrics of a single line of text.
func (f *Font) Measure(text string, pxPerEm float64) (Metrics, error) {
	face, err := f.Face(pxPerEm)
	if err != nil {
		return Metrics{}, err
	}
	err = checkLine(text)
	if err != nil {
		return Metrics{}, err
	}
	fm := face.Metrics()
	return Metrics{
		Advance: fixedToFloat(font.MeasureString(face, text)),
		Ascent:  fixedToFloat(fm.Ascent),
		Descent: fixedToFloat(fm.Descent),
	}, nil
}

// RasterizeLine draws a single line of text into an alpha mask. The baseline
// lies Ascent pixels below the top of the mask and the pen starts at x=0.
func (f *Font) RasterizeLine(text string, pxPerEm float64) (*image.Alpha, Metrics, error) {
	m, err := f.Measure(text, pxPerEm)
	if err != nil {
		return nil, m, err
	}
	face, _ := f.Face(pxPerEm)
	w := int(m.Advance + 0.999)
	h := int(m.Height() + 0.999)
	if w <= 0 || h <= 0 {
		return nil, m, errors.New("text has no visible extent")
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{Y: floatToFixed(m.Ascent)},
	}
	d.DrawString(text)
	return mask, m, nil
}

func checkLine(text string) error {
	if text == "" {
		return errors.New("no text provided")
	}
	graphic := false
	for _, c := range text {
		if !unicode.IsGraphic(c) {
			return fmt.Errorf("char %q not graphic", c)
		}
		graphic = graphic || !unicode.IsSpace(c)
	}
	if !graphic {
		return errors.New("only whitespace provided")
	}
	return nil
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
