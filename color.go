package prismscene

import (
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/soypat/glgl/math/ms1"
)

// Color is an opaque linear RGB color with components in 0..1.
type Color struct {
	R, G, B float32
}

// ColorFromHex converts a 24 bit RGB value stored in the least significant bits of c.
func ColorFromHex(c uint32) Color {
	return Color{
		R: float32(uint8(c>>16)) / 255,
		G: float32(uint8(c>>8)) / 255,
		B: float32(uint8(c)) / 255,
	}
}

// Hex packs the color into the least significant 24 bits. Components are clamped to 0..1.
func (c Color) Hex() uint32 {
	return uint32(ms1.Clamp(c.R, 0, 1)*255+0.5)<<16 |
		uint32(ms1.Clamp(c.G, 0, 1)*255+0.5)<<8 |
		uint32(ms1.Clamp(c.B, 0, 1)*255+0.5)
}

// RGBA implements conversion to the standard library color model.
func (c Color) RGBA() color.RGBA {
	h := c.Hex()
	return color.RGBA{R: uint8(h >> 16), G: uint8(h >> 8), B: uint8(h), A: 255}
}

// HSL returns the color for hue, saturation and lightness in 0..1.
func HSL(h, s, l float32) Color {
	c := colorful.Hsl(float64(h)*360, float64(s), float64(l)).Clamped()
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

// HueAt returns the primary's hue at wall-clock time t. It completes one
// revolution every [HuePeriod], so t and t+HuePeriod map to the same hue.
func HueAt(t time.Time) float32 {
	period := HuePeriod.Milliseconds()
	ms := t.UnixMilli() % period
	if ms < 0 {
		ms += period
	}
	return float32(ms) / float32(period)
}

// PrimaryColorAt is the fully saturated, half lightness color for [HueAt].
func PrimaryColorAt(t time.Time) Color {
	return HSL(HueAt(t), 1, 0.5)
}

func randomColor(rng *rand.Rand) Color {
	return ColorFromHex(rng.Uint32N(1 << 24))
}
