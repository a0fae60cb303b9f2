// Package softrender rasterizes scenes into images on the CPU.
package softrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sort"

	math "github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/prismscene"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Renderer draws flat shaded triangles back to front into an RGBA image.
// Back faces are culled. Labels are drawn screen aligned at their projected size.
type Renderer struct {
	img   *image.RGBA
	bg    color.RGBA
	ras   vector.Rasterizer
	items []item
}

// item is a triangle in pixel coordinates or a label anchor.
type item struct {
	p     [3][2]float32
	depth float32
	col   color.RGBA
	label *prismscene.Label
	px    float32 // Label pixels per em.
}

// NewRenderer returns a renderer drawing into a width x height image cleared to black.
func NewRenderer(width, height int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	r := &Renderer{bg: color.RGBA{A: 255}}
	r.SetSize(width, height)
	return r, nil
}

// SetSize reallocates the image if the size changed. Non-positive sizes are ignored.
func (r *Renderer) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if r.img != nil && r.img.Rect.Dx() == width && r.img.Rect.Dy() == height {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.ras.Reset(width, height)
}

// SetBackground sets the clear color.
func (r *Renderer) SetBackground(c color.RGBA) { r.bg = c }

// Image returns the image the last frame was rendered to. It is reallocated by SetSize.
func (r *Renderer) Image() *image.RGBA { return r.img }

// WritePNG encodes the last rendered frame.
func (r *Renderer) WritePNG(w io.Writer) error {
	if r.img == nil {
		return errors.New("no image to encode")
	}
	return png.Encode(w, r.img)
}

// Render draws the scene as seen by cam.
func (r *Renderer) Render(sc *prismscene.Scene, cam *prismscene.Camera) error {
	if r.img == nil {
		return errors.New("renderer size not set")
	}
	bounds := r.img.Bounds()
	draw.Draw(r.img, bounds, image.NewUniform(r.bg), image.Point{}, draw.Src)
	vp := cam.ViewProjection()
	w, h := float32(bounds.Dx()), float32(bounds.Dy())
	r.items = r.items[:0]
	sc.Visit(func(o *prismscene.Object) {
		r.appendObject(vp, o, w, h)
	})
	if sc.Label != nil {
		r.appendLabel(vp, sc.Label, w, h)
	}
	// Farthest first. NDC depth grows away from the camera.
	sort.SliceStable(r.items, func(i, j int) bool {
		return r.items[i].depth > r.items[j].depth
	})
	for i := range r.items {
		it := &r.items[i]
		if it.label != nil {
			err := r.drawLabel(it)
			if err != nil {
				return err
			}
			continue
		}
		r.fill(it)
	}
	return nil
}

func (r *Renderer) appendObject(vp mgl32.Mat4, o *prismscene.Object, w, h float32) {
	if o.Mesh == nil {
		return
	}
	mvp := vp.Mul4(o.Model())
	col := o.Color.RGBA()
TRIANGLES:
	for _, tri := range o.Mesh.Triangles {
		var ndc [3]mgl32.Vec3
		for k, v := range tri {
			var ok bool
			ndc[k], ok = project(mvp, v)
			if !ok {
				continue TRIANGLES
			}
		}
		if area2(ndc) <= 0 {
			continue // Back face.
		}
		it := item{col: col, depth: (ndc[0].Z() + ndc[1].Z() + ndc[2].Z()) / 3}
		for k := range ndc {
			it.p[k] = toPixel(ndc[k], w, h)
		}
		r.items = append(r.items, it)
	}
}

func (r *Renderer) appendLabel(vp mgl32.Mat4, l *prismscene.Label, w, h float32) {
	base, ok := project(vp, l.Position)
	if !ok {
		return
	}
	top, ok := project(vp, ms3.Add(l.Position, ms3.Vec{Y: l.Size}))
	if !ok {
		return
	}
	p0, p1 := toPixel(base, w, h), toPixel(top, w, h)
	px := math.Round(math.Hypot(p1[0]-p0[0], p1[1]-p0[1]))
	if px < 1 {
		return
	}
	r.items = append(r.items, item{
		p:     [3][2]float32{p0},
		depth: base.Z(),
		label: l,
		px:    px,
	})
}

func (r *Renderer) fill(it *item) {
	b := r.img.Bounds()
	r.ras.Reset(b.Dx(), b.Dy())
	r.ras.MoveTo(it.p[0][0], it.p[0][1])
	r.ras.LineTo(it.p[1][0], it.p[1][1])
	r.ras.LineTo(it.p[2][0], it.p[2][1])
	r.ras.ClosePath()
	r.ras.Draw(r.img, b, image.NewUniform(it.col), image.Point{})
}

func (r *Renderer) drawLabel(it *item) error {
	l := it.label
	if l.Font == nil {
		return errors.New("label has no font")
	}
	face, err := l.Font.Face(float64(it.px))
	if err != nil {
		return fmt.Errorf("label face: %w", err)
	}
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(l.Color.RGBA()),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(it.p[0][0] * 64), Y: fixed.Int26_6(it.p[0][1] * 64)},
	}
	d.DrawString(l.Text)
	return nil
}

// project transforms v to normalized device coordinates. ok is false for
// points behind the camera or outside the depth range.
func project(mvp mgl32.Mat4, v ms3.Vec) (ndc mgl32.Vec3, ok bool) {
	clip := mvp.Mul4x1(mgl32.Vec4{v.X, v.Y, v.Z, 1})
	wc := clip.W()
	if wc <= 0 {
		return ndc, false
	}
	ndc = clip.Vec3().Mul(1 / wc)
	return ndc, ndc.Z() >= -1 && ndc.Z() <= 1
}

// area2 is twice the signed area of the triangle in NDC, positive when counter-clockwise.
func area2(t [3]mgl32.Vec3) float32 {
	a, b, c := t[0], t[1], t[2]
	return (b.X()-a.X())*(c.Y()-a.Y()) - (c.X()-a.X())*(b.Y()-a.Y())
}

func toPixel(ndc mgl32.Vec3, w, h float32) [2]float32 {
	return [2]float32{(ndc.X() + 1) / 2 * w, (1 - ndc.Y()) / 2 * h}
}
