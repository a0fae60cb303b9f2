package prismscene

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/prismscene/typeface"
)

// labelPxPerEm is the rasterization resolution of label bitmaps.
const labelPxPerEm = 128

// Label is a line of text drawn on a quad facing +Z. Position is the left end
// of the baseline. All lengths are in world units.
type Label struct {
	Text     string
	Position ms3.Vec
	Color    Color
	// Size is the height of an em.
	Size    float32
	Width   float32
	Ascent  float32
	Descent float32
	// Bitmap is the coverage mask of the text. Row 0 is the top of the quad.
	Bitmap *image.Alpha
	// Font is the parsed font the bitmap was rasterized with.
	Font *typeface.Font
}

// FontSource provides the bytes of a TTF font.
type FontSource interface {
	FontBytes(ctx context.Context) ([]byte, error)
}

// FontSourceFor picks the [FontSource] for a font location: empty selects the
// embedded default, http(s) URLs are fetched and anything else is read from disk.
func FontSourceFor(location string) FontSource {
	switch {
	case location == "":
		return EmbeddedFont{}
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		return URLFont(location)
	default:
		return FileFont(location)
	}
}

// EmbeddedFont is the font bundled with the binary.
type EmbeddedFont struct{}

func (EmbeddedFont) FontBytes(ctx context.Context) ([]byte, error) {
	return typeface.DefaultTTF(), nil
}

// FileFont is a font file on the local filesystem.
type FileFont string

func (ff FileFont) FontBytes(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(string(ff))
}

// URLFont is a font fetched over HTTP.
type URLFont string

func (uf URLFont) FontBytes(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(uf), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", string(uf), resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// LabelTask is an asynchronous label load. Its result is read with Poll.
type LabelTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	label  *Label
	err    error
}

// LoadLabel starts loading the font from src and rasterizing the label
// described by lc on a new goroutine.
func LoadLabel(ctx context.Context, src FontSource, lc LabelConfig) *LabelTask {
	ctx, cancel := context.WithCancel(ctx)
	t := &LabelTask{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		t.label, t.err = buildLabel(ctx, src, lc)
	}()
	return t
}

// Poll returns the task result without blocking. done is false while the load is in flight.
func (t *LabelTask) Poll() (label *Label, done bool, err error) {
	select {
	case <-t.done:
		return t.label, true, t.err
	default:
		return nil, false, nil
	}
}

// Done is closed when the task resolves.
func (t *LabelTask) Done() <-chan struct{} { return t.done }

// Cancel abandons the load. The task resolves with an error unless it had already finished.
func (t *LabelTask) Cancel() { t.cancel() }

func buildLabel(ctx context.Context, src FontSource, lc LabelConfig) (*Label, error) {
	if src == nil {
		return nil, errors.New("nil font source")
	}
	ttf, err := src.FontBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	f := new(typeface.Font)
	err = f.LoadTTFBytes(ttf)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	bitmap, m, err := f.RasterizeLine(lc.Text, labelPxPerEm)
	if err != nil {
		return nil, fmt.Errorf("rasterizing label %q: %w", lc.Text, err)
	}
	scale := lc.Size / labelPxPerEm
	// Bitmap width is rounded up to whole pixels and the quad spans the whole bitmap.
	return &Label{
		Text:     lc.Text,
		Position: lc.position(),
		Color:    Color{R: 1, G: 1, B: 1},
		Size:     lc.Size,
		Width:    float32(bitmap.Rect.Dx()) * scale,
		Ascent:   m.Ascent * scale,
		Descent:  float32(bitmap.Rect.Dy())*scale - m.Ascent*scale,
		Bitmap:   bitmap,
		Font:     f,
	}, nil
}
