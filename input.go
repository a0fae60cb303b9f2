package prismscene

import (
	"log/slog"

	"github.com/soypat/geometry/ms3"
)

type pointerState struct {
	x, y float64
	held bool
}

// PointerDown records (x, y) as the drag origin. Coordinates are screen pixels with y pointing down.
func (s *Session) PointerDown(x, y float64) {
	s.pointer = pointerState{x: x, y: y, held: true}
}

// PointerMove drags the camera while a button is held: horizontal motion moves
// the camera along X, vertical motion along -Y, and the camera is re-aimed at the origin.
func (s *Session) PointerMove(x, y float64) {
	if !s.pointer.held {
		return
	}
	dx := float32(x-s.pointer.x) * DragSensitivity
	dy := float32(y-s.pointer.y) * DragSensitivity
	s.Camera.Position.X += dx
	s.Camera.Position.Y -= dy
	s.Camera.LookAt(ms3.Vec{})
	s.pointer.x, s.pointer.y = x, y
}

// PointerUp ends the drag. The last pointer position is kept.
func (s *Session) PointerUp() {
	s.pointer.held = false
}

// Dragging reports whether a pointer button is held.
func (s *Session) Dragging() bool { return s.pointer.held }

// Resize updates the camera aspect ratio and the render target to a viewport
// of width x height pixels. Empty viewports, such as minimized windows, are ignored.
func (s *Session) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		s.log.Debug("ignoring empty viewport", slog.Int("width", width), slog.Int("height", height))
		return
	}
	s.Camera.Aspect = float32(width) / float32(height)
	s.Camera.UpdateProjection()
	s.target.SetSize(width, height)
}
