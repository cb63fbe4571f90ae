// Package viewport tracks the zoom factor and logical canvas size, and
// recomputes canvas bounds and scroll-container size from the current
// content bounds. It owns no drawing; the orchestrator reads its state when
// serializing the scene.
package viewport

import (
	"math"

	"github.com/pwgbots/diafram/pkg/model"
)

// Zoom limits. Enlargement beyond 200% and reduction below 25% are refused.
const (
	MinZoom = 0.25
	MaxZoom = 2.0
)

// zoomStep is the per-step zoom multiplier.
var zoomStep = math.Sqrt2

// clampSlack absorbs floating-point drift when repeated √2 steps land on a
// clamp boundary.
const clampSlack = 1e-9

// Viewport holds the zoom factor, the logical canvas size, and the
// view-window size bound to a scrollable container.
type Viewport struct {
	zoom             float64
	canvasW, canvasH float64
	viewW, viewH     float64
	originX, originY float64 // container placement on screen
}

// New creates a viewport at 100% zoom.
func New() *Viewport {
	return &Viewport{zoom: 1}
}

// Zoom returns the current zoom factor (1.0 = 100%).
func (v *Viewport) Zoom() float64 { return v.zoom }

// ZoomIn multiplies the factor by √2. It reports whether the step was
// applied; a step that would enlarge beyond 200% is refused and the factor
// stays at its current value.
func (v *Viewport) ZoomIn() bool {
	next := v.zoom * zoomStep
	if next > MaxZoom*(1+clampSlack) {
		return false
	}
	v.zoom = next
	return true
}

// ZoomOut divides the factor by √2, refusing reduction below 25%.
func (v *Viewport) ZoomOut() bool {
	next := v.zoom / zoomStep
	if next < MinZoom*(1-clampSlack) {
		return false
	}
	v.zoom = next
	return true
}

// SetZoom sets the factor directly, clamped into the permitted range.
func (v *Viewport) SetZoom(z float64) {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	v.zoom = z
}

// CanvasSize returns the logical canvas size.
func (v *Viewport) CanvasSize() (w, h float64) { return v.canvasW, v.canvasH }

// ViewWindow returns the view-window size.
func (v *Viewport) ViewWindow() (w, h float64) { return v.viewW, v.viewH }

// ContainerSize returns the scrollable container's on-screen size, which is
// always canvas-size divided by the zoom factor.
func (v *Viewport) ContainerSize() (w, h float64) {
	return v.canvasW / v.zoom, v.canvasH / v.zoom
}

// SetOrigin records the container's placement on screen, used by
// CursorPosition.
func (v *Viewport) SetOrigin(x, y float64) {
	v.originX, v.originY = x, y
}

// CursorPosition maps a screen-space point to content-space coordinates
// given the current zoom and container placement.
func (v *Viewport) CursorPosition(screenX, screenY float64) (x, y float64) {
	return (screenX - v.originX) * v.zoom, (screenY - v.originY) * v.zoom
}

// FitToSize recomputes the content bounding box, translates all model
// coordinates so the box's top-left sits at (margin/2, margin), resets zoom
// to 100%, and resizes the canvas to the bounding box plus the margin.
func (v *Viewport) FitToSize(m *model.Model, margin float64) {
	minX, minY, maxX, maxY, ok := m.BoundingBox()
	if !ok {
		v.zoom = 1
		v.canvasW, v.canvasH = margin, margin
		v.viewW, v.viewH = v.canvasW, v.canvasH
		return
	}
	m.TranslateVisible(margin/2-minX, margin-minY)
	v.zoom = 1
	v.canvasW = (maxX - minX) + margin
	v.canvasH = (maxY - minY) + margin
	v.viewW, v.viewH = v.canvasW, v.canvasH
}

// Extend recomputes the canvas size from the current content bounds without
// moving content. At zoom ≥ 1 the rendered canvas grows to the content size
// and the view window is scaled up by the zoom factor, so the image appears
// smaller; below 1 the canvas is set directly to the unscaled scrollable
// area and the view window equals that area.
//
// Content coordinates are assumed non-negative; since Extend never moves
// content, the orchestrator normalizes negative coordinates before calling
// it (a canvas rooted at the origin cannot cover them otherwise).
func (v *Viewport) Extend(m *model.Model, margin float64) {
	_, _, maxX, maxY, ok := m.BoundingBox()
	if !ok {
		maxX, maxY = 0, 0
	}
	contentW := maxX + margin
	contentH := maxY + margin

	if v.zoom >= 1 {
		v.canvasW, v.canvasH = contentW, contentH
		v.viewW, v.viewH = contentW*v.zoom, contentH*v.zoom
	} else {
		v.canvasW, v.canvasH = contentW/v.zoom, contentH/v.zoom
		v.viewW, v.viewH = v.canvasW, v.canvasH
	}
}
