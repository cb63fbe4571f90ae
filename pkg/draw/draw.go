// Package draw is the layout/drawing orchestrator: given the model's focal
// container, it rebuilds or incrementally redraws function, link, and note
// visuals in a fixed z-order (functions, then links, then notes), keeping
// the scene geometrically consistent as the model is edited, selected,
// dragged, and zoomed.
//
// All drawing is synchronous and runs to completion on the calling
// goroutine; pointer-driven interactions are short callbacks bound to
// individual primitives that trigger localized redraws only. A redraw, once
// started, always completes; there is no cancellation.
package draw

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pwgbots/diafram/pkg/model"
	"github.com/pwgbots/diafram/pkg/observability"
	"github.com/pwgbots/diafram/pkg/scene"
	"github.com/pwgbots/diafram/pkg/textmetrics"
	"github.com/pwgbots/diafram/pkg/viewport"
)

// ExtendMargin is the fixed margin kept between content and canvas edge.
const ExtendMargin = 20.0

// ViewOptions are the toggles the view-options collaborator provides.
type ViewOptions struct {
	HiddenLinks bool // draw hidden-link count glyphs
	Commentary  bool // apply the commentary highlight filter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTuning overrides the empirical drawing constants.
func WithTuning(t Tuning) Option {
	return func(o *Orchestrator) {
		o.tuning = t
		o.metrics.SetCorrections(t.Corrections)
	}
}

// WithViewOptions sets the view toggles.
func WithViewOptions(v ViewOptions) Option {
	return func(o *Orchestrator) { o.opts = v }
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// Orchestrator owns the mapping from model entities to their shapes and all
// transient view state (hovered link, drop target, overlay primitives).
type Orchestrator struct {
	scene   *scene.Scene
	metrics *textmetrics.Cache
	view    *viewport.Viewport
	tuning  Tuning
	opts    ViewOptions
	logger  *log.Logger

	shapes map[string]*scene.Shape

	hovered      string // hovered link id
	dropTarget   string // function id that is the explicit drag/drop target
	revealHidden string // function id whose hidden links a connector hover reveals

	dragLine *scene.Shape
	dragRect *scene.Shape
}

// New creates an orchestrator drawing into sc with the given metrics cache
// and viewport.
func New(sc *scene.Scene, metrics *textmetrics.Cache, view *viewport.Viewport, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		scene:   sc,
		metrics: metrics,
		view:    view,
		tuning:  DefaultTuning(),
		logger:  log.Default(),
		shapes:  make(map[string]*scene.Shape),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Scene returns the live scene the orchestrator draws into.
func (o *Orchestrator) Scene() *scene.Scene { return o.scene }

// Viewport returns the viewport controller.
func (o *Orchestrator) Viewport() *viewport.Viewport { return o.view }

// SetViewOptions replaces the view toggles; the next redraw applies them.
func (o *Orchestrator) SetViewOptions(v ViewOptions) { o.opts = v }

// SetDropTarget marks a function as the explicit drag/drop target and
// redraws it. The drop-target highlight has priority over the commentary
// highlight.
func (o *Orchestrator) SetDropTarget(m *model.Model, id string) {
	prev := o.dropTarget
	o.dropTarget = id
	for _, fid := range []string{prev, id} {
		if f, ok := m.Function(fid); ok && m.IsVisible(fid) {
			o.drawFunction(m, f)
		}
	}
}

// ClearDropTarget removes the drop-target highlight.
func (o *Orchestrator) ClearDropTarget(m *model.Model) {
	o.SetDropTarget(m, "")
}

// shapeFor returns the shape owned by the entity key, creating a fresh one
// when no live counterpart exists yet. "Not found" is never an error here;
// it simply means "create".
func (o *Orchestrator) shapeFor(key string) *scene.Shape {
	s, ok := o.shapes[key]
	if !ok {
		s = scene.NewShape()
		o.shapes[key] = s
	}
	return s
}

// clearShape empties a shape for refill and releases the handlers keyed to
// its superseded primitives, so stale handles stop dispatching and the
// handler registry does not grow across redraws.
func (o *Orchestrator) clearShape(s *scene.Shape) {
	for _, h := range s.Clear() {
		o.scene.Off(h)
	}
}

// DrawDiagram performs a full redraw of the focal container's children:
// functions first, then links, then notes, so notes always render on top
// and link hit targets are established before note layers can obscure them.
// Drawing the same unchanged model twice yields an identical scene.
func (o *Orchestrator) DrawDiagram(ctx context.Context, m *model.Model) error {
	functions := m.VisibleFunctions()
	links := m.VisibleLinks()
	notes := m.VisibleNotes()

	observability.Render().OnDrawStart(ctx, len(functions), len(links), len(notes))
	start := time.Now()

	// Extend sizes the canvas without moving content, so content at negative
	// coordinates would fall outside the canvas origin. Normalize it to the
	// same top-left position FitToSize establishes.
	if minX, minY, _, _, ok := m.BoundingBox(); ok && (minX < 0 || minY < 0) {
		var dx, dy float64
		if minX < 0 {
			dx = ExtendMargin/2 - minX
		}
		if minY < 0 {
			dy = ExtendMargin - minY
		}
		m.TranslateVisible(dx, dy)
	}

	o.view.Extend(m, ExtendMargin)
	cw, ch := o.view.CanvasSize()
	o.scene.SetCanvasSize(cw, ch)
	o.scene.SetViewWindow(o.view.ViewWindow())

	o.pruneStale(functions, links, notes)

	for _, f := range functions {
		o.drawFunction(m, f)
	}
	for _, l := range links {
		o.drawLink(m, l)
	}
	for _, n := range notes {
		o.drawNote(n)
	}

	o.logger.Debug("full redraw",
		"functions", len(functions), "links", len(links), "notes", len(notes),
		"zoom", o.view.Zoom())
	observability.Render().OnDrawComplete(ctx, time.Since(start), nil)
	return nil
}

// pruneStale detaches shapes whose entities left the focal container, so
// navigating into a sub-function does not leak the parent's visuals.
func (o *Orchestrator) pruneStale(functions []*model.Function, links []*model.Link, notes []*model.Note) {
	live := make(map[string]struct{}, len(functions)+len(links)+len(notes))
	for _, f := range functions {
		live["fn:"+f.ID] = struct{}{}
	}
	for _, l := range links {
		live["link:"+l.ID] = struct{}{}
	}
	for _, n := range notes {
		live["note:"+n.ID] = struct{}{}
	}
	for key, s := range o.shapes {
		if _, ok := live[key]; !ok {
			o.scene.Remove(s)
			delete(o.shapes, key)
		}
	}
}
