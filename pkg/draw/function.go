package draw

import (
	"math"
	"strings"

	"github.com/pwgbots/diafram/pkg/model"
	"github.com/pwgbots/diafram/pkg/scene"
	"github.com/pwgbots/diafram/pkg/scene/styles"
)

const (
	functionStroke         = "#495057"
	functionSelectedStroke = "#e03131"
	actorColor             = "#9c36b5"
	nameFontSize           = 11
	actorFontSize          = 9
)

// hexagonPath appends the six-sided frame for a function of the given size.
// Vertices sit at angles i*60 degrees, elliptically scaled to the half
// extents.
func hexagonPath(s *scene.Shape, cx, cy, hw, hh float64) *scene.Path {
	p := s.AddPath()
	for i := 0; i < model.AspectCount; i++ {
		a := AspectAngle(i)
		x := cx + hw*math.Cos(a)
		y := cy + hh*math.Sin(a)
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	return p.Close()
}

// drawFunction rebuilds one function's visual: hexagonal frame, nesting
// outline, six aspect connectors, name and actor, and hidden-link arrows.
func (o *Orchestrator) drawFunction(m *model.Model, f *model.Function) {
	s := o.shapeFor("fn:" + f.ID)
	o.clearShape(s)

	hw, hh := f.Width()/2, f.Height()/2

	hex := hexagonPath(s, f.X, f.Y, hw, hh)
	hex.Fill = "url(#" + o.scene.Registry().GradientID(styles.GradientFunction) + ")"
	hex.FillOpacity = styles.ShadeOpacity
	hex.Stroke = functionStroke
	hex.StrokeWidth = 1.25
	// Selection overrides stroke color and width but never fill.
	if f.Selected {
		hex.Stroke = functionSelectedStroke
		hex.StrokeWidth = 2
	}
	switch {
	case o.dropTarget == f.ID:
		hex.Filter = o.scene.Registry().FilterID(styles.FilterDropTarget)
	case f.Commentary && o.opts.Commentary:
		hex.Filter = o.scene.Registry().FilterID(styles.FilterCommentary)
	}

	// An inset, low-opacity duplicate outline signals nesting.
	if m.HasSubFunctions(f) {
		inner := hexagonPath(s, f.X, f.Y, hw*0.85, hh*0.85)
		inner.Fill = "none"
		inner.Stroke = functionStroke
		inner.StrokeWidth = 1
		inner.Opacity = 0.3
	}

	o.drawConnectors(m, s, f, hw)
	o.drawName(s, f)
	if o.opts.HiddenLinks || o.revealHidden == f.ID {
		o.drawHiddenLinkArrows(m, s, f, hw, hh)
	}

	o.scene.Append(s)
}

// drawConnectors places the six aspect glyphs on the hexagon vertices at
// radius halfWidth*ConnectorRadiusFactor, each tagged with the owning
// function and its letter.
func (o *Orchestrator) drawConnectors(m *model.Model, s *scene.Shape, f *model.Function, hw float64) {
	r := hw * o.tuning.ConnectorRadiusFactor
	for i := 0; i < model.AspectCount; i++ {
		a := AspectAngle(i)
		cx := f.X + r*math.Cos(a)
		cy := f.Y + r*math.Sin(a)
		c := s.AddConnector(cx, cy, o.tuning.ConnectorRadius, model.Aspects[i], f.ID)
		c.Fill = "#ffffff"
		c.Stroke = functionStroke
		c.StrokeWidth = 1
		o.bindConnectorHover(c.Handle(), m, f)
	}
}

// drawName centers the function name, vertically offset by half its
// computed line height, with the owning actor beneath in a distinct style.
func (o *Orchestrator) drawName(s *scene.Shape, f *model.Function) {
	name := f.DisplayName()
	lines := strings.Split(name, "\n")
	lh := o.metrics.Height(nameFontSize)
	est := o.metrics.TextSize(name, nameFontSize, 400)

	y := f.Y + lh/2 - est.Height/2 + lh/2
	s.AddTextLabel(f.X, y, lines, nameFontSize, 400, lh, est.Width, est.Height)

	if f.Actor != "" {
		aest := o.metrics.TextSize(f.Actor, actorFontSize, 400)
		at := s.AddTextLabel(f.X, y+est.Height/2+o.metrics.Height(actorFontSize)*0.9,
			[]string{f.Actor}, actorFontSize, 400, o.metrics.Height(actorFontSize), aest.Width, aest.Height)
		at.Fill = actorColor
		at.Class = "actor"
	}
}

// drawHiddenLinkArrows places the directional count glyphs at fixed offsets
// from the top corners. A glyph is omitted entirely when its count is zero.
func (o *Orchestrator) drawHiddenLinkArrows(m *model.Model, s *scene.Shape, f *model.Function, hw, hh float64) {
	in, out := m.HiddenLinkCounts(f.ID)
	dx := hw * o.tuning.HiddenArrowDX
	dy := o.tuning.HiddenArrowDY
	if in > 0 {
		a := s.AddBlockArrow(f.X-dx, f.Y-hh-dy, scene.ArrowIn, in, f.ID)
		a.Fill = "#adb5bd"
		a.Stroke = functionStroke
		a.StrokeWidth = 0.75
	}
	if out > 0 {
		a := s.AddBlockArrow(f.X+dx, f.Y-hh-dy, scene.ArrowOut, out, f.ID)
		a.Fill = "#adb5bd"
		a.Stroke = functionStroke
		a.StrokeWidth = 0.75
	}
}

// bindConnectorHover reveals the hidden-link glyphs for a connector's owner
// while the pointer rests on it, redrawing only that function.
func (o *Orchestrator) bindConnectorHover(h scene.Handle, m *model.Model, f *model.Function) {
	o.scene.On(h, scene.EventEnter, func(scene.Event) {
		o.revealHidden = f.ID
		o.drawFunction(m, f)
	})
	o.scene.On(h, scene.EventLeave, func(scene.Event) {
		if o.revealHidden == f.ID {
			o.revealHidden = ""
		}
		o.drawFunction(m, f)
	})
}
